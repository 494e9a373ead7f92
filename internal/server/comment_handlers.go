package server

import (
	"skymarket/internal/models"
	"skymarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListComments handles GET /api/ads/:adId/comments. The parent ad must
// exist; a missing ad yields 404 before comments are looked at.
func (s *Server) ListComments(c *fiber.Ctx) error {
	adID, err := s.parseID(c, "adId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.Context(), adID)
	if err != nil {
		return serviceError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return c.JSON(fiber.Map{
		"count":   len(comments),
		"results": comments,
	})
}

// GetComment handles GET /api/ads/:adId/comments/:commentId. A comment that
// exists under a different ad is treated as not found.
func (s *Server) GetComment(c *fiber.Ctx) error {
	adID, err := s.parseID(c, "adId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.Context(), adID, commentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/ads/:adId/comments. Author and parent ad
// come from the request context and the route, never from the body.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	adID, err := s.parseID(c, "adId")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		AuthorID: currentUserID(c),
		AdID:     adID,
		Text:     req.Text,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT and PATCH /api/ads/:adId/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	adID, err := s.parseID(c, "adId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		AdID:      adID,
		CommentID: commentID,
		Text:      req.Text,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/ads/:adId/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	adID, err := s.parseID(c, "adId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), adID, commentID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
