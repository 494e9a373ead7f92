package server

import (
	"skymarket/internal/models"
	"skymarket/internal/repository"
	"skymarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListAds handles GET /api/ads. Anonymous requests are allowed; the listing
// is paginated with a fixed page size and supports a title substring filter.
func (s *Server) ListAds(c *fiber.Ctx) error {
	page, err := s.adService.ListAds(c.Context(), service.ListAdsInput{
		Page: parsePage(c),
		Filter: repository.AdFilter{
			Title: c.Query("title"),
		},
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(page)
}

// MyAds handles GET /api/ads/me.
// TODO: this returns the full listing instead of only the caller's ads,
// mirroring the behavior the mobile client currently depends on. Needs a
// product decision before filtering by author here.
func (s *Server) MyAds(c *fiber.Ctx) error {
	page, err := s.adService.ListAds(c.Context(), service.ListAdsInput{
		Page: parsePage(c),
		Filter: repository.AdFilter{
			Title: c.Query("title"),
		},
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(page)
}

// GetAd handles GET /api/ads/:id
func (s *Server) GetAd(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ad, err := s.adService.GetAd(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ad)
}

// CreateAd handles POST /api/ads. The author is always the authenticated
// caller; any author field in the request body is ignored.
func (s *Server) CreateAd(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Price       int    `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ad, err := s.adService.CreateAd(c.Context(), service.CreateAdInput{
		AuthorID:    currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ad)
}

// UpdateAd handles PUT and PATCH /api/ads/:id. Fields absent from the body
// are left unchanged, which makes PUT and PATCH behave identically.
func (s *Server) UpdateAd(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Price       *int    `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ad, err := s.adService.UpdateAd(c.Context(), service.UpdateAdInput{
		AdID:        id,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(ad)
}

// DeleteAd handles DELETE /api/ads/:id
func (s *Server) DeleteAd(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.adService.DeleteAd(c.Context(), id); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
