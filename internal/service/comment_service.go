package service

import (
	"context"

	"skymarket/internal/models"
	"skymarket/internal/repository"
)

const maxCommentLen = 5000

// CommentService implements comment operations scoped to a parent ad. The
// parent ad is always resolved first, so every operation fails with not found
// before touching comments when the ad does not exist.
type CommentService struct {
	commentRepo repository.CommentRepository
	adRepo      repository.AdRepository
}

// CreateCommentInput is the write shape for comment creation. Author and
// parent ad are server-assigned.
type CreateCommentInput struct {
	AuthorID uint
	AdID     uint
	Text     string
}

// UpdateCommentInput addresses a comment through its parent ad.
type UpdateCommentInput struct {
	AdID      uint
	CommentID uint
	Text      string
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	adRepo repository.AdRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		adRepo:      adRepo,
	}
}

// ListComments returns all comments under the given ad.
func (s *CommentService) ListComments(ctx context.Context, adID uint) ([]*models.Comment, error) {
	if _, err := s.adRepo.GetByID(ctx, adID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByAd(ctx, adID)
}

// GetComment fetches one comment constrained to the given ad's comment set.
func (s *CommentService) GetComment(ctx context.Context, adID, commentID uint) (*models.Comment, error) {
	if _, err := s.adRepo.GetByID(ctx, adID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByAd(ctx, adID, commentID)
}

// CreateComment validates and persists a comment under the given ad.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.adRepo.GetByID(ctx, in.AdID); err != nil {
		return nil, err
	}

	if in.Text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 5000 characters)")
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		AdID:     in.AdID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByAd(ctx, in.AdID, comment.ID)
}

// UpdateComment replaces the text of a comment. Author and parent ad are
// immutable.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.AdID, in.CommentID)
	if err != nil {
		return nil, err
	}

	if in.Text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 5000 characters)")
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByAd(ctx, in.AdID, comment.ID)
}

// DeleteComment removes a comment addressed through its parent ad.
func (s *CommentService) DeleteComment(ctx context.Context, adID, commentID uint) error {
	comment, err := s.GetComment(ctx, adID, commentID)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}
