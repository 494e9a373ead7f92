package service

import (
	"context"

	"skymarket/internal/models"
	"skymarket/internal/repository"
)

// AdPageSize is the fixed number of ads per listing page.
const AdPageSize = 4

const (
	maxAdTitleLen       = 200
	maxAdDescriptionLen = 10000
)

// AdService implements ad operations on top of the ad repository.
// Authorization is enforced at the transport layer via the access policy;
// the service itself performs no role or ownership checks.
type AdService struct {
	adRepo repository.AdRepository
}

// CreateAdInput is the write shape for ad creation. The author is always the
// requesting user; there is no author field a client could set.
type CreateAdInput struct {
	AuthorID    uint
	Title       string
	Description string
	Price       int
}

// UpdateAdInput carries a full or partial update. Nil fields are left unchanged.
type UpdateAdInput struct {
	AdID        uint
	Title       *string
	Description *string
	Price       *int
}

// ListAdsInput selects a listing page.
type ListAdsInput struct {
	Page   int
	Filter repository.AdFilter
}

// AdPage is the paginated listing representation.
type AdPage struct {
	Count   int64        `json:"count"`
	Page    int          `json:"page"`
	Pages   int          `json:"pages"`
	Results []*models.Ad `json:"results"`
}

// NewAdService returns a new AdService.
func NewAdService(adRepo repository.AdRepository) *AdService {
	return &AdService{adRepo: adRepo}
}

// ListAds returns one page of ads in insertion order.
func (s *AdService) ListAds(ctx context.Context, in ListAdsInput) (*AdPage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * AdPageSize
	ads, total, err := s.adRepo.List(ctx, in.Filter, AdPageSize, offset)
	if err != nil {
		return nil, err
	}

	pages := int((total + AdPageSize - 1) / AdPageSize)
	if ads == nil {
		ads = []*models.Ad{}
	}

	return &AdPage{
		Count:   total,
		Page:    page,
		Pages:   pages,
		Results: ads,
	}, nil
}

// GetAd fetches a single ad by id.
func (s *AdService) GetAd(ctx context.Context, id uint) (*models.Ad, error) {
	return s.adRepo.GetByID(ctx, id)
}

// CreateAd validates and persists a new ad owned by in.AuthorID.
func (s *AdService) CreateAd(ctx context.Context, in CreateAdInput) (*models.Ad, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxAdTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if len(in.Description) > maxAdDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 10000 characters)")
	}
	if in.Price < 0 {
		return nil, models.NewValidationError("Price must not be negative")
	}

	ad := &models.Ad{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		AuthorID:    in.AuthorID,
	}
	if err := s.adRepo.Create(ctx, ad); err != nil {
		return nil, err
	}

	return s.adRepo.GetByID(ctx, ad.ID)
}

// UpdateAd applies a full or partial update. The author is never touched.
func (s *AdService) UpdateAd(ctx context.Context, in UpdateAdInput) (*models.Ad, error) {
	ad, err := s.adRepo.GetByID(ctx, in.AdID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(*in.Title) > maxAdTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		ad.Title = *in.Title
	}
	if in.Description != nil {
		if len(*in.Description) > maxAdDescriptionLen {
			return nil, models.NewValidationError("Description too long (max 10000 characters)")
		}
		ad.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, models.NewValidationError("Price must not be negative")
		}
		ad.Price = *in.Price
	}

	if err := s.adRepo.Update(ctx, ad); err != nil {
		return nil, err
	}

	return s.adRepo.GetByID(ctx, ad.ID)
}

// DeleteAd removes an ad by id.
func (s *AdService) DeleteAd(ctx context.Context, id uint) error {
	if _, err := s.adRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.adRepo.Delete(ctx, id)
}
