// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"skymarket/internal/cache"
	"skymarket/internal/models"

	"gorm.io/gorm"
)

// AdFilter narrows ad listings. Zero value matches everything.
type AdFilter struct {
	Title string
}

// AdRepository defines persistence operations for classified ads.
type AdRepository interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id uint) (*models.Ad, error)
	List(ctx context.Context, filter AdFilter, limit, offset int) ([]*models.Ad, int64, error)
	Update(ctx context.Context, ad *models.Ad) error
	Delete(ctx context.Context, id uint) error
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository returns a new AdRepository implementation.
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ctx context.Context, ad *models.Ad) error {
	if err := r.db.WithContext(ctx).Create(ad).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *adRepository) GetByID(ctx context.Context, id uint) (*models.Ad, error) {
	var ad models.Ad
	key := cache.AdKey(id)

	err := cache.Aside(ctx, key, &ad, cache.AdTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Author").First(&ad, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Ad", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// List returns a page of ads in insertion order together with the total count
// of ads matching the filter.
func (r *adRepository) List(ctx context.Context, filter AdFilter, limit, offset int) ([]*models.Ad, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Ad{})
	if title := strings.TrimSpace(filter.Title); title != "" {
		query = query.Where("lower(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var ads []*models.Ad
	if err := query.Preload("Author").Order("id").Limit(limit).Offset(offset).Find(&ads).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return ads, total, nil
}

func (r *adRepository) Update(ctx context.Context, ad *models.Ad) error {
	if err := r.db.WithContext(ctx).Save(ad).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAd(ctx, ad.ID)
	return nil
}

func (r *adRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Ad{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAd(ctx, id)
	return nil
}
