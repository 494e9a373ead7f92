package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"skymarket/internal/models"
	"skymarket/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adRepoStub is a stub for repository.AdRepository.
type adRepoStub struct {
	createFn  func(context.Context, *models.Ad) error
	getByIDFn func(context.Context, uint) (*models.Ad, error)
	listFn    func(context.Context, repository.AdFilter, int, int) ([]*models.Ad, int64, error)
	updateFn  func(context.Context, *models.Ad) error
	deleteFn  func(context.Context, uint) error
}

func (s *adRepoStub) Create(ctx context.Context, ad *models.Ad) error {
	return s.createFn(ctx, ad)
}
func (s *adRepoStub) GetByID(ctx context.Context, id uint) (*models.Ad, error) {
	return s.getByIDFn(ctx, id)
}
func (s *adRepoStub) List(ctx context.Context, filter repository.AdFilter, limit, offset int) ([]*models.Ad, int64, error) {
	return s.listFn(ctx, filter, limit, offset)
}
func (s *adRepoStub) Update(ctx context.Context, ad *models.Ad) error {
	return s.updateFn(ctx, ad)
}
func (s *adRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopAdRepo() *adRepoStub {
	return &adRepoStub{
		createFn:  func(_ context.Context, _ *models.Ad) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Ad, error) { return &models.Ad{ID: id}, nil },
		listFn: func(_ context.Context, _ repository.AdFilter, _, _ int) ([]*models.Ad, int64, error) {
			return nil, 0, nil
		},
		updateFn: func(_ context.Context, _ *models.Ad) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestAdService_CreateAd_Validation(t *testing.T) {
	t.Parallel()

	svc := NewAdService(noopAdRepo())
	ctx := context.Background()

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateAd(ctx, CreateAdInput{AuthorID: 1, Price: 10})
		assertValidationError(t, err)
	})

	t.Run("title too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateAd(ctx, CreateAdInput{
			AuthorID: 1,
			Title:    strings.Repeat("x", 201),
		})
		assertValidationError(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateAd(ctx, CreateAdInput{AuthorID: 1, Title: "Bike", Price: -1})
		assertValidationError(t, err)
	})
}

func TestAdService_CreateAd_AssignsAuthor(t *testing.T) {
	t.Parallel()

	repo := noopAdRepo()
	var created *models.Ad
	repo.createFn = func(_ context.Context, ad *models.Ad) error {
		ad.ID = 7
		created = ad
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Ad, error) {
		return created, nil
	}

	svc := NewAdService(repo)
	ad, err := svc.CreateAd(context.Background(), CreateAdInput{
		AuthorID: 42,
		Title:    "Bike",
		Price:    100,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), ad.AuthorID)
	assert.Equal(t, uint(7), ad.ID)
}

func TestAdService_ListAds_Pagination(t *testing.T) {
	t.Parallel()

	repo := noopAdRepo()
	var gotLimit, gotOffset int
	repo.listFn = func(_ context.Context, _ repository.AdFilter, limit, offset int) ([]*models.Ad, int64, error) {
		gotLimit, gotOffset = limit, offset
		return []*models.Ad{{ID: 5}}, 5, nil
	}

	svc := NewAdService(repo)
	page, err := svc.ListAds(context.Background(), ListAdsInput{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, AdPageSize, gotLimit)
	assert.Equal(t, AdPageSize, gotOffset)
	assert.EqualValues(t, 5, page.Count)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Results, 1)
}

func TestAdService_ListAds_PageDefaultsToFirst(t *testing.T) {
	t.Parallel()

	repo := noopAdRepo()
	repo.listFn = func(_ context.Context, _ repository.AdFilter, limit, offset int) ([]*models.Ad, int64, error) {
		assert.Equal(t, 0, offset)
		return nil, 0, nil
	}

	svc := NewAdService(repo)
	page, err := svc.ListAds(context.Background(), ListAdsInput{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.NotNil(t, page.Results)
}

func TestAdService_UpdateAd_PartialFields(t *testing.T) {
	t.Parallel()

	repo := noopAdRepo()
	stored := &models.Ad{ID: 1, Title: "Old", Description: "Desc", Price: 50, AuthorID: 3}
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Ad, error) { return stored, nil }
	repo.updateFn = func(_ context.Context, ad *models.Ad) error {
		stored = ad
		return nil
	}

	svc := NewAdService(repo)
	newPrice := 75
	ad, err := svc.UpdateAd(context.Background(), UpdateAdInput{AdID: 1, Price: &newPrice})
	require.NoError(t, err)

	assert.Equal(t, "Old", ad.Title)
	assert.Equal(t, 75, ad.Price)
	assert.Equal(t, uint(3), ad.AuthorID, "author must never change")
}

func TestAdService_UpdateAd_NotFoundPropagates(t *testing.T) {
	t.Parallel()

	repo := noopAdRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Ad, error) {
		return nil, models.NewNotFoundError("Ad", id)
	}

	svc := NewAdService(repo)
	title := "New"
	_, err := svc.UpdateAd(context.Background(), UpdateAdInput{AdID: 9, Title: &title})
	assertNotFoundError(t, err)
}

func TestAdService_DeleteAd_ChecksExistence(t *testing.T) {
	t.Parallel()

	repo := noopAdRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Ad, error) {
		return nil, models.NewNotFoundError("Ad", id)
	}
	repo.deleteFn = func(_ context.Context, _ uint) error {
		t.Fatal("delete must not be called for a missing ad")
		return nil
	}

	svc := NewAdService(repo)
	err := svc.DeleteAd(context.Background(), 9)
	assertNotFoundError(t, err)
}

func TestAdService_ListAds_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("db down")
	repo := noopAdRepo()
	repo.listFn = func(_ context.Context, _ repository.AdFilter, _, _ int) ([]*models.Ad, int64, error) {
		return nil, 0, repoErr
	}

	svc := NewAdService(repo)
	_, err := svc.ListAds(context.Background(), ListAdsInput{Page: 1})
	assert.ErrorIs(t, err, repoErr)
}
