package repository

import (
	"context"
	"testing"

	"skymarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ScopedToParentAd(t *testing.T) {
	db := newTestDB(t)
	adRepo := NewAdRepository(db)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	ctx := context.Background()

	adA := &models.Ad{Title: "Ad A", Price: 10, AuthorID: user.ID}
	adB := &models.Ad{Title: "Ad B", Price: 20, AuthorID: user.ID}
	require.NoError(t, adRepo.Create(ctx, adA))
	require.NoError(t, adRepo.Create(ctx, adB))

	onA := &models.Comment{Text: "on A", AuthorID: user.ID, AdID: adA.ID}
	onB := &models.Comment{Text: "on B", AuthorID: user.ID, AdID: adB.ID}
	require.NoError(t, repo.Create(ctx, onA))
	require.NoError(t, repo.Create(ctx, onB))

	t.Run("listing under one ad never returns another ad's comments", func(t *testing.T) {
		comments, err := repo.ListByAd(ctx, adB.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "on B", comments[0].Text)
		assert.Equal(t, "buyer@example.com", comments[0].Author.Email)
	})

	t.Run("retrieving a comment through the wrong parent is not found", func(t *testing.T) {
		_, err := repo.GetByAd(ctx, adB.ID, onA.ID)
		require.Error(t, err)

		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("retrieving through the right parent succeeds", func(t *testing.T) {
		got, err := repo.GetByAd(ctx, adA.ID, onA.ID)
		require.NoError(t, err)
		assert.Equal(t, "on A", got.Text)
	})
}

func TestCommentRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	adRepo := NewAdRepository(db)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "buyer@example.com", models.RoleUser)
	ctx := context.Background()

	ad := &models.Ad{Title: "Ad", Price: 10, AuthorID: user.ID}
	require.NoError(t, adRepo.Create(ctx, ad))

	comment := &models.Comment{Text: "original", AuthorID: user.ID, AdID: ad.ID}
	require.NoError(t, repo.Create(ctx, comment))

	comment.Text = "edited"
	require.NoError(t, repo.Update(ctx, comment))

	got, err := repo.GetByAd(ctx, ad.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)

	require.NoError(t, repo.Delete(ctx, comment.ID))
	_, err = repo.GetByAd(ctx, ad.ID, comment.ID)
	assert.Error(t, err)
}
