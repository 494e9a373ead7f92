package server

import (
	"fmt"
	"net/http"
	"testing"

	"skymarket/internal/models"
	"skymarket/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdListing_AnonymousAllowed(t *testing.T) {
	s, app := newTestServer(t)
	author, _ := createAccount(t, s, "author@example.com", models.RoleUser)
	createAd(t, s, author.ID, "Bike")

	status, body := doJSON(t, app, http.MethodGet, "/api/ads/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
}

func TestAdListing_Pagination(t *testing.T) {
	s, app := newTestServer(t)
	author, _ := createAccount(t, s, "author@example.com", models.RoleUser)
	for i := 1; i <= 5; i++ {
		createAd(t, s, author.ID, fmt.Sprintf("Ad %d", i))
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/ads/?page=2", "", nil)
	require.Equal(t, http.StatusOK, status)

	assert.EqualValues(t, 5, body["count"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 2, body["pages"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1, "page size is %d, so page 2 of 5 holds one ad", service.AdPageSize)

	last, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ad 5", last["title"])
}

func TestAdListing_TitleFilter(t *testing.T) {
	s, app := newTestServer(t)
	author, _ := createAccount(t, s, "author@example.com", models.RoleUser)
	createAd(t, s, author.ID, "Mountain bike")
	createAd(t, s, author.ID, "City bike")
	createAd(t, s, author.ID, "Kettle")

	status, body := doJSON(t, app, http.MethodGet, "/api/ads/?title=bike", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["count"])
}

func TestAdRetrieve_RequiresAuth(t *testing.T) {
	s, app := newTestServer(t)
	author, token := createAccount(t, s, "author@example.com", models.RoleUser)
	ad := createAd(t, s, author.ID, "Bike")

	status, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/ads/%d", ad.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/ads/%d", ad.ID), token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bike", body["title"])
}

func TestAdCreate_RequiresAuth(t *testing.T) {
	_, app := newTestServer(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/ads/", "", map[string]any{
		"title": "Bike",
		"price": 100,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdCreate_IgnoresSpoofedAuthor(t *testing.T) {
	s, app := newTestServer(t)
	user, token := createAccount(t, s, "user@example.com", models.RoleUser)
	other, _ := createAccount(t, s, "other@example.com", models.RoleUser)

	status, body := doJSON(t, app, http.MethodPost, "/api/ads/", token, map[string]any{
		"title":     "Bike",
		"price":     100,
		"author_id": other.ID,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, user.ID, body["author_id"])
}

func TestAdUpdate_AdminOnly(t *testing.T) {
	s, app := newTestServer(t)
	owner, ownerToken := createAccount(t, s, "owner@example.com", models.RoleUser)
	_, adminToken := createAccount(t, s, "admin@example.com", models.RoleAdmin)
	ad := createAd(t, s, owner.ID, "Bike")
	path := fmt.Sprintf("/api/ads/%d", ad.ID)

	// Even the owner cannot modify an ad without the admin role.
	status, _ := doJSON(t, app, http.MethodPatch, path, ownerToken, map[string]any{"price": 200})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := doJSON(t, app, http.MethodPatch, path, adminToken, map[string]any{"price": 200})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 200, body["price"])
	assert.Equal(t, "Bike", body["title"], "fields absent from the body stay untouched")
}

func TestAdDelete_AdminOnly(t *testing.T) {
	s, app := newTestServer(t)
	owner, ownerToken := createAccount(t, s, "owner@example.com", models.RoleUser)
	_, adminToken := createAccount(t, s, "admin@example.com", models.RoleAdmin)
	ad := createAd(t, s, owner.ID, "Bike")
	path := fmt.Sprintf("/api/ads/%d", ad.ID)

	status, _ := doJSON(t, app, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodDelete, path, ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, app, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMyAds_ReturnsFullListing(t *testing.T) {
	s, app := newTestServer(t)
	user, token := createAccount(t, s, "user@example.com", models.RoleUser)
	other, _ := createAccount(t, s, "other@example.com", models.RoleUser)
	createAd(t, s, user.ID, "Mine")
	createAd(t, s, other.ID, "Theirs")

	status, _ := doJSON(t, app, http.MethodGet, "/api/ads/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doJSON(t, app, http.MethodGet, "/api/ads/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["count"], "listing is not filtered by author")
}

func TestAdRetrieve_InvalidID(t *testing.T) {
	s, app := newTestServer(t)
	_, token := createAccount(t, s, "user@example.com", models.RoleUser)

	status, _ := doJSON(t, app, http.MethodGet, "/api/ads/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
