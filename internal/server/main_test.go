package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"skymarket/internal/config"
	"skymarket/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer builds a Server on an in-memory database with routes
// registered. No Redis: rate limits are disabled in the test env and the
// cache degrades to direct reads.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Ad{}, &models.Comment{}))

	cfg := &config.Config{
		JWTSecret: "test-secret",
		Env:       "test",
	}

	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupRoutes(app)
	return s, app
}

// createAccount inserts an active account directly and returns it together
// with a bearer token.
func createAccount(t *testing.T, s *Server, email string, role models.Role) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecretPass"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		Phone:     "+79991234567",
		IsActive:  true,
	}
	require.NoError(t, s.db.Create(user).Error)

	token, err := s.generateToken(user.ID, user.Email)
	require.NoError(t, err)
	return user, token
}

func createAd(t *testing.T, s *Server, authorID uint, title string) *models.Ad {
	t.Helper()

	ad := &models.Ad{Title: title, Description: "desc", Price: 100, AuthorID: authorID}
	require.NoError(t, s.db.Create(ad).Error)
	return ad
}

// doJSON performs a request against the app and decodes the JSON response
// body into a map. The map is nil for empty bodies.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Some endpoints return arrays or plain text; callers that care
		// decode the body themselves.
		return resp.StatusCode, nil
	}
	return resp.StatusCode, decoded
}
