package server

import (
	"skymarket/internal/models"
	"skymarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT and PATCH /api/users/me. Email and role are
// not editable through this endpoint.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Image     string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    currentUserID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Image:     req.Image,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(user)
}

// GetAllUsers handles GET /api/users (admin only)
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return serviceError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}

	return c.JSON(fiber.Map{
		"count":   len(users),
		"results": users,
	})
}

// CreateUserAsAdmin handles POST /api/users (admin only). Unlike signup,
// an explicit role may be supplied; admin accounts created this way are
// active immediately.
func (s *Server) CreateUserAsAdmin(c *fiber.Ctx) error {
	var req struct {
		Email     string      `json:"email"`
		Password  string      `json:"password"`
		FirstName string      `json:"first_name"`
		LastName  string      `json:"last_name"`
		Phone     string      `json:"phone"`
		Role      models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	}

	var (
		user *models.User
		err  error
	)
	if req.Role == models.RoleAdmin {
		user, err = s.userService.CreateAdmin(c.Context(), in)
	} else {
		user, err = s.userService.CreateUser(c.Context(), in)
	}
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// ActivateUser handles POST /api/users/:id/activate (admin only). This is
// the fallback path when the self-service activation token is unavailable.
func (s *Server) ActivateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.Activate(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

// SetUserRole handles POST /api/users/:id/set-role (admin only)
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetRole(c.Context(), id, req.Role)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}
