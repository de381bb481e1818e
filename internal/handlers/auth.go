package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/vajra/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"message": "Registration Successful"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user. Unknown emails and wrong passwords are
// both reported as 400.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrUnauthorized) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"message": "Login Successful",
		"userId":  res.UserID,
		"name":    res.Name,
	})
}

// Ping answers the health probe.
func Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "API Working Fine"})
}
