package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/vajra/internal/services"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	auth *services.AuthService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(auth *services.AuthService) *PasswordResetHandler {
	return &PasswordResetHandler{auth: auth}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ForgotPassword mails a one-time code to the account's email.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"message": "OTP sent to your email"})
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

// ResetPassword updates the password after checking the one-time code.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Email, req.OTP, req.NewPassword); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"message": "Password reset successful"})
}
