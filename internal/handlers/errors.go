package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/vajra/internal/services"
	"github.com/example/vajra/internal/utils"
)

const serverError = "Server Error"

// ErrorHandler renders every error as {"message": ...} and logs server faults.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := serverError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}

// serviceError maps a service error onto an HTTP error.
func serviceError(err error) error {
	var de *services.DomainError
	message := serverError
	if errors.As(err, &de) {
		message = de.Error()
	}

	switch {
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, message)
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, message)
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, message)
	case errors.Is(err, services.ErrUpstream):
		return fiber.NewError(fiber.StatusInternalServerError, message)
	}
	return err
}

// parseBody decodes and validates the request body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.Validate(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, utils.FirstValidationMessage(err))
	}
	return nil
}
