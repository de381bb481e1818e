package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/vajra/internal/models"
	"github.com/example/vajra/internal/services"
)

// AddressHandler manages address book endpoints.
type AddressHandler struct {
	addresses *services.AddressService
}

// NewAddressHandler constructs AddressHandler.
func NewAddressHandler(addresses *services.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type addAddressRequest struct {
	UserID  string          `json:"userId" validate:"required"`
	Address *models.Address `json:"address" validate:"required"`
}

// AddAddress saves an address and returns the user's full list.
func (h *AddressHandler) AddAddress(c *fiber.Ctx) error {
	var req addAddressRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	addresses, err := h.addresses.AddAddress(c.UserContext(), req.UserID, *req.Address)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"addresses": addresses})
}

// ListAddresses returns the addresses of the user in the path.
func (h *AddressHandler) ListAddresses(c *fiber.Ctx) error {
	addresses, err := h.addresses.GetAddresses(c.UserContext(), c.Params("userId"))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"addresses": addresses})
}
