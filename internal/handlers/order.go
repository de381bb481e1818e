package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/vajra/internal/models"
	"github.com/example/vajra/internal/services"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	Amount models.FlexFloat   `json:"amount"`
	UserID string             `json:"userId"`
	Items  []models.OrderItem `json:"items"`
}

// CreateOrder records the order and opens a payment session for it.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	res, err := h.orders.CreateOrder(c.UserContext(), float64(req.Amount), req.UserID, req.Items)
	if err != nil {
		message := serverError
		if errors.Is(err, services.ErrUpstream) {
			message = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"paymentSessionId": res.PaymentSessionID,
		"orderId":          res.OrderID,
	})
}

// ListOrders returns the orders of the user in the path.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.GetOrders(c.UserContext(), c.Params("userId"))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"orders": orders})
}
