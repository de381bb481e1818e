package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/vajra/internal/services"
)

const paymentFailedPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Payment Failed</title>
</head>
<body>
<h1>Payment Failed</h1>
<p>Your payment could not be completed. No money has been taken.</p>
<p><a href="/cart.html">Return to cart</a></p>
</body>
</html>
`

// PaymentHandler serves the payment callbacks.
type PaymentHandler struct {
	orders   *services.OrderService
	verifier services.WebhookVerifier
	log      *zap.Logger
}

// NewPaymentHandler constructs PaymentHandler. verifier may be nil when
// webhooks are not configured.
func NewPaymentHandler(orders *services.OrderService, verifier services.WebhookVerifier, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{orders: orders, verifier: verifier, log: log}
}

type verifyPaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

// VerifyPayment settles an order after the gateway's success redirect.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.orders.VerifyPayment(c.UserContext(), req.OrderID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	case err != nil:
		return serviceError(err)
	}

	message := "Payment verified"
	if res.AlreadyPaid {
		message = "Order already paid"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// Webhook accepts signed gateway events.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if h.verifier == nil {
		return fiber.NewError(fiber.StatusNotFound, "webhooks are not configured")
	}

	payload := append([]byte(nil), c.Body()...)
	err := h.orders.HandleWebhook(c.UserContext(), h.verifier, payload, c.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, services.ErrInvalid) {
			h.log.Warn("webhook rejected", zap.String("ip", c.IP()), zap.Error(err))
		}
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"received": true})
}

// PaymentFailed renders the page the gateway cancels to.
func (h *PaymentHandler) PaymentFailed(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(paymentFailedPage)
}
