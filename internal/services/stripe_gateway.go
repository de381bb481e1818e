package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Checkout session events that can settle an order.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventCheckoutAsyncSuccess = "checkout.session.async_payment_succeeded"
)

// StripeGateway implements PaymentGateway and WebhookVerifier on Stripe Checkout.
type StripeGateway struct {
	WebhookKey string
}

// NewStripeGateway configures the Stripe client key.
func NewStripeGateway(secretKey, webhookKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{WebhookKey: webhookKey}
}

// CreateSession opens a one-line checkout session for the order amount.
func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	name := req.Description
	if name == "" {
		name = "Order " + req.OrderID
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.ReturnURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(MinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("order_id", req.OrderID)
	if req.CustomerID != "" {
		params.AddMetadata("user_id", req.CustomerID)
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// SessionPaid asks Stripe for the session's payment status.
func (g *StripeGateway) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return false, err
	}
	return sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the order
// reference from checkout session events.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.WebhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, newError(ErrInvalid, "invalid webhook signature")
	}

	out := WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if (out.Type != EventCheckoutCompleted && out.Type != EventCheckoutAsyncSuccess) || event.Data == nil {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = sess.ID
	out.OrderID = sess.ClientReferenceID
	if out.OrderID == "" {
		out.OrderID = sess.Metadata["order_id"]
	}
	out.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	return out, nil
}

// MinorUnits converts a decimal amount to the smallest currency unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
