package services

import "context"

// SessionRequest is what the coordinator asks the gateway to charge.
type SessionRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	ReturnURL     string
	CancelURL     string
	CustomerID    string
	CustomerEmail string
	Description   string
}

// PaymentGateway creates payment sessions and reports whether they were paid.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (string, error)
	SessionPaid(ctx context.Context, sessionID string) (bool, error)
}

// WebhookEvent is the subset of a verified gateway event the coordinator acts on.
type WebhookEvent struct {
	ID        string
	Type      string
	OrderID   string
	SessionID string
	Paid      bool
}

// WebhookVerifier authenticates a raw webhook delivery.
type WebhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}
