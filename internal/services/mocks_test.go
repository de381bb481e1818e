package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(WebhookEvent), args.Error(1)
}

type recordingAlerter struct {
	mu   sync.Mutex
	sent []PaymentSuccessNotification
}

func (r *recordingAlerter) NotifyPaymentSuccess(_ context.Context, payment PaymentSuccessNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, payment)
	return nil
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
