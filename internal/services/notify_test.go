package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0 INR", FormatPrice(0, ""))
	assert.Equal(t, "999 INR", FormatPrice(999.99, "INR"))
	assert.Equal(t, "1,250 INR", FormatPrice(1250, "INR"))
	assert.Equal(t, "12,345,678 USD", FormatPrice(12345678, "USD"))
	assert.Equal(t, "-1,000 INR", FormatPrice(-1000, "INR"))
}

func TestTelegramNotifyPaymentSuccess(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewTelegramService("token", "42", zap.NewNop())
	svc.baseURL = srv.URL

	err := svc.NotifyPaymentSuccess(context.Background(), PaymentSuccessNotification{
		OrderID:      "order_1",
		CustomerName: "Asha",
		Amount:       2500,
		Currency:     "INR",
		ItemCount:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, "/bottoken/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "order_1")
	assert.Contains(t, got.Text, "2,500 INR")
}

func TestTelegramEscapesCustomerFields(t *testing.T) {
	var got telegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewTelegramService("token", "42", zap.NewNop())
	svc.baseURL = srv.URL

	require.NoError(t, svc.NotifyPaymentSuccess(context.Background(), PaymentSuccessNotification{
		OrderID:       "order_1",
		CustomerName:  "Tom & <Jerry>",
		CustomerEmail: "tom@example.com",
		Amount:        10,
	}))
	assert.Contains(t, got.Text, "Tom &amp; &lt;Jerry&gt; (tom@example.com)")
	assert.NotContains(t, got.Text, "<Jerry>")
}

func TestTelegramDisabledIsNoop(t *testing.T) {
	svc := NewTelegramService("", "", zap.NewNop())
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.NotifyPaymentSuccess(context.Background(), PaymentSuccessNotification{OrderID: "order_1"}))
}

func TestTelegramReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	svc := NewTelegramService("token", "42", zap.NewNop())
	svc.baseURL = srv.URL
	assert.EqualError(t, svc.SendToAdmin(context.Background(), "hi"), "telegram returned status 400")
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	sender, err := NewSMTPSender("smtp.example.com", "587", "mailer@example.com", "pw", "")
	require.NoError(t, err)

	var addr, from string
	var to []string
	var msg []byte
	sender.send = func(a string, _ smtp.Auth, f string, rcpt []string, m []byte) error {
		addr, from, to, msg = a, f, rcpt, m
		return nil
	}

	require.NoError(t, sender.SendEmail(context.Background(), "asha@example.com", "Code", "1234"))
	assert.Equal(t, "smtp.example.com:587", addr)
	assert.Equal(t, "mailer@example.com", from)
	assert.Equal(t, []string{"asha@example.com"}, to)
	assert.True(t, strings.HasSuffix(string(msg), "\r\n\r\n1234"))
	assert.Contains(t, string(msg), "Subject: Code\r\n")

	sender.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.ErrorContains(t, sender.SendEmail(context.Background(), "asha@example.com", "Code", "1234"), "refused")

	_, err = NewSMTPSender("", "587", "u", "p", "")
	assert.Error(t, err)
}

func TestStripeParseWebhook(t *testing.T) {
	gateway := &StripeGateway{WebhookKey: "whsec_test"}
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"client_reference_id": "order_1",
			"payment_status": "paid"
		}}
	}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	event, err := gateway.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "order_1", event.OrderID)
	assert.Equal(t, "cs_test_1", event.SessionID)
	assert.True(t, event.Paid)

	_, err = gateway.ParseWebhook(payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2100), MinorUnits(21))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
}
