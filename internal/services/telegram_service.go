package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService posts admin alerts through the Telegram Bot API.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	log         *zap.Logger
}

// NewTelegramService creates a new TelegramService. An empty token or chat id
// turns every send into a no-op.
func NewTelegramService(botToken, adminChatID string, log *zap.Logger) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
}

// Enabled reports whether both the bot token and the admin chat are configured.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML formatted message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		s.log.Debug("telegram bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		s.log.Debug("telegram admin chat not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// PaymentSuccessNotification describes a freshly paid order.
type PaymentSuccessNotification struct {
	OrderID       string
	CustomerName  string
	CustomerEmail string
	Amount        float64
	Currency      string
	ItemCount     int
}

// FormatPrice renders the integral part of amount with thousand separators
// followed by the currency code.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "INR"
	}
	str := fmt.Sprintf("%d", int64(amount))
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	var result strings.Builder
	if negative {
		result.WriteByte('-')
	}
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String() + " " + currency
}

// NotifyPaymentSuccess tells the admin chat that an order was paid.
func (s *TelegramService) NotifyPaymentSuccess(ctx context.Context, payment PaymentSuccessNotification) error {
	if !s.Enabled() {
		return nil
	}

	customer := payment.CustomerName
	if customer == "" {
		customer = "guest"
	}
	if payment.CustomerEmail != "" {
		customer += " (" + payment.CustomerEmail + ")"
	}

	message := fmt.Sprintf(`<b>✅ PAYMENT RECEIVED</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>📦 Items:</b> %d
<b>💰 Amount:</b> %s
━━━━━━━━━━━━━━━━━━
<i>Vajra Store</i>`,
		html.EscapeString(payment.OrderID),
		html.EscapeString(customer),
		payment.ItemCount,
		FormatPrice(payment.Amount, payment.Currency),
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
