package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/vajra/internal/models"
	"github.com/example/vajra/internal/repository"
	"github.com/example/vajra/internal/utils"
)

const alertTimeout = 15 * time.Second

// PaymentAlerter is told about every order that becomes paid.
type PaymentAlerter interface {
	NotifyPaymentSuccess(ctx context.Context, payment PaymentSuccessNotification) error
}

// OrderOptions configures an OrderService.
type OrderOptions struct {
	Currency      string
	PublicBaseURL string
	// ConfirmPayments makes VerifyPayment ask the gateway before marking an
	// order paid. When false the success redirect alone settles the order.
	ConfirmPayments bool
}

// CreateOrderResult carries the gateway session for a new order.
type CreateOrderResult struct {
	PaymentSessionID string `json:"paymentSessionId"`
	OrderID          string `json:"orderId"`
}

// VerifyResult reports the outcome of VerifyPayment.
type VerifyResult struct {
	OrderID     string
	AlreadyPaid bool
}

// OrderService coordinates orders between the user store and the payment gateway.
type OrderService struct {
	store    repository.UserStore
	gateway  PaymentGateway
	alerter  PaymentAlerter
	log      *zap.Logger
	opts     OrderOptions
	now      func() time.Time
	inflight sync.WaitGroup
}

// NewOrderService constructs an OrderService. alerter may be nil.
func NewOrderService(store repository.UserStore, gateway PaymentGateway, alerter PaymentAlerter, log *zap.Logger, opts OrderOptions) *OrderService {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &OrderService{
		store:   store,
		gateway: gateway,
		alerter: alerter,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

// ReturnURL is where the gateway sends the shopper after a successful payment.
func (s *OrderService) ReturnURL(orderID string) string {
	return s.opts.PublicBaseURL + "/payment-success.html?order_id=" + orderID
}

// CancelURL is where the gateway sends the shopper after an abandoned payment.
func (s *OrderService) CancelURL() string {
	return s.opts.PublicBaseURL + "/payment-failed"
}

// CreateOrder records a pending order for a known user and opens a payment
// session for it. A non-positive amount is recomputed from items.
func (s *OrderService) CreateOrder(ctx context.Context, amount float64, userID string, items []models.OrderItem) (*CreateOrderResult, error) {
	if amount <= 0 {
		amount = utils.CalculateTotal(items)
	}
	if items == nil {
		items = []models.OrderItem{}
	}

	now := s.now()
	order := models.Order{
		OrderID:  fmt.Sprintf("order_%d", now.UnixNano()),
		Amount:   amount,
		Currency: s.opts.Currency,
		Status:   models.OrderStatusPending,
		Date:     now,
		Items:    items,
	}

	req := SessionRequest{
		OrderID:   order.OrderID,
		Amount:    amount,
		Currency:  s.opts.Currency,
		ReturnURL: s.ReturnURL(order.OrderID),
		CancelURL: s.CancelURL(),
	}

	persisted := s.persistOrder(ctx, userID, order, &req)

	sessionID, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		s.log.Error("payment session creation failed", zap.String("order_id", order.OrderID), zap.Error(err))
		return nil, upstream(err)
	}

	if persisted {
		if err := s.store.SetOrderSession(ctx, order.OrderID, sessionID); err != nil {
			s.log.Warn("failed to record payment session",
				zap.String("order_id", order.OrderID),
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}

	return &CreateOrderResult{PaymentSessionID: sessionID, OrderID: order.OrderID}, nil
}

// persistOrder stores order on the user when the user exists. Failures are
// logged and the checkout continues without a stored order.
func (s *OrderService) persistOrder(ctx context.Context, userID string, order models.Order, req *SessionRequest) bool {
	if userID == "" {
		return false
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("order owner lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return false
	}
	req.CustomerID = user.ID
	req.CustomerEmail = user.Email

	if err := s.store.AddOrder(ctx, user.ID, order); err != nil {
		s.log.Warn("failed to persist order", zap.String("order_id", order.OrderID), zap.Error(err))
		return false
	}
	return true
}

// VerifyPayment settles orderID after the shopper returns from the gateway.
func (s *OrderService) VerifyPayment(ctx context.Context, orderID string) (*VerifyResult, error) {
	user, order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return &VerifyResult{OrderID: orderID, AlreadyPaid: true}, nil
	}

	if s.opts.ConfirmPayments {
		if order.PaymentSessionID == "" {
			return nil, ErrPaymentIncomplete
		}
		paid, err := s.gateway.SessionPaid(ctx, order.PaymentSessionID)
		if err != nil {
			return nil, upstream(err)
		}
		if !paid {
			return nil, ErrPaymentIncomplete
		}
	}

	changed, err := s.markPaid(ctx, user, order)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{OrderID: orderID, AlreadyPaid: !changed}, nil
}

// HandleWebhook settles the order referenced by a verified checkout event.
// Events of other types, or for unknown orders, are acknowledged and ignored.
func (s *OrderService) HandleWebhook(ctx context.Context, verifier WebhookVerifier, payload []byte, signature string) error {
	event, err := verifier.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.OrderID == "" || !event.Paid {
		s.log.Info("webhook event ignored",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return nil
	}

	user, order, err := s.findOrder(ctx, event.OrderID)
	if errors.Is(err, ErrNotFound) {
		s.log.Warn("webhook for unknown order", zap.String("order_id", event.OrderID))
		return nil
	}
	if err != nil {
		return err
	}
	if order.PaymentSessionID != "" && event.SessionID != "" && order.PaymentSessionID != event.SessionID {
		s.log.Warn("webhook session does not match order",
			zap.String("order_id", order.OrderID),
			zap.String("session_id", event.SessionID),
		)
		return nil
	}

	_, err = s.markPaid(ctx, user, order)
	return err
}

// GetOrders returns the user's orders, never nil.
func (s *OrderService) GetOrders(ctx context.Context, userID string) ([]models.Order, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, userError(err)
	}
	if user.Orders == nil {
		return []models.Order{}, nil
	}
	return user.Orders, nil
}

// Wait blocks until pending payment alerts have been sent.
func (s *OrderService) Wait() {
	s.inflight.Wait()
}

func (s *OrderService) findOrder(ctx context.Context, orderID string) (*models.User, *models.Order, error) {
	user, err := s.store.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, newError(ErrNotFound, "Order not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup order: %w", err)
	}
	order, ok := user.FindOrder(orderID)
	if !ok {
		return nil, nil, newError(ErrNotFound, "Order not found")
	}
	return user, order, nil
}

func (s *OrderService) markPaid(ctx context.Context, user *models.User, order *models.Order) (bool, error) {
	changed, err := s.store.MarkOrderPaid(ctx, order.OrderID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return false, newError(ErrNotFound, "Order not found")
	}
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	if changed {
		s.log.Info("order paid", zap.String("order_id", order.OrderID), zap.Float64("amount", order.Amount))
		s.alert(user, order)
	}
	return changed, nil
}

func (s *OrderService) alert(user *models.User, order *models.Order) {
	if s.alerter == nil {
		return
	}

	payment := PaymentSuccessNotification{
		OrderID:       order.OrderID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		Amount:        order.Amount,
		Currency:      order.Currency,
		ItemCount:     len(order.Items),
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := s.alerter.NotifyPaymentSuccess(ctx, payment); err != nil {
			s.log.Warn("payment alert failed", zap.String("order_id", payment.OrderID), zap.Error(err))
		}
	}()
}
