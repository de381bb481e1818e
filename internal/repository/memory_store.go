package repository

import (
	"context"
	"sync"
	"time"

	"github.com/example/vajra/internal/models"
)

// MemoryStore keeps users in process memory. It backs STORE_DRIVER=memory and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = models.NewID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	normalize(user)

	s.users[user.ID] = clone(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s.users[id]), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(user), nil
}

func (s *MemoryStore) FindByOrderID(ctx context.Context, orderID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if _, ok := user.FindOrder(orderID); ok {
			return clone(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return s.update(userID, func(user *models.User) {
		user.OTP = code
		expiry := expiresAt
		user.OTPExpiry = &expiry
	})
}

func (s *MemoryStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.update(userID, func(user *models.User) {
		user.PasswordHash = passwordHash
		user.OTP = ""
		user.OTPExpiry = nil
	})
}

func (s *MemoryStore) AddAddress(ctx context.Context, userID string, addr models.Address) (bool, error) {
	added := false
	err := s.update(userID, func(user *models.User) {
		if user.HasAddress(addr) {
			return
		}
		if addr.ID == "" {
			addr.ID = models.NewID()
		}
		addr.UserID = userID
		user.Addresses = append(user.Addresses, addr)
		added = true
	})
	return added, err
}

func (s *MemoryStore) AddOrder(ctx context.Context, userID string, order models.Order) error {
	return s.update(userID, func(user *models.User) {
		order.UserID = userID
		user.Orders = append(user.Orders, order)
	})
}

func (s *MemoryStore) SetOrderSession(ctx context.Context, orderID, sessionID string) error {
	return s.updateOrder(orderID, func(order *models.Order) bool {
		order.PaymentSessionID = sessionID
		return true
	})
}

func (s *MemoryStore) MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time) (bool, error) {
	changed := false
	err := s.updateOrder(orderID, func(order *models.Order) bool {
		if order.IsPaid() {
			return false
		}
		order.Status = models.OrderStatusPaid
		at := paidAt
		order.PaidAt = &at
		changed = true
		return true
	})
	return changed, err
}

func (s *MemoryStore) update(userID string, mutate func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	mutate(user)
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) updateOrder(orderID string, mutate func(*models.Order) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if order, ok := user.FindOrder(orderID); ok {
			if mutate(order) {
				user.UpdatedAt = time.Now().UTC()
			}
			return nil
		}
	}
	return ErrNotFound
}

func clone(user *models.User) *models.User {
	out := *user
	out.Addresses = append([]models.Address{}, user.Addresses...)
	out.Orders = make([]models.Order, len(user.Orders))
	for i, order := range user.Orders {
		order.Items = append([]models.OrderItem{}, order.Items...)
		if order.PaidAt != nil {
			paidAt := *order.PaidAt
			order.PaidAt = &paidAt
		}
		out.Orders[i] = order
	}
	if user.OTPExpiry != nil {
		expiry := *user.OTPExpiry
		out.OTPExpiry = &expiry
	}
	return &out
}
