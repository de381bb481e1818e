package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vajra/internal/models"
)

// GormStore keeps users in postgres, with addresses and orders in child tables.
// The gorm.DB must be opened with TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	normalize(user)
	if err := s.db.WithContext(ctx).Omit("Addresses", "Orders").Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) FindByOrderID(ctx context.Context, orderID string) (*models.User, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return s.first(ctx, "id = ?", order.UserID)
}

func (s *GormStore) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return s.updateUser(ctx, userID, map[string]any{
		"otp":        code,
		"otp_expiry": expiresAt,
	})
}

func (s *GormStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.updateUser(ctx, userID, map[string]any{
		"password_hash": passwordHash,
		"otp":           "",
		"otp_expiry":    nil,
	})
}

func (s *GormStore) AddAddress(ctx context.Context, userID string, addr models.Address) (bool, error) {
	if _, err := s.FindByID(ctx, userID); err != nil {
		return false, err
	}

	addr.UserID = userID
	if err := s.db.WithContext(ctx).Create(&addr).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("create address: %w", err)
	}
	return true, nil
}

func (s *GormStore) AddOrder(ctx context.Context, userID string, order models.Order) error {
	if _, err := s.FindByID(ctx, userID); err != nil {
		return err
	}

	order.UserID = userID
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *GormStore) SetOrderSession(ctx context.Context, orderID, sessionID string) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Update("payment_session_id", sessionID)
	if res.Error != nil {
		return fmt.Errorf("set order session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND status <> ?", orderID, models.OrderStatusPaid).
		Updates(map[string]any{
			"status":  models.OrderStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark order paid: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("date asc") }).
		Where(query, args...).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	normalize(&user)
	return &user, nil
}

func (s *GormStore) updateUser(ctx context.Context, userID string, updates map[string]any) error {
	if _, err := uuid.Parse(userID); err != nil {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("query: %w", err)
}
