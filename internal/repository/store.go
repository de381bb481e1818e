package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/vajra/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when the unique email constraint rejects an insert.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore persists users together with their addresses and orders.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.User, error)

	SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	// UpdatePassword replaces the hash and clears any stored reset code.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// AddAddress appends addr unless an entry with the same line1 and zip exists.
	AddAddress(ctx context.Context, userID string, addr models.Address) (bool, error)

	AddOrder(ctx context.Context, userID string, order models.Order) error
	SetOrderSession(ctx context.Context, orderID, sessionID string) error
	// MarkOrderPaid moves a pending order to Paid and reports whether it changed.
	MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time) (bool, error)
}

func normalize(user *models.User) {
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}
}
