package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/vajra/internal/models"
	"github.com/example/vajra/internal/repository"
)

// AddressService manages a user's saved addresses.
type AddressService struct {
	store repository.UserStore
}

// NewAddressService constructs an AddressService.
func NewAddressService(store repository.UserStore) *AddressService {
	return &AddressService{store: store}
}

// AddAddress appends addr unless the user already has one with the same line1
// and zip, and returns the resulting list either way.
func (s *AddressService) AddAddress(ctx context.Context, userID string, addr models.Address) ([]models.Address, error) {
	addr.ID = ""
	if _, err := s.store.AddAddress(ctx, userID, addr); err != nil {
		return nil, userError(err)
	}
	return s.GetAddresses(ctx, userID)
}

// GetAddresses returns the user's addresses, never nil.
func (s *AddressService) GetAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, userError(err)
	}
	if user.Addresses == nil {
		return []models.Address{}, nil
	}
	return user.Addresses, nil
}

func userError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "User not found")
	}
	return fmt.Errorf("load user: %w", err)
}
