package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/vajra/internal/models"
	"github.com/example/vajra/internal/repository"
	"github.com/example/vajra/internal/utils"
)

const resetSubject = "Your password reset code"

// LoginResult is returned on a successful login.
type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// AuthService implements registration, login and the one-time code reset flow.
type AuthService struct {
	store  repository.UserStore
	mailer EmailSender
	log    *zap.Logger
	otpTTL time.Duration

	now         func() time.Time
	generateOTP func() (string, error)
}

// NewAuthService constructs an AuthService.
func NewAuthService(store repository.UserStore, mailer EmailSender, log *zap.Logger, otpTTL time.Duration) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &AuthService{
		store:       store,
		mailer:      mailer,
		log:         log,
		otpTTL:      otpTTL,
		now:         time.Now,
		generateOTP: utils.GenerateOTP,
	}
}

// Register creates an account. A duplicate email yields ErrConflict whether it
// is caught by the lookup or by the store's unique index.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return newError(ErrConflict, "Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return newError(ErrConflict, "Email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login checks the password and returns the caller's user id and name.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.findByEmail(ctx, email, "Email not found")
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, newError(ErrUnauthorized, "Incorrect password")
	}
	return &LoginResult{UserID: user.ID, Name: user.Name}, nil
}

// ForgotPassword stores a fresh code and mails it. When delivery fails the code
// stays valid and is written to the log for manual recovery.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email, "User not found")
	if err != nil {
		return err
	}

	code, err := s.generateOTP()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	expiresAt := s.now().Add(s.otpTTL)
	if err := s.store.SetResetCode(ctx, user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(ctx, user.Email, resetSubject, body); err != nil {
		s.log.Warn("reset code delivery failed",
			zap.String("email", user.Email),
			zap.String("otp", code),
			zap.Time("expires_at", expiresAt),
			zap.Error(err),
		)
		return upstream(fmt.Errorf("failed to send reset code: %w", err))
	}
	return nil
}

// ResetPassword replaces the password when code matches the stored, unexpired code.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.findByEmail(ctx, email, "User not found")
	if err != nil {
		return err
	}

	switch {
	case user.OTP == "" || user.OTP != code:
		return newError(ErrInvalid, "Invalid OTP")
	case user.OTPExpiry == nil || !s.now().Before(*user.OTPExpiry):
		return newError(ErrInvalid, "OTP expired")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// hashPassword reports unusable passwords as ErrInvalid.
func hashPassword(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	switch {
	case errors.Is(err, utils.ErrEmptyPassword), errors.Is(err, utils.ErrPasswordTooLong):
		return "", &DomainError{Kind: ErrInvalid, Message: "Password must be 1 to 72 bytes long", Err: err}
	case err != nil:
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email, missing string) (*models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, missing)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
