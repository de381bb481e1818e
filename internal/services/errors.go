package services

import "errors"

// Domain errors returned by the services. Callers match them with errors.Is.
var (
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
	ErrUpstream     = errors.New("upstream failure")
)

// ErrPaymentIncomplete is returned when the gateway reports a session as unpaid.
var ErrPaymentIncomplete = &DomainError{Kind: ErrInvalid, Message: "payment not completed"}

// DomainError carries a caller-facing message for one of the sentinel kinds.
type DomainError struct {
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *DomainError) Is(target error) bool {
	return target == e.Kind
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func newError(kind error, message string) error {
	return &DomainError{Kind: kind, Message: message}
}

// upstream wraps a collaborator failure so its own message reaches the caller.
func upstream(err error) error {
	return &DomainError{Kind: ErrUpstream, Err: err}
}
