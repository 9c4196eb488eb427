package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrDuplicateEmail         = errors.New("email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAuthenticationRequired = errors.New("authorization header is required")
	ErrAccountBlocked         = errors.New("user account is blocked")
	ErrAccessDenied           = errors.New("access denied")
	ErrSelfLockout            = errors.New("admin cannot block themselves")
	ErrUserNotFound           = errors.New("user not found")
	ErrStorage                = errors.New("storage failure")
)

// ErrAdminRequired is the access denial raised when an operation needs the admin role.
var ErrAdminRequired = fmt.Errorf("%w: admin role required", ErrAccessDenied)

// ValidationError describes rejected input. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
