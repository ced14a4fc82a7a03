package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Remote backend errors
	ErrAuth  = errors.New("authentication with the game backend failed")
	ErrFetch = errors.New("game backend returned no usable payload")
	ErrParse = errors.New("payload could not be decoded")
	ErrSave  = errors.New("game backend did not acknowledge the save")
	ErrNoOp  = errors.New("new local ID equals the current local ID")

	// Local bookkeeping errors
	ErrUserNotFound   = errors.New("user not found")
	ErrKeyNotFound    = errors.New("access key not found")
	ErrKeyAlreadyUsed = errors.New("access key already redeemed")
	ErrUsernameExists = errors.New("username already exists")
	ErrTierForbidden  = errors.New("access tier does not permit this operation")
)

// AuthError wraps ErrAuth with the identity service's specific reason
// (EMAIL_NOT_FOUND, INVALID_PASSWORD, ...) so it can be surfaced verbatim.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return ErrAuth.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAuth.Error(), e.Reason)
}

func (e *AuthError) Unwrap() error {
	return ErrAuth
}

// NewAuthError creates an AuthError with the given backend reason
func NewAuthError(reason string) error {
	return &AuthError{Reason: reason}
}
