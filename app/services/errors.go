// Package services holds the application's use cases: accounts, the
// catalog, carts, the order ledger and session identity.
package services

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNotAuthorized      = errors.New("not authorized")
)

// ValidationError reports the first invalid field of a submitted form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
