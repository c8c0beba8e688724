package service

import "errors"

// Service-level errors surfaced to handlers.
var (
	// ErrInsufficientStock is returned when an order line requests more
	// units than the product has available.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnknownProduct is returned when an order references a product id
	// that does not exist.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrUserNotFound is returned when no user matches the given email or id.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword is returned when a password check fails.
	ErrWrongPassword = errors.New("wrong password")
)
