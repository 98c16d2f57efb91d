package errors

import "errors"

var (
	ErrNotFound = errors.New("hospital not found")

	ErrInsufficientStock = errors.New("insufficient stock")

	ErrUnknownBloodType = errors.New("unknown blood type")

	ErrInvalidQuantity = errors.New("quantity must be positive")
)
