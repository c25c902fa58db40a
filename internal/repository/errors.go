package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write collides with a uniqueness constraint.
	ErrConflict = errors.New("entity already exists")

	// ErrStaleStatus is returned when a conditional status update finds the
	// row already moved on.
	ErrStaleStatus = errors.New("status changed concurrently")

	// ErrInsufficientBalance is returned when a debit would leave a negative balance.
	ErrInsufficientBalance = errors.New("insufficient bank hours")
)
