package store

import "errors"

var (
	// ErrInsufficientStock returned when a decrement would take stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound returned when a referenced product or sale does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCompleted returned when settling a sale that is already completed.
	ErrAlreadyCompleted = errors.New("sale already completed")
)
