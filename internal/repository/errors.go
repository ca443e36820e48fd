package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness constraint fails, such as an
	// activity already referenced by another project
	ErrConflict = errors.New("conflict: value already in use")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
