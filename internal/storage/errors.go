package storage

import "errors"

var (
	// ErrNotFound is returned when no embed exists for the requested code.
	ErrNotFound = errors.New("embed not found")

	// ErrAlreadyExists is returned when saving an embed whose code is taken.
	ErrAlreadyExists = errors.New("embed code already exists")
)
