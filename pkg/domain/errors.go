package domain

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: malformed queries, unknown enum
	// values. Data-quality gaps in stored records never produce it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by repositories when an id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrEmptyNote is returned when note content is blank after trimming.
	ErrEmptyNote = errors.New("note content cannot be empty")
)
