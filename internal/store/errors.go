package store

import "errors"

var (
	// ErrUnsupportedDriver is returned by Open for drivers other than
	// sqlite and postgres.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrInvalidSnapshot is returned when a snapshot fails validation.
	ErrInvalidSnapshot = errors.New("invalid course snapshot")
)
