package triprepo

import "errors"

var (
	ErrNotFound      = errors.New("trip not found")
	ErrAlreadyExists = errors.New("trip already exists")
	// ErrConflict means the stored trip changed status since it was read.
	ErrConflict = errors.New("trip status changed concurrently")
)
