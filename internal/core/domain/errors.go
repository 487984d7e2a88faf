package domain

import "errors"

// Repository-level sentinel errors. Adapters translate driver errors into
// these so that callers never depend on a specific database package.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)
