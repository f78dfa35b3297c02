package store

import "errors"

// ErrNotFound is returned by mutators whose target row does not exist.
var ErrNotFound = errors.New("not found")
