package repository

import "errors"

// ErrNotFound is returned when the requested run does not exist.
var ErrNotFound = errors.New("agent run not found")
