// Package apperr defines sentinel errors shared across the service and
// transport layers.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrCoreMissing = errors.New("core documents missing")
	ErrValidation  = errors.New("validation failed")
)
