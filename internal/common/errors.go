// Package common defines the sentinel errors shared by the repositories,
// the identity workflow and the transport layer. Callers should use
// errors.Is to match these values; the transport maps each kind to a status.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrorPersistence = errors.New("db error")

	// Workflow errors.
	ErrorInvalidInput = errors.New("invalid input")
	ErrorConflict     = errors.New("conflict")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInternal     = errors.New("internal error")

	// Auth errors (invalid or malformed bearer token).
	ErrInvalidToken = errors.New("invalid token")
)

// Persistence marks err as a storage failure while keeping it in the chain.
func Persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrorPersistence, err)
}
