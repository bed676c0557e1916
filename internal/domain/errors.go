package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized    = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrPoolNotFound    = errors.New("pool not found")
	ErrInvalidPoolKey  = errors.New("invalid pool key")
	ErrRunTimedOut     = errors.New("pool build exceeded its time limit")
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// StoreError is a failed page fetch or batch commit. It aborts the current run.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err, returning nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
