package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a malformed value was rejected before reaching the store.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the requested profile or entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStore indicates the record store rejected a read or write.
	ErrStore = errors.New("store error")
)

// StoreError wraps a failure returned by the record store.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes every StoreError match ErrStore.
func (e *StoreError) Is(target error) bool { return target == ErrStore }
