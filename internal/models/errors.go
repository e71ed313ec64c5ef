// ABOUTME: Error kinds shared by the catalog, tracker and storage layers.
// ABOUTME: Callers classify failures with errors.Is against the sentinels.
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected user input such as a blank name.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup of a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPrecondition marks a structural operation attempted in the wrong state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrStore marks any failure of the underlying persistence layer.
	ErrStore = errors.New("store error")
)

// StoreError wraps a backend failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStore) match any StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// NewStoreError wraps err as a StoreError. Not-found and nil errors pass through.
func NewStoreError(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// NotFound builds an ErrNotFound error naming the missing record.
func NotFound(kind string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}
