package domain

import "fmt"

// FetchError covers network failures, non-2xx responses and unparseable markup.
// Recoverable; the scheduler backs off and retries.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError covers state store read/write failures. A failed save
// leaves the previously persisted state intact.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %v", e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// DeliveryError covers notification send failures.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("delivery: %v", e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
