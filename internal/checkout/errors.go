package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to submit")
	ErrIllegalTransition = errors.New("illegal transition of submission status")
)

// ValidationError blocks a submission before any write happens. The user
// corrects the input and retries.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// PersistenceError is a storage failure while writing the order header or
// its items. Orphaned indicates an order header already exists that the
// failed item write left without rows.
type PersistenceError struct {
	Step     string
	Orphaned bool
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed at %s: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InventoryError reports decrements that failed after the order was
// durably recorded. The order stands; the named products need back-office
// stock reconciliation.
type InventoryError struct {
	FailedProducts []string
}

func (e *InventoryError) Error() string {
	return "inventory decrement failed for: " + strings.Join(e.FailedProducts, ", ")
}
