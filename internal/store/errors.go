package store

import (
	"errors"
	"fmt"
)

// Ledger errors surfaced to the API layer. Anything else coming out of the
// store is a persistence failure and rolls the whole operation back.
var (
	ErrTableNotFound   = errors.New("table not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order is not pending")
	ErrNoPendingOrders = errors.New("no pending orders found for this table")
)

// ConflictError is returned when a waiter submits items to a table whose
// pending order belongs to another waiter and force_add is not set. Carries
// both names so the operator can decide whether to override.
type ConflictError struct {
	TableID        int64
	ExistingWaiter string
	CurrentWaiter  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("table %d is currently assigned to %s, not %s",
		e.TableID, e.ExistingWaiter, e.CurrentWaiter)
}

// IsConflict reports whether err is a waiter-assignment conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
