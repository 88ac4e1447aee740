package services

import (
	"errors"
	"fmt"
)

// Error kinds returned by the lifecycle and sync services. Condition
// sentinels wrap their kind, so callers can match the precise
// condition or the broad kind with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")

	ErrEmptyCart       = fmt.Errorf("%w: cart has no items", ErrValidation)
	ErrNegativeTotal   = fmt.Errorf("%w: totals must not be negative", ErrValidation)
	ErrInvalidDiscount = fmt.Errorf("%w: discount out of range", ErrValidation)

	ErrTableBusy   = fmt.Errorf("%w: table is busy", ErrConflict)
	ErrOrderClosed = fmt.Errorf("%w: order is closed", ErrConflict)
	ErrOrderFinal  = fmt.Errorf("%w: order is already served or cancelled", ErrConflict)
	ErrSyncBusy    = fmt.Errorf("%w: a sync round is already running", ErrConflict)

	// ErrSyncFailed is returned by a sync round only when every entity
	// class failed; partial failure is carried in the report instead.
	ErrSyncFailed = errors.New("sync failed for every entity class")
)
