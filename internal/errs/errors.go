package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
    ErrNotFound = errors.New("not_found")
    ErrInvalid  = errors.New("invalid")
    // ErrInvalidAmount is returned for negative, non-numeric or wrong-currency amounts.
    ErrInvalidAmount = errors.New("invalid_amount")
    // ErrInsufficientFunds indicates a withdrawal would drive a balance below zero.
    ErrInsufficientFunds = errors.New("insufficient_funds")
    // ErrStorage wraps any persistence adapter failure (load, store, decode).
    ErrStorage = errors.New("storage_failure")
)
