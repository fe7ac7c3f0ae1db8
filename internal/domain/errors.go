package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound: booking, wallet or transaction does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidState: the booking is not in the state the operation requires
	// (e.g. resolving a booking that is not disputed).
	ErrInvalidState = errors.New("booking is not in a valid state for this operation")
	// ErrAlreadyResolved: the booking was already released or refunded, either
	// before the call or by a concurrent administrator who won the
	// compare-and-swap on the hold transaction.
	ErrAlreadyResolved = errors.New("booking payment already resolved")
	// ErrInvalidTransition: a ledger status transition was attempted from a
	// status outside the allowed set.
	ErrInvalidTransition = errors.New("invalid transaction status transition")
	// ErrInsufficientFunds: a debit would drive a non-negative wallet field
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	// ErrMissingWallet: a required wallet is absent and cannot be
	// auto-created (customer wallets are created at signup).
	ErrMissingWallet = errors.New("wallet not found for owner")
	// ErrWalletSuspended: the wallet exists but is not active.
	ErrWalletSuspended = errors.New("wallet is suspended")
	// ErrDuplicateWallet: an owner may have exactly one active wallet.
	ErrDuplicateWallet = errors.New("owner already has an active wallet")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
