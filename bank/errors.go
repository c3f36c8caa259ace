/*
errors.go - Centralized error types for the bank engine

PURPOSE:
  All error types in one place. Storage implementations return the
  not-found sentinels; the stores and the ledger add validation and
  posting errors on top.

ERROR CATEGORIES:
  1. Not found - client, account or movement lookup failed
  2. Validation - malformed or referentially invalid input
  3. Posting - the ledger could not keep a movement and its balance
     effect together

USAGE:
  if errors.Is(err, bank.ErrAccountNotFound) { ... }

  var verr *bank.ValidationError
  if errors.As(err, &verr) { ... verr.Fields ... }

SEE ALSO:
  - ledger.go: Produces BalanceApplyError and CompensationError
  - validation.go: Produces ValidationError
*/
package bank

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrClientNotFound is returned when a referenced client doesn't exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMovementNotFound is returned when a referenced movement doesn't exist.
	ErrMovementNotFound = errors.New("movement not found")

	// ErrAccountNotOwned is returned when an account is addressed through a
	// client that does not own it.
	ErrAccountNotOwned = errors.New("account does not belong to client")

	// ErrValidation is the root of every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrBalanceApply is returned when a movement was recorded but its
	// quantity could not be applied to the account balance.
	ErrBalanceApply = errors.New("balance update failed")

	// ErrCompensation is returned when rolling back a movement failed.
	// The movement may still be stored without its balance effect.
	ErrCompensation = errors.New("movement rollback failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError describes one rejected input field.
type FieldError struct {
	Field string // input field name, e.g. "email"
	Rule  string // rule that failed, e.g. "contains" or "exists"
	Param string // rule parameter, e.g. "@"
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Rule)
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// BalanceApplyError reports a failed balance update after which the
// movement was rolled back.
type BalanceApplyError struct {
	AccountID  ID
	MovementID ID
	Err        error
}

func (e *BalanceApplyError) Error() string {
	return fmt.Sprintf("apply movement %d to account %d: %v", e.MovementID, e.AccountID, e.Err)
}

// Unwrap exposes only ErrBalanceApply. The cause is usually
// ErrAccountNotFound, which must not read as a 404 here.
func (e *BalanceApplyError) Unwrap() error {
	return ErrBalanceApply
}

// CompensationError reports a failed balance update whose rollback also
// failed. Cause is the balance error, Err the rollback error.
type CompensationError struct {
	AccountID  ID
	MovementID ID
	Cause      error
	Err        error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("roll back movement %d on account %d: %v (after: %v)",
		e.MovementID, e.AccountID, e.Err, e.Cause)
}

func (e *CompensationError) Unwrap() []error {
	return []error{ErrCompensation, ErrBalanceApply}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrMovementNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrAccountNotOwned)
}
