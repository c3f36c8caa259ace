/*
ledger.go - Balance-mutation protocol

PURPOSE:
  Posts a signed quantity to an account as one logical unit: a movement
  record plus the matching balance change. Callers never observe one
  without the other.

PROTOCOL (Post):
  1. Look up the account.           missing  -> ErrAccountNotFound, nothing written
  2. Create the movement (date=now). invalid -> *ValidationError, nothing written
  3. Add the quantity to the balance.
       ok     -> done, return the refreshed statement
       failed -> delete the movement (compensation) -> *BalanceApplyError
                 delete failed too                  -> *CompensationError

  START -> AccountLookup -> MovementCreate -> BalanceApply -> SUCCESS
                 |                |                 |
               FAIL             FAIL         CompensateDelete -> FAIL

CONCURRENCY:
  The HTTP server calls in from many goroutines. Post holds a per-account
  lock for the whole protocol, so two postings on one account never
  interleave. Deleting an account is not serialized with postings; the
  compensation path covers an account that disappears mid-protocol.

ROLLBACK:
  The compensating delete runs on a context that ignores cancellation of
  the request. A movement that is already gone counts as rolled back.

DELETION:
  Deleting a movement later (MovementStore.Delete) removes the record
  only. It is not a reversal and leaves the balance unchanged.

SEE ALSO:
  - account_store.go: UpdateBalance primitive
  - movement_store.go: Movement creation and date default
*/
package bank

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger coordinates the account and movement stores.
type Ledger struct {
	accounts  *AccountStore
	movements *MovementStore
	metrics   *Metrics
	logger    *log.Logger
	locks     accountLocks
}

// NewLedger returns a Ledger over the given stores. metrics may be nil.
func NewLedger(accounts *AccountStore, movements *MovementStore, metrics *Metrics, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{
		accounts:  accounts,
		movements: movements,
		metrics:   metrics,
		logger:    logger,
	}
}

// Post records a movement of quantity on the account and applies it to the
// balance. On success it returns the account with all its movements.
func (l *Ledger) Post(ctx context.Context, accountID ID, quantity decimal.Decimal) (Statement, error) {
	unlock := l.locks.lock(accountID)
	defer unlock()

	if _, err := l.accounts.Get(ctx, accountID); err != nil {
		l.metrics.posting(outcomeOf(err))
		return Statement{}, err
	}

	movement, err := l.movements.Create(ctx, NewMovement{
		Quantity:  &quantity,
		AccountID: accountID,
	})
	if err != nil {
		l.metrics.posting(outcomeOf(err))
		return Statement{}, err
	}

	if _, err := l.accounts.UpdateBalance(ctx, accountID, quantity); err != nil {
		l.metrics.posting(OutcomeBalanceFailed)
		return Statement{}, l.compensate(ctx, accountID, movement.ID, err)
	}
	l.metrics.posting(OutcomePosted)

	st, err := l.Statement(ctx, accountID)
	if err != nil {
		return Statement{}, fmt.Errorf("read account %d after posting: %w", accountID, err)
	}
	return st, nil
}

// compensate deletes a movement whose balance effect could not be applied.
func (l *Ledger) compensate(ctx context.Context, accountID, movementID ID, cause error) error {
	err := l.movements.Delete(context.WithoutCancel(ctx), movementID)
	if err == nil || errors.Is(err, ErrMovementNotFound) {
		l.metrics.compensation(CompensationRolledBack)
		l.logger.Printf("[Ledger] Rolled back movement %d on account %d: %v", movementID, accountID, cause)
		return &BalanceApplyError{AccountID: accountID, MovementID: movementID, Err: cause}
	}

	l.metrics.compensation(CompensationFailed)
	l.logger.Printf("[Ledger] ERROR rollback of movement %d on account %d failed: %v (balance error: %v)",
		movementID, accountID, err, cause)
	return &CompensationError{AccountID: accountID, MovementID: movementID, Cause: cause, Err: err}
}

// Statement returns the account with its movements, oldest first.
func (l *Ledger) Statement(ctx context.Context, accountID ID) (Statement, error) {
	account, err := l.accounts.Get(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}
	movements, err := l.movements.ListByAccount(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Account: account, Movements: movements}, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return OutcomeAccountNotFound
	case errors.Is(err, ErrValidation):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
