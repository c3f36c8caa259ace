package bank

import (
	"context"
	"time"
)

// MovementStore is the only mutation path for movements.
//
// Deleting a movement removes the record only. The balance effect it had
// when it was posted stays on the account.
type MovementStore struct {
	storage  MovementStorage
	accounts AccountStorage
	now      func() time.Time
}

// NewMovementStore returns a MovementStore. accounts is consulted to check
// that a new movement's account exists; now supplies default dates.
func NewMovementStore(storage MovementStorage, accounts AccountStorage, now func() time.Time) *MovementStore {
	if now == nil {
		now = time.Now
	}
	return &MovementStore{storage: storage, accounts: accounts, now: now}
}

// Validate checks in against the movement rules, including that the
// referenced account exists right now.
func (s *MovementStore) Validate(ctx context.Context, in NewMovement) error {
	return validateMovement(ctx, s.accounts, in)
}

// Create stores a new movement. A zero date is set to the current time
// before validation.
func (s *MovementStore) Create(ctx context.Context, in NewMovement) (Movement, error) {
	if in.Date == 0 {
		in.Date = s.now().UnixMilli()
	}
	if err := s.Validate(ctx, in); err != nil {
		return Movement{}, err
	}
	return s.storage.InsertMovement(ctx, Movement{
		Quantity:  *in.Quantity,
		Date:      in.Date,
		AccountID: in.AccountID,
	})
}

// Get returns the movement with the given id or ErrMovementNotFound.
func (s *MovementStore) Get(ctx context.Context, id ID) (Movement, error) {
	return s.storage.GetMovement(ctx, id)
}

// ListByAccount returns the movements of accountID in creation order.
func (s *MovementStore) ListByAccount(ctx context.Context, accountID ID) ([]Movement, error) {
	return s.storage.ListMovementsByAccount(ctx, accountID)
}

// Delete removes the movement record without touching any balance.
func (s *MovementStore) Delete(ctx context.Context, id ID) error {
	return s.storage.DeleteMovement(ctx, id)
}
