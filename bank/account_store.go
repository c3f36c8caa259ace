package bank

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountStore is the only mutation path for accounts.
type AccountStore struct {
	storage AccountStorage
	clients ClientStorage
}

// NewAccountStore returns an AccountStore. clients is consulted to check
// that a new account's owner exists.
func NewAccountStore(storage AccountStorage, clients ClientStorage) *AccountStore {
	return &AccountStore{storage: storage, clients: clients}
}

// Validate checks in against the account rules, including that the
// referenced client exists right now.
func (s *AccountStore) Validate(ctx context.Context, in NewAccount) error {
	return validateAccount(ctx, s.clients, in)
}

// ListByClient returns the accounts owned by clientID in creation order.
func (s *AccountStore) ListByClient(ctx context.Context, clientID ID) ([]Account, error) {
	return s.storage.ListAccountsByClient(ctx, clientID)
}

// Get returns the account with the given id or ErrAccountNotFound.
func (s *AccountStore) Get(ctx context.Context, id ID) (Account, error) {
	return s.storage.GetAccount(ctx, id)
}

// Create validates in and stores a new account.
func (s *AccountStore) Create(ctx context.Context, in NewAccount) (Account, error) {
	if err := s.Validate(ctx, in); err != nil {
		return Account{}, err
	}
	return s.storage.InsertAccount(ctx, Account{
		AccountNumber: in.AccountNumber,
		Balance:       *in.Balance,
		ClientID:      in.ClientID,
	})
}

// Update merges the non-nil fields of patch into the stored account.
// The result is not re-validated.
func (s *AccountStore) Update(ctx context.Context, id ID, patch AccountPatch) (Account, error) {
	return s.storage.UpdateAccount(ctx, id, patch.apply)
}

// UpdateBalance adds delta to the account balance and returns the updated
// account. Any delta is accepted; there is no overdraft check.
func (s *AccountStore) UpdateBalance(ctx context.Context, id ID, delta decimal.Decimal) (Account, error) {
	return s.storage.UpdateAccount(ctx, id, func(a *Account) {
		a.Balance = a.Balance.Add(delta)
	})
}

// Delete removes the account. Its movements are left in place.
func (s *AccountStore) Delete(ctx context.Context, id ID) error {
	return s.storage.DeleteAccount(ctx, id)
}
