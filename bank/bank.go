package bank

import (
	"context"
	"log"
	"time"
)

// Config tunes a Bank. The zero value is usable.
type Config struct {
	// Now supplies movement dates. Defaults to time.Now.
	Now func() time.Time

	// Metrics receives ledger counters. Nil disables them.
	Metrics *Metrics

	// Logger receives ledger events. Defaults to log.Default().
	Logger *log.Logger
}

// Bank wires the three stores and the ledger over one Storage.
// Construct one per process (or per test) and share it.
type Bank struct {
	Clients   *ClientStore
	Accounts  *AccountStore
	Movements *MovementStore
	Ledger    *Ledger
}

// New returns a Bank backed by storage.
func New(storage Storage, cfg Config) *Bank {
	clients := NewClientStore(storage)
	accounts := NewAccountStore(storage, storage)
	movements := NewMovementStore(storage, storage, cfg.Now)
	return &Bank{
		Clients:   clients,
		Accounts:  accounts,
		Movements: movements,
		Ledger:    NewLedger(accounts, movements, cfg.Metrics, cfg.Logger),
	}
}

// ClientAccounts returns the client with all of its accounts.
func (b *Bank) ClientAccounts(ctx context.Context, clientID ID) (ClientAccounts, error) {
	client, err := b.Clients.Get(ctx, clientID)
	if err != nil {
		return ClientAccounts{}, err
	}
	accounts, err := b.Accounts.ListByClient(ctx, clientID)
	if err != nil {
		return ClientAccounts{}, err
	}
	return ClientAccounts{Client: client, Accounts: accounts}, nil
}

// ClientStatement returns the client with one of its accounts and that
// account's movements. ErrAccountNotOwned is returned when the account
// exists but belongs to another client.
func (b *Bank) ClientStatement(ctx context.Context, clientID, accountID ID) (ClientStatement, error) {
	client, err := b.Clients.Get(ctx, clientID)
	if err != nil {
		return ClientStatement{}, err
	}
	st, err := b.Ledger.Statement(ctx, accountID)
	if err != nil {
		return ClientStatement{}, err
	}
	if st.Account.ClientID != clientID {
		return ClientStatement{}, ErrAccountNotOwned
	}
	return ClientStatement{Client: client, Statement: st}, nil
}
