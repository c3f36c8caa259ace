/*
storage.go - Persistence interface for clients, accounts and movements

PURPOSE:
  Defines the contract between the stores and the backing collections.
  A Storage only persists and looks up; it never validates. Validation,
  referential checks and the posting protocol live in the stores and the
  ledger above it.

CONTRACT:
  - Insert* assigns the id. Ids are per entity, start at 1, increase by
    one per insert and are never reused after a delete.
  - Get* and Update* return ErrClientNotFound / ErrAccountNotFound /
    ErrMovementNotFound when the id is unknown.
  - Update* runs fn against the stored record as one atomic
    read-modify-write and returns the result.
  - List* return records in insertion order.
  - Every returned record or slice is a copy owned by the caller.

IMPLEMENTATIONS:
  - bank/store/memory.go: In-process maps (default)
  - store/sqlite/sqlite.go: SQLite, ":memory:" by default

SEE ALSO:
  - client_store.go, account_store.go, movement_store.go: Gateways
*/
package bank

import "context"

// ClientStorage persists clients.
type ClientStorage interface {
	InsertClient(ctx context.Context, c Client) (Client, error)
	GetClient(ctx context.Context, id ID) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, id ID, fn func(*Client)) (Client, error)
	DeleteClient(ctx context.Context, id ID) error
}

// AccountStorage persists accounts.
type AccountStorage interface {
	InsertAccount(ctx context.Context, a Account) (Account, error)
	GetAccount(ctx context.Context, id ID) (Account, error)
	ListAccountsByClient(ctx context.Context, clientID ID) ([]Account, error)
	UpdateAccount(ctx context.Context, id ID, fn func(*Account)) (Account, error)
	DeleteAccount(ctx context.Context, id ID) error
}

// MovementStorage persists movements. Movements have no update.
type MovementStorage interface {
	InsertMovement(ctx context.Context, m Movement) (Movement, error)
	GetMovement(ctx context.Context, id ID) (Movement, error)
	ListMovementsByAccount(ctx context.Context, accountID ID) ([]Movement, error)
	DeleteMovement(ctx context.Context, id ID) error
}

// Storage is the full persistence surface used by a Bank.
type Storage interface {
	ClientStorage
	AccountStorage
	MovementStorage
}
