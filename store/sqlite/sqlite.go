/*
Package sqlite provides a SQLite-backed implementation of bank.Storage.

PURPOSE:
  An alternative to the in-memory backend that keeps the same contract
  through SQL. It defaults to ":memory:", so state still ends with the
  process; pass a file path to keep a database across restarts.

KEY TABLES:
  clients:   id, name, email, phone
  accounts:  id, account_number, balance (decimal text), client_id
  movements: id, quantity (decimal text), date (epoch ms), account_id

IDENTITY:
  Every table uses INTEGER PRIMARY KEY AUTOINCREMENT. SQLite never reuses
  an AUTOINCREMENT id, which matches the memory store's monotonic counter.

REFERENCES:
  client_id and account_id are plain indexed columns, not FOREIGN KEYs.
  References are checked by the bank package at creation time only, and
  deleting a parent leaves its children in place.

DECIMALS:
  Balances and quantities are stored as decimal strings and parsed with
  shopspring/decimal, so no precision is lost to REAL.

CONCURRENCY:
  Writes are serialized by a mutex and read-modify-write updates run in a
  SQL transaction. The pool is limited to one connection: every
  connection to ":memory:" would otherwise open its own empty database.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  b := bank.New(store, bank.Config{})

SEE ALSO:
  - bank/storage.go: Interface definitions
  - bank/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/bank-ledger/bank"
)

// Store implements bank.Storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ bank.Storage = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_number TEXT NOT NULL,
		balance TEXT NOT NULL,
		client_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_client
		ON accounts(client_id);

	CREATE TABLE IF NOT EXISTS movements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quantity TEXT NOT NULL,
		date INTEGER NOT NULL,
		account_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_account
		ON movements(account_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// CLIENTS
// =============================================================================

const clientColumns = `id, name, email, phone`

func (s *Store) InsertClient(ctx context.Context, c bank.Client) (bank.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (name, email, phone) VALUES (?, ?, ?)`,
		c.Name, c.Email, c.Phone)
	if err != nil {
		return bank.Client{}, fmt.Errorf("insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return bank.Client{}, fmt.Errorf("insert client: %w", err)
	}
	c.ID = bank.ID(id)
	return c, nil
}

func (s *Store) GetClient(ctx context.Context, id bank.ID) (bank.Client, error) {
	return getClient(ctx, s.db, id)
}

func getClient(ctx context.Context, q querier, id bank.ID) (bank.Client, error) {
	row := q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bank.Client{}, bank.ErrClientNotFound
	}
	if err != nil {
		return bank.Client{}, fmt.Errorf("get client %d: %w", id, err)
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]bank.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []bank.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, id bank.ID, fn func(*bank.Client)) (bank.Client, error) {
	var updated bank.Client
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getClient(ctx, tx, id)
		if err != nil {
			return err
		}
		fn(&c)
		c.ID = id
		_, err = tx.ExecContext(ctx,
			`UPDATE clients SET name = ?, email = ?, phone = ? WHERE id = ?`,
			c.Name, c.Email, c.Phone, id)
		if err != nil {
			return fmt.Errorf("update client %d: %w", id, err)
		}
		updated = c
		return nil
	})
	return updated, err
}

func (s *Store) DeleteClient(ctx context.Context, id bank.ID) error {
	return s.deleteRow(ctx, "clients", id, bank.ErrClientNotFound)
}

func scanClient(row interface{ Scan(...any) error }) (bank.Client, error) {
	var c bank.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	return c, err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

const accountColumns = `id, account_number, balance, client_id`

func (s *Store) InsertAccount(ctx context.Context, a bank.Account) (bank.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (account_number, balance, client_id) VALUES (?, ?, ?)`,
		a.AccountNumber, a.Balance.String(), a.ClientID)
	if err != nil {
		return bank.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return bank.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.ID = bank.ID(id)
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, id bank.ID) (bank.Account, error) {
	return getAccount(ctx, s.db, id)
}

func getAccount(ctx context.Context, q querier, id bank.ID) (bank.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bank.Account{}, bank.ErrAccountNotFound
	}
	if err != nil {
		return bank.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (s *Store) ListAccountsByClient(ctx context.Context, clientID bank.ID) ([]bank.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []bank.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) UpdateAccount(ctx context.Context, id bank.ID, fn func(*bank.Account)) (bank.Account, error) {
	var updated bank.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := getAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		fn(&a)
		a.ID = id
		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET account_number = ?, balance = ?, client_id = ? WHERE id = ?`,
			a.AccountNumber, a.Balance.String(), a.ClientID, id)
		if err != nil {
			return fmt.Errorf("update account %d: %w", id, err)
		}
		updated = a
		return nil
	})
	return updated, err
}

func (s *Store) DeleteAccount(ctx context.Context, id bank.ID) error {
	return s.deleteRow(ctx, "accounts", id, bank.ErrAccountNotFound)
}

func scanAccount(row interface{ Scan(...any) error }) (bank.Account, error) {
	var (
		a       bank.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.AccountNumber, &balance, &a.ClientID); err != nil {
		return bank.Account{}, err
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return bank.Account{}, fmt.Errorf("account %d balance %q: %w", a.ID, balance, err)
	}
	a.Balance = d
	return a, nil
}

// =============================================================================
// MOVEMENTS
// =============================================================================

const movementColumns = `id, quantity, date, account_id`

func (s *Store) InsertMovement(ctx context.Context, m bank.Movement) (bank.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO movements (quantity, date, account_id) VALUES (?, ?, ?)`,
		m.Quantity.String(), m.Date, m.AccountID)
	if err != nil {
		return bank.Movement{}, fmt.Errorf("insert movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return bank.Movement{}, fmt.Errorf("insert movement: %w", err)
	}
	m.ID = bank.ID(id)
	return m, nil
}

func (s *Store) GetMovement(ctx context.Context, id bank.ID) (bank.Movement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = ?`, id)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return bank.Movement{}, bank.ErrMovementNotFound
	}
	if err != nil {
		return bank.Movement{}, fmt.Errorf("get movement %d: %w", id, err)
	}
	return m, nil
}

func (s *Store) ListMovementsByAccount(ctx context.Context, accountID bank.ID) ([]bank.Movement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	movements := []bank.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("list movements: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (s *Store) DeleteMovement(ctx context.Context, id bank.ID) error {
	return s.deleteRow(ctx, "movements", id, bank.ErrMovementNotFound)
}

func scanMovement(row interface{ Scan(...any) error }) (bank.Movement, error) {
	var (
		m        bank.Movement
		quantity string
	)
	if err := row.Scan(&m.ID, &quantity, &m.Date, &m.AccountID); err != nil {
		return bank.Movement{}, err
	}
	d, err := decimal.NewFromString(quantity)
	if err != nil {
		return bank.Movement{}, fmt.Errorf("movement %d quantity %q: %w", m.ID, quantity, err)
	}
	m.Quantity = d
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// withTx runs fn in a transaction under the write mutex.
// If fn returns error, the transaction is rolled back.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// deleteRow removes one row by id. table is always a package constant.
func (s *Store) deleteRow(ctx context.Context, table string, id bank.ID, notFound error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
