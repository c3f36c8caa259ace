// Package store provides Storage implementations.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/warp/bank-ledger/bank"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (default backend, tests)
// =============================================================================

// Memory keeps every collection in process memory. Nothing survives a
// restart. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	clients   table[bank.Client]
	accounts  table[bank.Account]
	movements table[bank.Movement]
}

var _ bank.Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		clients:   table[bank.Client]{key: func(c *bank.Client) *bank.ID { return &c.ID }},
		accounts:  table[bank.Account]{key: func(a *bank.Account) *bank.ID { return &a.ID }},
		movements: table[bank.Movement]{key: func(m *bank.Movement) *bank.ID { return &m.ID }},
	}
}

// =============================================================================
// CLIENTS
// =============================================================================

func (m *Memory) InsertClient(_ context.Context, c bank.Client) (bank.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients.insert(c), nil
}

func (m *Memory) GetClient(_ context.Context, id bank.ID) (bank.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients.get(id)
	if !ok {
		return bank.Client{}, bank.ErrClientNotFound
	}
	return c, nil
}

func (m *Memory) ListClients(_ context.Context) ([]bank.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients.all(), nil
}

func (m *Memory) UpdateClient(_ context.Context, id bank.ID, fn func(*bank.Client)) (bank.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients.update(id, fn)
	if !ok {
		return bank.Client{}, bank.ErrClientNotFound
	}
	return c, nil
}

func (m *Memory) DeleteClient(_ context.Context, id bank.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.clients.delete(id) {
		return bank.ErrClientNotFound
	}
	return nil
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (m *Memory) InsertAccount(_ context.Context, a bank.Account) (bank.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts.insert(a), nil
}

func (m *Memory) GetAccount(_ context.Context, id bank.ID) (bank.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts.get(id)
	if !ok {
		return bank.Account{}, bank.ErrAccountNotFound
	}
	return a, nil
}

func (m *Memory) ListAccountsByClient(_ context.Context, clientID bank.ID) ([]bank.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts.filter(func(a *bank.Account) bool { return a.ClientID == clientID }), nil
}

func (m *Memory) UpdateAccount(_ context.Context, id bank.ID, fn func(*bank.Account)) (bank.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts.update(id, fn)
	if !ok {
		return bank.Account{}, bank.ErrAccountNotFound
	}
	return a, nil
}

func (m *Memory) DeleteAccount(_ context.Context, id bank.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.accounts.delete(id) {
		return bank.ErrAccountNotFound
	}
	return nil
}

// =============================================================================
// MOVEMENTS
// =============================================================================

func (m *Memory) InsertMovement(_ context.Context, mv bank.Movement) (bank.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.movements.insert(mv), nil
}

func (m *Memory) GetMovement(_ context.Context, id bank.ID) (bank.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mv, ok := m.movements.get(id)
	if !ok {
		return bank.Movement{}, bank.ErrMovementNotFound
	}
	return mv, nil
}

func (m *Memory) ListMovementsByAccount(_ context.Context, accountID bank.ID) ([]bank.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.movements.filter(func(mv *bank.Movement) bool { return mv.AccountID == accountID }), nil
}

func (m *Memory) DeleteMovement(_ context.Context, id bank.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.movements.delete(id) {
		return bank.ErrMovementNotFound
	}
	return nil
}

// =============================================================================
// TABLE - ordered rows with a monotonic id counter
// =============================================================================

// table keeps rows sorted by id. Ids come from lastID, which only grows,
// so appending preserves the order and deleted ids are never handed out
// again. Callers hold Memory.mu.
type table[T any] struct {
	rows   []T
	lastID bank.ID
	key    func(*T) *bank.ID
}

func (t *table[T]) insert(row T) T {
	t.lastID++
	*t.key(&row) = t.lastID
	t.rows = append(t.rows, row)
	return row
}

// index finds id by binary search.
func (t *table[T]) index(id bank.ID) (int, bool) {
	i := sort.Search(len(t.rows), func(i int) bool {
		return *t.key(&t.rows[i]) >= id
	})
	return i, i < len(t.rows) && *t.key(&t.rows[i]) == id
}

func (t *table[T]) get(id bank.ID) (T, bool) {
	i, ok := t.index(id)
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i], true
}

// update applies fn to a copy and stores it back. The id cannot change.
func (t *table[T]) update(id bank.ID, fn func(*T)) (T, bool) {
	i, ok := t.index(id)
	if !ok {
		var zero T
		return zero, false
	}
	row := t.rows[i]
	fn(&row)
	*t.key(&row) = id
	t.rows[i] = row
	return row, true
}

func (t *table[T]) delete(id bank.ID) bool {
	i, ok := t.index(id)
	if !ok {
		return false
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return true
}

func (t *table[T]) all() []T {
	return append([]T{}, t.rows...)
}

func (t *table[T]) filter(keep func(*T) bool) []T {
	result := []T{}
	for i := range t.rows {
		if keep(&t.rows[i]) {
			result = append(result, t.rows[i])
		}
	}
	return result
}
