// Package storagetest holds the contract tests every bank.Storage must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bank-ledger/bank"
)

// Run executes the contract suite. newStorage must return an empty storage
// for every call.
func Run(t *testing.T, newStorage func(t *testing.T) bank.Storage) {
	t.Run("SequentialIDs", func(t *testing.T) { testSequentialIDs(t, newStorage(t)) })
	t.Run("IDsNotReusedAfterDelete", func(t *testing.T) { testIDsNotReused(t, newStorage(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStorage(t)) })
	t.Run("UpdateIsReadModifyWrite", func(t *testing.T) { testUpdate(t, newStorage(t)) })
	t.Run("ListsFilterAndKeepOrder", func(t *testing.T) { testLists(t, newStorage(t)) })
	t.Run("ReturnedValuesAreCopies", func(t *testing.T) { testCopies(t, newStorage(t)) })
	t.Run("DecimalsRoundTrip", func(t *testing.T) { testDecimals(t, newStorage(t)) })
}

func testSequentialIDs(t *testing.T, s bank.Storage) {
	ctx := context.Background()
	for want := bank.ID(1); want <= 5; want++ {
		c, err := s.InsertClient(ctx, bank.Client{Name: "c", Email: "c@x.com", Phone: "123456789"})
		require.NoError(t, err)
		assert.Equal(t, want, c.ID)
	}
	for want := bank.ID(1); want <= 3; want++ {
		a, err := s.InsertAccount(ctx, bank.Account{AccountNumber: "001", ClientID: 1})
		require.NoError(t, err)
		assert.Equal(t, want, a.ID)
	}
	m, err := s.InsertMovement(ctx, bank.Movement{Quantity: decimal.NewFromInt(1), Date: 1, AccountID: 1})
	require.NoError(t, err)
	assert.Equal(t, bank.ID(1), m.ID)
}

func testIDsNotReused(t *testing.T, s bank.Storage) {
	ctx := context.Background()
	first, err := s.InsertClient(ctx, bank.Client{Name: "a"})
	require.NoError(t, err)
	second, err := s.InsertClient(ctx, bank.Client{Name: "b"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteClient(ctx, first.ID))

	third, err := s.InsertClient(ctx, bank.Client{Name: "c"})
	require.NoError(t, err)
	assert.NotEqual(t, second.ID, third.ID, "deleted slot must not hand out a live id")
	assert.Equal(t, bank.ID(3), third.ID)

	got, err := s.GetClient(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
}

func testNotFound(t *testing.T, s bank.Storage) {
	ctx := context.Background()

	_, err := s.GetClient(ctx, 42)
	assert.ErrorIs(t, err, bank.ErrClientNotFound)
	_, err = s.UpdateClient(ctx, 42, func(*bank.Client) {})
	assert.ErrorIs(t, err, bank.ErrClientNotFound)
	assert.ErrorIs(t, s.DeleteClient(ctx, 42), bank.ErrClientNotFound)

	_, err = s.GetAccount(ctx, 42)
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)
	_, err = s.UpdateAccount(ctx, 42, func(*bank.Account) {})
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)
	assert.ErrorIs(t, s.DeleteAccount(ctx, 42), bank.ErrAccountNotFound)

	_, err = s.GetMovement(ctx, 42)
	assert.ErrorIs(t, err, bank.ErrMovementNotFound)
	assert.ErrorIs(t, s.DeleteMovement(ctx, 42), bank.ErrMovementNotFound)
}

func testUpdate(t *testing.T, s bank.Storage) {
	ctx := context.Background()
	a, err := s.InsertAccount(ctx, bank.Account{AccountNumber: "001", Balance: decimal.NewFromInt(10), ClientID: 1})
	require.NoError(t, err)

	updated, err := s.UpdateAccount(ctx, a.ID, func(acc *bank.Account) {
		acc.Balance = acc.Balance.Add(decimal.NewFromInt(5))
		acc.ID = 99
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.ID, "update must not change the id")
	assert.True(t, decimal.NewFromInt(15).Equal(updated.Balance))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(got.Balance))
	assert.Equal(t, "001", got.AccountNumber)
}

func testLists(t *testing.T, s bank.Storage) {
	ctx := context.Background()

	clients, err := s.ListClients(ctx)
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)

	for _, owner := range []bank.ID{1, 2, 1} {
		_, err := s.InsertAccount(ctx, bank.Account{AccountNumber: "n", ClientID: owner})
		require.NoError(t, err)
	}
	accounts, err := s.ListAccountsByClient(ctx, 1)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, bank.ID(1), accounts[0].ID)
	assert.Equal(t, bank.ID(3), accounts[1].ID)

	for i, acc := range []bank.ID{7, 8, 7} {
		_, err := s.InsertMovement(ctx, bank.Movement{Quantity: decimal.NewFromInt(int64(i)), Date: 1, AccountID: acc})
		require.NoError(t, err)
	}
	movements, err := s.ListMovementsByAccount(ctx, 7)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(0)))
	assert.True(t, movements[1].Quantity.Equal(decimal.NewFromInt(2)))

	none, err := s.ListMovementsByAccount(ctx, 9)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testCopies(t *testing.T, s bank.Storage) {
	ctx := context.Background()
	c, err := s.InsertClient(ctx, bank.Client{Name: "Ana"})
	require.NoError(t, err)

	c.Name = "changed"
	list, err := s.ListClients(ctx)
	require.NoError(t, err)
	list[0].Name = "changed too"

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func testDecimals(t *testing.T, s bank.Storage) {
	ctx := context.Background()
	balance := decimal.RequireFromString("1234.56")
	a, err := s.InsertAccount(ctx, bank.Account{AccountNumber: "001", Balance: balance, ClientID: 1})
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(got.Balance), "got %s", got.Balance)

	quantity := decimal.RequireFromString("-0.1")
	m, err := s.InsertMovement(ctx, bank.Movement{Quantity: quantity, Date: 1700000000000, AccountID: a.ID})
	require.NoError(t, err)
	gotM, err := s.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, quantity.Equal(gotM.Quantity))
	assert.Equal(t, int64(1700000000000), gotM.Date)
}
