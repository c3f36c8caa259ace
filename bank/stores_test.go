package bank_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bank-ledger/bank"
)

func TestClientStore_CreateAssignsSequentialIDs(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()

	for want := bank.ID(1); want <= 3; want++ {
		c, err := b.Clients.Create(ctx, validClient())
		require.NoError(t, err)
		assert.Equal(t, want, c.ID)
	}

	all, err := b.Clients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClientStore_CreateRejectsInvalidWithoutWriting(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()

	_, err := b.Clients.Create(ctx, bank.NewClient{Name: "Ana"})
	assert.ErrorIs(t, err, bank.ErrValidation)

	all, err := b.Clients.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClientStore_UpdateMergesWithoutRevalidating(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	c, err := b.Clients.Create(ctx, validClient())
	require.NoError(t, err)

	// An email without "@" would fail creation; updates keep it.
	email := "no-at-sign"
	updated, err := b.Clients.Update(ctx, c.ID, bank.ClientPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "no-at-sign", updated.Email)
	assert.Equal(t, "123456789", updated.Phone)

	_, err = b.Clients.Update(ctx, 99, bank.ClientPatch{Email: &email})
	assert.ErrorIs(t, err, bank.ErrClientNotFound)
}

func TestClientStore_DeleteLeavesAccounts(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	client, account := seedAccount(t, b, 10)

	require.NoError(t, b.Clients.Delete(ctx, client.ID))
	assert.ErrorIs(t, b.Clients.Delete(ctx, client.ID), bank.ErrClientNotFound)

	_, err := b.Clients.Get(ctx, client.ID)
	assert.ErrorIs(t, err, bank.ErrClientNotFound)

	got, err := b.Accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ClientID)
}

func TestAccountStore_ListByClient(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	ana, err := b.Clients.Create(ctx, validClient())
	require.NoError(t, err)
	bob, err := b.Clients.Create(ctx, validClient())
	require.NoError(t, err)

	for _, owner := range []bank.ID{ana.ID, bob.ID, ana.ID} {
		_, err := b.Accounts.Create(ctx, bank.NewAccount{AccountNumber: "n", Balance: dec(0), ClientID: owner})
		require.NoError(t, err)
	}

	accounts, err := b.Accounts.ListByClient(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, bank.ID(1), accounts[0].ID)
	assert.Equal(t, bank.ID(3), accounts[1].ID)

	none, err := b.Accounts.ListByClient(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAccountStore_UpdateKeepsOwner(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	client, account := seedAccount(t, b, 10)

	number := "002"
	updated, err := b.Accounts.Update(ctx, account.ID, bank.AccountPatch{AccountNumber: &number})
	require.NoError(t, err)
	assert.Equal(t, "002", updated.AccountNumber)
	assert.Equal(t, client.ID, updated.ClientID)
	assert.True(t, decimal.NewFromInt(10).Equal(updated.Balance))
}

func TestAccountStore_UpdateBalance(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 100)

	got, err := b.Accounts.UpdateBalance(ctx, account.ID, decimal.NewFromInt(-150))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-50).Equal(got.Balance), "no overdraft check, got %s", got.Balance)

	_, err = b.Accounts.UpdateBalance(ctx, 99, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)
}

func TestMovementStore_CreateDefaultsDate(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 0)

	m, err := b.Movements.Create(ctx, bank.NewMovement{Quantity: dec(5), AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), m.Date)
	assert.True(t, fixedNow.Equal(m.Time()))

	explicit, err := b.Movements.Create(ctx, bank.NewMovement{Quantity: dec(5), Date: 1000, AccountID: account.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), explicit.Date)
}

func TestMovementStore_CreateDoesNotTouchBalance(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 100)

	_, err := b.Movements.Create(ctx, bank.NewMovement{Quantity: dec(5), AccountID: account.ID})
	require.NoError(t, err)

	got, err := b.Accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Balance))
}

func TestBank_ClientAccounts(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	client, account := seedAccount(t, b, 10)

	ca, err := b.ClientAccounts(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client, ca.Client)
	require.Len(t, ca.Accounts, 1)
	assert.Equal(t, account.ID, ca.Accounts[0].ID)

	_, err = b.ClientAccounts(ctx, 99)
	assert.ErrorIs(t, err, bank.ErrClientNotFound)
}

func TestBank_ClientStatement(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	client, account := seedAccount(t, b, 10)
	other, err := b.Clients.Create(ctx, validClient())
	require.NoError(t, err)

	_, err = b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	cs, err := b.ClientStatement(ctx, client.ID, account.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, cs.Client.ID)
	assert.Equal(t, account.ID, cs.Statement.Account.ID)
	assert.Len(t, cs.Statement.Movements, 1)

	_, err = b.ClientStatement(ctx, other.ID, account.ID)
	assert.ErrorIs(t, err, bank.ErrAccountNotOwned)

	_, err = b.ClientStatement(ctx, client.ID, 99)
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)

	_, err = b.ClientStatement(ctx, 99, account.ID)
	assert.ErrorIs(t, err, bank.ErrClientNotFound)
}
