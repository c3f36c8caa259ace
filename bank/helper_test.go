package bank_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/bank-ledger/bank"
	"github.com/warp/bank-ledger/bank/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var fixedNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func newTestBank(t *testing.T, storage bank.Storage) (*bank.Bank, *bank.Metrics) {
	t.Helper()
	if storage == nil {
		storage = store.NewMemory()
	}
	metrics := bank.NewMetrics(prometheus.NewRegistry())
	b := bank.New(storage, bank.Config{
		Now:     func() time.Time { return fixedNow },
		Metrics: metrics,
		Logger:  log.New(io.Discard, "", 0),
	})
	return b, metrics
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func validClient() bank.NewClient {
	return bank.NewClient{Name: "Ana", Email: "ana@x.com", Phone: "123456789"}
}

// seedAccount creates client 1 and one account with the given balance.
func seedAccount(t *testing.T, b *bank.Bank, balance int64) (bank.Client, bank.Account) {
	t.Helper()
	ctx := context.Background()
	client, err := b.Clients.Create(ctx, validClient())
	require.NoError(t, err)
	account, err := b.Accounts.Create(ctx, bank.NewAccount{
		AccountNumber: "001",
		Balance:       dec(balance),
		ClientID:      client.ID,
	})
	require.NoError(t, err)
	return client, account
}
