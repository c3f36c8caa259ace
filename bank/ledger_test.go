package bank_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bank-ledger/bank"
	"github.com/warp/bank-ledger/bank/store"
)

// =============================================================================
// FAULTY STORAGE
// =============================================================================

var errDiskFull = errors.New("disk full")

// balanceFailing accepts everything except balance updates.
type balanceFailing struct {
	*store.Memory
	deleteErr error
}

func (s *balanceFailing) UpdateAccount(context.Context, bank.ID, func(*bank.Account)) (bank.Account, error) {
	return bank.Account{}, errDiskFull
}

func (s *balanceFailing) DeleteMovement(ctx context.Context, id bank.ID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Memory.DeleteMovement(ctx, id)
}

// accountVanishing deletes the account right after the movement is written,
// as a concurrent DELETE /accounts/{id} would.
type accountVanishing struct {
	*store.Memory
}

func (s *accountVanishing) InsertMovement(ctx context.Context, m bank.Movement) (bank.Movement, error) {
	created, err := s.Memory.InsertMovement(ctx, m)
	if err != nil {
		return created, err
	}
	return created, s.Memory.DeleteAccount(ctx, m.AccountID)
}

// =============================================================================
// POST
// =============================================================================

func TestLedger_PostAppliesMovementAndBalance(t *testing.T) {
	b, metrics := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 1000)

	st, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(-200))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(st.Account.Balance), "got %s", st.Account.Balance)
	require.Len(t, st.Movements, 1)
	assert.Equal(t, bank.ID(1), st.Movements[0].ID)
	assert.True(t, decimal.NewFromInt(-200).Equal(st.Movements[0].Quantity))
	assert.Equal(t, fixedNow.UnixMilli(), st.Movements[0].Date)

	st, err = b.Ledger.Post(ctx, account.ID, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("800.5").Equal(st.Account.Balance))
	assert.Len(t, st.Movements, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Postings.WithLabelValues(bank.OutcomePosted)))
}

func TestLedger_PostMissingAccountWritesNothing(t *testing.T) {
	mem := store.NewMemory()
	b, metrics := newTestBank(t, mem)
	ctx := context.Background()

	_, err := b.Ledger.Post(ctx, 42, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)

	_, err = mem.GetMovement(ctx, 1)
	assert.ErrorIs(t, err, bank.ErrMovementNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Postings.WithLabelValues(bank.OutcomeAccountNotFound)))
}

func TestLedger_PostRollsBackMovementWhenBalanceFails(t *testing.T) {
	faulty := &balanceFailing{Memory: store.NewMemory()}
	b, metrics := newTestBank(t, faulty)
	ctx := context.Background()
	_, account := seedAccount(t, b, 1000)

	_, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(-200))
	require.Error(t, err)
	assert.ErrorIs(t, err, bank.ErrBalanceApply)
	assert.NotErrorIs(t, err, bank.ErrCompensation)
	assert.False(t, bank.IsNotFound(err))

	var applyErr *bank.BalanceApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, account.ID, applyErr.AccountID)
	assert.Equal(t, bank.ID(1), applyErr.MovementID)
	assert.Equal(t, errDiskFull, applyErr.Err)

	movements, err := b.Movements.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, movements, "movement must be rolled back")

	got, err := b.Accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(got.Balance))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Compensations.WithLabelValues(bank.CompensationRolledBack)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Postings.WithLabelValues(bank.OutcomeBalanceFailed)))
}

func TestLedger_PostRollsBackWhenAccountVanishes(t *testing.T) {
	b, _ := newTestBank(t, &accountVanishing{Memory: store.NewMemory()})
	ctx := context.Background()
	_, account := seedAccount(t, b, 1000)

	_, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, bank.ErrBalanceApply)
	assert.False(t, bank.IsNotFound(err), "a half-applied posting is a server failure")

	movements, err := b.Movements.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestLedger_PostReportsFailedCompensation(t *testing.T) {
	errLocked := errors.New("table locked")
	faulty := &balanceFailing{Memory: store.NewMemory(), deleteErr: errLocked}
	b, metrics := newTestBank(t, faulty)
	ctx := context.Background()
	_, account := seedAccount(t, b, 1000)

	_, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(-200))
	assert.ErrorIs(t, err, bank.ErrCompensation)
	assert.ErrorIs(t, err, bank.ErrBalanceApply)

	var compErr *bank.CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, errDiskFull, compErr.Cause)
	assert.Equal(t, errLocked, compErr.Err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Compensations.WithLabelValues(bank.CompensationFailed)))
}

func TestLedger_CompensationIgnoresCancelledRequest(t *testing.T) {
	faulty := &balanceFailing{Memory: store.NewMemory()}
	b, _ := newTestBank(t, faulty)
	_, account := seedAccount(t, b, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, bank.ErrBalanceApply)
	assert.NotErrorIs(t, err, bank.ErrCompensation)
}

func TestLedger_DeletingMovementKeepsBalance(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 1000)

	st, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(-200))
	require.NoError(t, err)

	require.NoError(t, b.Movements.Delete(ctx, st.Movements[0].ID))

	st, err = b.Ledger.Statement(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Movements)
	assert.True(t, decimal.NewFromInt(800).Equal(st.Account.Balance))
}

func TestLedger_ConcurrentPostsOnOneAccount(t *testing.T) {
	b, _ := newTestBank(t, nil)
	ctx := context.Background()
	_, account := seedAccount(t, b, 0)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Ledger.Post(ctx, account.ID, decimal.NewFromInt(1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	st, err := b.Ledger.Statement(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(n).Equal(st.Account.Balance), "got %s", st.Account.Balance)
	assert.Len(t, st.Movements, n)
}

func TestLedger_StatementMissingAccount(t *testing.T) {
	b, _ := newTestBank(t, nil)
	_, err := b.Ledger.Statement(context.Background(), 7)
	assert.ErrorIs(t, err, bank.ErrAccountNotFound)
}
