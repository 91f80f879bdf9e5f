package account_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/govalues/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinoosan/bankledger/internal/errs"
	"github.com/tinoosan/bankledger/internal/ledger"
	"github.com/tinoosan/bankledger/internal/meta"
	"github.com/tinoosan/bankledger/internal/service/account"
	"github.com/tinoosan/bankledger/internal/storage/memory"
)

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// slowStore widens the window between load and store so unserialized
// read-modify-write cycles would lose updates.
type slowStore struct {
	inner *memory.Store
	delay time.Duration
}

func (s slowStore) Load(ctx context.Context) (ledger.State, error) {
	st, err := s.inner.Load(ctx)
	time.Sleep(s.delay)
	return st, err
}

func (s slowStore) Store(ctx context.Context, st ledger.State) error {
	return s.inner.Store(ctx, st)
}

func setup(t *testing.T) (account.Service, *memory.Store) {
	t.Helper()
	store := memory.New("BRL")
	svc, err := account.New(store, account.Config{Currency: "BRL", Logger: testLogger(), Clock: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return svc, store
}

func amount(t *testing.T, svc account.Service, s string) money.Amount {
	t.Helper()
	a, err := svc.ParseAmount(s)
	require.NoError(t, err)
	return a
}

func requireBalance(t *testing.T, svc account.Service, id int64, want string) {
	t.Helper()
	bal, err := svc.Balance(context.Background(), id)
	require.NoError(t, err)
	w := amount(t, svc, want)
	require.Zero(t, w.Decimal().Cmp(bal.Decimal()), "want %s, got %s", w, bal)
}

func TestNew_RejectsUnknownCurrency(t *testing.T) {
	_, err := account.New(memory.New("BRL"), account.Config{Currency: "ZZZ"})
	require.Error(t, err)
}

func TestService_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	acc, err := svc.Create(ctx, ledger.Draft{Balance: amount(t, svc, "100"), Fields: meta.New(map[string]string{"name": "Ana"})})
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ID)
	assert.Equal(t, fixedNow, acc.CreatedAt)
	assert.Equal(t, "Ana", acc.Fields["name"])

	_, err = svc.Deposit(ctx, 1, amount(t, svc, "50"))
	require.NoError(t, err)
	requireBalance(t, svc, 1, "150")

	_, err = svc.Withdraw(ctx, 1, amount(t, svc, "200"))
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)
	requireBalance(t, svc, 1, "150")

	updated, err := svc.Withdraw(ctx, 1, amount(t, svc, "150"))
	require.NoError(t, err)
	assert.True(t, updated.Balance.IsZero())

	require.NoError(t, svc.Delete(ctx, 1))
	_, err = svc.Balance(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNotFound)

	second, err := svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestService_ListPreservesOrderAndDeleteKeepsOthers(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	for _, b := range []string{"1", "2", "3", "4"} {
		_, err := svc.Create(ctx, ledger.Draft{Balance: amount(t, svc, b)})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, 2))
	require.ErrorIs(t, svc.Delete(ctx, 2), errs.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)
	requireBalance(t, svc, 3, "3")
	requireBalance(t, svc, 4, "4")
}

func TestService_InvalidAmounts(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t)
	_, err := svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
	require.NoError(t, err)
	stores := store.Stores()

	_, err = svc.Deposit(ctx, 1, amount(t, svc, "-1"))
	require.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = svc.Withdraw(ctx, 1, amount(t, svc, "-1"))
	require.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = svc.Create(ctx, ledger.Draft{Balance: amount(t, svc, "-5")})
	require.ErrorIs(t, err, errs.ErrInvalidAmount)

	usd, err := money.ParseAmount("USD", "5")
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, 1, usd)
	require.ErrorIs(t, err, errs.ErrInvalidAmount)
	// an unset draft balance is not in the ledger currency
	_, err = svc.Create(ctx, ledger.Draft{})
	require.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = svc.ParseAmount("abc")
	require.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = svc.Deposit(ctx, 42, amount(t, svc, "1"))
	require.ErrorIs(t, err, errs.ErrNotFound)

	assert.Equal(t, stores, store.Stores(), "rejected operations never store")
}

func TestService_StoreFailureKeepsDurableState(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t)
	_, err := svc.Create(ctx, ledger.Draft{Balance: amount(t, svc, "10")})
	require.NoError(t, err)
	before := store.Document()

	store.FailStores(errors.New("disk full"))
	_, err = svc.Deposit(ctx, 1, amount(t, svc, "5"))
	require.ErrorIs(t, err, errs.ErrStorage)
	_, err = svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
	require.ErrorIs(t, err, errs.ErrStorage)
	assert.Equal(t, before, store.Document())

	store.FailStores(nil)
	requireBalance(t, svc, 1, "10")
	acc, err := svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.ID, "failed create did not consume an id")
}

func TestService_LoadFailure(t *testing.T) {
	svc, store := setup(t)
	store.FailLoads(errors.New("unreadable"))
	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, errs.ErrStorage)
}

func TestService_ConcurrentDepositsNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	store := memory.New("BRL")
	svc, err := account.New(slowStore{inner: store, delay: 200 * time.Microsecond}, account.Config{Currency: "BRL", Logger: testLogger()})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
	require.NoError(t, err)

	const n = 100
	one := amount(t, svc, "1")
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(ctx, 1, one)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	requireBalance(t, svc, 1, "100")
}

func TestService_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc, err := svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
			assert.NoError(t, err)
			ids <- acc.ID
		}()
	}
	wg.Wait()
	close(ids)
	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestService_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	store := memory.New("BRL")
	svc, err := account.New(slowStore{inner: store, delay: 100 * time.Microsecond}, account.Config{Currency: "BRL", Logger: testLogger()})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ledger.Draft{Balance: amount(t, svc, "10")})
	require.NoError(t, err)

	one := amount(t, svc, "1")
	var mu sync.Mutex
	ok, insufficient := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, 1, one)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, 20, insufficient)
	requireBalance(t, svc, 1, "0")
}

func TestService_LogsOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc, err := account.New(memory.New("BRL"), account.Config{Currency: "BRL", Logger: logger})
	require.NoError(t, err)
	_, err = svc.Balance(context.Background(), 9)
	require.ErrorIs(t, err, errs.ErrNotFound)
	out := buf.String()
	assert.Contains(t, out, `"op":"balance"`)
	assert.Contains(t, out, `"result":"not_found"`)
	assert.Contains(t, out, `"op_id"`)
	assert.Contains(t, out, `"account_id":9`)
}

func TestService_CanceledBeforeEntering(t *testing.T) {
	svc, store := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Create(ctx, ledger.Draft{Balance: svc.Zero()})
	// the slot may still be free, in which case the op runs; either way no partial effect
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, store.Document())
	}
}
