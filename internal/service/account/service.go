// Package account implements the ledger service: every operation enters the
// serializer, loads the whole ledger through the Persister, applies one ledger
// mutation and, for writes, stores the new ledger before releasing access.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/errs"
	"github.com/tinoosan/bankledger/internal/ledger"
	"github.com/tinoosan/bankledger/internal/serial"
)

// Persister loads and stores the ledger as one unit.
type Persister interface {
	Load(ctx context.Context) (ledger.State, error)
	Store(ctx context.Context, s ledger.State) error
}

type Service interface {
	Create(ctx context.Context, d ledger.Draft) (ledger.Account, error)
	List(ctx context.Context) ([]ledger.Account, error)
	Balance(ctx context.Context, id int64) (money.Amount, error)
	Delete(ctx context.Context, id int64) error
	Deposit(ctx context.Context, id int64, amount money.Amount) (ledger.Account, error)
	Withdraw(ctx context.Context, id int64, amount money.Amount) (ledger.Account, error)
	// ParseAmount parses a decimal string in the ledger currency.
	ParseAmount(s string) (money.Amount, error)
	// Zero returns a zero amount in the ledger currency.
	Zero() money.Amount
}

// Config carries everything the service needs; nothing is read from globals.
type Config struct {
	// Currency is the ISO 4217 code all balances are held in.
	Currency string
	Logger   *slog.Logger
	// Clock stamps createdAt. Defaults to time.Now in UTC.
	Clock func() time.Time
}

type service struct {
	store    Persister
	serial   *serial.Serializer
	currency string
	zero     money.Amount
	log      *slog.Logger
	now      func() time.Time
}

// New constructs the service over store. It fails if the currency is unknown.
func New(store Persister, cfg Config) (Service, error) {
	zero, err := ledger.ZeroAmount(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("ledger currency %q: %w", cfg.Currency, err)
	}
	s := &service{
		store:    store,
		serial:   serial.New("accounts"),
		currency: zero.Curr().Code(),
		zero:     zero,
		log:      cfg.Logger,
		now:      cfg.Clock,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s, nil
}

func (s *service) Zero() money.Amount { return s.zero }

func (s *service) ParseAmount(v string) (money.Amount, error) {
	a, err := money.ParseAmount(s.currency, v)
	if err != nil {
		return money.Amount{}, fmt.Errorf("%w: %w", errs.ErrInvalidAmount, err)
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, d ledger.Draft) (ledger.Account, error) {
	var created ledger.Account
	err := s.write(ctx, "create", 0, func(st ledger.State) (ledger.State, error) {
		if err := s.checkAmount(d.Balance); err != nil {
			return st, err
		}
		next, acc, err := st.Create(d, s.now())
		created = acc
		return next, err
	})
	return created, err
}

func (s *service) List(ctx context.Context) ([]ledger.Account, error) {
	var out []ledger.Account
	err := s.read(ctx, "list", 0, func(st ledger.State) error {
		out = st.List()
		return nil
	})
	return out, err
}

func (s *service) Balance(ctx context.Context, id int64) (money.Amount, error) {
	var bal money.Amount
	err := s.read(ctx, "balance", id, func(st ledger.State) error {
		var err error
		bal, err = st.Balance(id)
		return err
	})
	return bal, err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.write(ctx, "delete", id, func(st ledger.State) (ledger.State, error) {
		return st.Delete(id)
	})
}

func (s *service) Deposit(ctx context.Context, id int64, amount money.Amount) (ledger.Account, error) {
	var updated ledger.Account
	err := s.write(ctx, "deposit", id, func(st ledger.State) (ledger.State, error) {
		if err := s.checkAmount(amount); err != nil {
			return st, err
		}
		next, acc, err := st.Deposit(id, amount)
		updated = acc
		return next, err
	})
	return updated, err
}

func (s *service) Withdraw(ctx context.Context, id int64, amount money.Amount) (ledger.Account, error) {
	var updated ledger.Account
	err := s.write(ctx, "withdraw", id, func(st ledger.State) (ledger.State, error) {
		if err := s.checkAmount(amount); err != nil {
			return st, err
		}
		next, acc, err := st.Withdraw(id, amount)
		updated = acc
		return next, err
	})
	return updated, err
}

// checkAmount rejects amounts outside the ledger currency and negative amounts.
func (s *service) checkAmount(a money.Amount) error {
	if code := a.Curr().Code(); code != s.currency {
		return fmt.Errorf("amount in %s, ledger is %s: %w", code, s.currency, errs.ErrInvalidAmount)
	}
	if a.IsNeg() {
		return fmt.Errorf("amount %s: %w", a, errs.ErrInvalidAmount)
	}
	return nil
}

func (s *service) read(ctx context.Context, op string, id int64, fn func(ledger.State) error) error {
	return s.run(ctx, op, id, func(ctx context.Context) error {
		st, err := s.load(ctx)
		if err != nil {
			return err
		}
		return fn(st)
	})
}

// write loads, applies fn and stores the result. When fn or Store fails nothing
// from this call reaches the durable ledger.
func (s *service) write(ctx context.Context, op string, id int64, fn func(ledger.State) (ledger.State, error)) error {
	return s.run(ctx, op, id, func(ctx context.Context) error {
		st, err := s.load(ctx)
		if err != nil {
			return err
		}
		next, err := fn(st)
		if err != nil {
			return err
		}
		if err := s.store.Store(ctx, next); err != nil {
			return storageErr("store", err)
		}
		return nil
	})
}

func (s *service) load(ctx context.Context) (ledger.State, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return ledger.State{}, storageErr("load", err)
	}
	return st, nil
}

func (s *service) run(ctx context.Context, op string, id int64, fn func(context.Context) error) error {
	opID := uuid.NewString()
	start := time.Now()
	err := s.serial.Do(ctx, fn)
	result := resultOf(err)
	operationsTotal.WithLabelValues(op, result).Inc()

	attrs := []any{"op_id", opID, "op", op, "result", result, "duration", time.Since(start).String()}
	if id != 0 {
		attrs = append(attrs, "account_id", id)
	}
	switch result {
	case resultOK:
		s.log.InfoContext(ctx, "ledger op", attrs...)
	case resultStorage, resultError:
		s.log.ErrorContext(ctx, "ledger op failed", append(attrs, "err", err)...)
	default:
		s.log.WarnContext(ctx, "ledger op rejected", append(attrs, "err", err)...)
	}
	return err
}

func storageErr(stage string, err error) error {
	if errors.Is(err, errs.ErrStorage) {
		return fmt.Errorf("%s ledger: %w", stage, err)
	}
	return fmt.Errorf("%s ledger: %w: %w", stage, errs.ErrStorage, err)
}
