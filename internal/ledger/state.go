package ledger

import (
	"fmt"
	"time"

	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/errs"
)

// Create appends a new account with id = NextID and advances the counter.
func (s State) Create(d Draft, now time.Time) (State, Account, error) {
	if d.Balance.IsNeg() {
		return s, Account{}, fmt.Errorf("initial balance %s: %w", d.Balance, errs.ErrInvalidAmount)
	}
	if err := d.Fields.Validate(Reserved...); err != nil {
		return s, Account{}, fmt.Errorf("%w: %w", errs.ErrInvalid, err)
	}
	next := s.clone()
	acc := Account{ID: next.NextID, Balance: d.Balance, CreatedAt: now, Fields: d.Fields.Clone()}
	next.Accounts = append(next.Accounts, acc)
	next.NextID++
	return next, acc.clone(), nil
}

// List returns the accounts in creation order. The id counter is not part of the view.
func (s State) List() []Account {
	return s.clone().Accounts
}

// Find returns the account with the given id.
func (s State) Find(id int64) (Account, error) {
	i := s.index(id)
	if i < 0 {
		return Account{}, fmt.Errorf("account %d: %w", id, errs.ErrNotFound)
	}
	return s.Accounts[i].clone(), nil
}

// Balance returns the balance of the account with the given id.
func (s State) Balance(id int64) (money.Amount, error) {
	acc, err := s.Find(id)
	if err != nil {
		return money.Amount{}, err
	}
	return acc.Balance, nil
}

// Delete removes exactly the account with the given id; every other account is kept in order.
func (s State) Delete(id int64) (State, error) {
	i := s.index(id)
	if i < 0 {
		return s, fmt.Errorf("account %d: %w", id, errs.ErrNotFound)
	}
	next := s.clone()
	next.Accounts = append(next.Accounts[:i], next.Accounts[i+1:]...)
	return next, nil
}

// Deposit adds amount to the account balance.
func (s State) Deposit(id int64, amount money.Amount) (State, Account, error) {
	if amount.IsNeg() {
		return s, Account{}, fmt.Errorf("deposit %s: %w", amount, errs.ErrInvalidAmount)
	}
	return s.apply(id, func(bal money.Amount) (money.Amount, error) {
		sum, err := bal.Add(amount)
		if err != nil {
			return bal, fmt.Errorf("deposit %s: %w: %w", amount, errs.ErrInvalidAmount, err)
		}
		return sum, nil
	})
}

// Withdraw subtracts amount from the account balance. A withdrawal that would leave a
// negative balance fails with ErrInsufficientFunds and changes nothing.
func (s State) Withdraw(id int64, amount money.Amount) (State, Account, error) {
	if amount.IsNeg() {
		return s, Account{}, fmt.Errorf("withdraw %s: %w", amount, errs.ErrInvalidAmount)
	}
	return s.apply(id, func(bal money.Amount) (money.Amount, error) {
		rest, err := bal.Sub(amount)
		if err != nil {
			return bal, fmt.Errorf("withdraw %s: %w: %w", amount, errs.ErrInvalidAmount, err)
		}
		if rest.IsNeg() {
			return bal, fmt.Errorf("withdraw %s from %s: %w", amount, bal, errs.ErrInsufficientFunds)
		}
		return rest, nil
	})
}

// Validate checks the ledger invariants: NextID above every id, distinct positive ids,
// no negative balance.
func (s State) Validate() error {
	if s.NextID < 1 {
		return fmt.Errorf("nextId %d: %w", s.NextID, errs.ErrInvalid)
	}
	seen := make(map[int64]struct{}, len(s.Accounts))
	for _, a := range s.Accounts {
		if a.ID < 1 || a.ID >= s.NextID {
			return fmt.Errorf("account id %d out of range (nextId %d): %w", a.ID, s.NextID, errs.ErrInvalid)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate account id %d: %w", a.ID, errs.ErrInvalid)
		}
		seen[a.ID] = struct{}{}
		if a.Balance.IsNeg() {
			return fmt.Errorf("account %d negative balance %s: %w", a.ID, a.Balance, errs.ErrInvalid)
		}
	}
	return nil
}

// apply replaces the balance of one account with the result of fn.
func (s State) apply(id int64, fn func(money.Amount) (money.Amount, error)) (State, Account, error) {
	i := s.index(id)
	if i < 0 {
		return s, Account{}, fmt.Errorf("account %d: %w", id, errs.ErrNotFound)
	}
	bal, err := fn(s.Accounts[i].Balance)
	if err != nil {
		return s, Account{}, fmt.Errorf("account %d: %w", id, err)
	}
	next := s.clone()
	next.Accounts[i].Balance = bal
	return next, next.Accounts[i].clone(), nil
}

func (s State) index(id int64) int {
	for i, a := range s.Accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := State{NextID: s.NextID, Accounts: make([]Account, len(s.Accounts))}
	for i, a := range s.Accounts {
		out.Accounts[i] = a.clone()
	}
	return out
}

func (a Account) clone() Account {
	a.Fields = a.Fields.Clone()
	return a
}
