// Package ledger holds the account ledger: the set of accounts plus the id counter,
// and the pure operations that move it from one valid state to the next.
package ledger

import (
	"time"

	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/meta"
)

// Reserved keys cannot be used as caller fields because the document stores
// the account's own attributes under them.
var Reserved = []string{"id", "balance", "createdAt", "timestamp"}

// Account is an identified balance record.
type Account struct {
	// ID is assigned from State.NextID at creation and never changes.
	ID        int64
	Balance   money.Amount
	CreatedAt time.Time
	// Fields carries caller-supplied attributes such as the owner's name.
	Fields meta.Metadata
}

// Draft is the caller input for a new account.
type Draft struct {
	Balance money.Amount
	Fields  meta.Metadata
}

// State is the whole ledger as loaded from and stored to a persistence adapter.
// Operations never modify the receiver; they return the next State.
type State struct {
	NextID   int64
	Accounts []Account
}

// NewState returns the ledger used when nothing has been persisted yet.
func NewState() State {
	return State{NextID: 1, Accounts: []Account{}}
}
