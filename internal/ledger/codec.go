package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/errs"
	"github.com/tinoosan/bankledger/internal/meta"
)

// Codec converts a State to and from the persisted JSON document:
//
//	{"nextId": 2, "accounts": [{"id": 1, "name": "Ana", "balance": 100.00, "createdAt": "..."}]}
//
// Caller fields are flattened into each account object. Balances are written as JSON
// numbers in the ledger currency.
type Codec struct {
	Currency string
}

type document struct {
	NextID   int64             `json:"nextId"`
	Accounts []json.RawMessage `json:"accounts"`
}

// Encode returns the JSON document for s.
func (c Codec) Encode(s State) ([]byte, error) {
	doc := document{NextID: s.NextID, Accounts: make([]json.RawMessage, 0, len(s.Accounts))}
	for _, a := range s.Accounts {
		b, err := c.encodeAccount(a)
		if err != nil {
			return nil, err
		}
		doc.Accounts = append(doc.Accounts, b)
	}
	return json.Marshal(doc)
}

// Decode parses a JSON document and checks the ledger invariants.
func (c Codec) Decode(b []byte) (State, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return State{}, fmt.Errorf("decode ledger: %w", err)
	}
	s := State{NextID: doc.NextID, Accounts: make([]Account, 0, len(doc.Accounts))}
	for i, raw := range doc.Accounts {
		a, err := c.decodeAccount(raw)
		if err != nil {
			return State{}, fmt.Errorf("decode account[%d]: %w", i, err)
		}
		s.Accounts = append(s.Accounts, a)
	}
	if err := s.Validate(); err != nil {
		return State{}, fmt.Errorf("decode ledger: %w", err)
	}
	return s, nil
}

func (c Codec) encodeAccount(a Account) (json.RawMessage, error) {
	if code := a.Balance.Curr().Code(); code != c.Currency {
		return nil, fmt.Errorf("account %d balance in %s, ledger is %s: %w", a.ID, code, c.Currency, errs.ErrInvalidAmount)
	}
	out := make(map[string]any, len(a.Fields)+3)
	for _, k := range a.Fields.Keys() {
		out[k] = a.Fields[k]
	}
	out["id"] = a.ID
	out["balance"] = json.Number(a.Balance.Decimal().String())
	out["createdAt"] = a.CreatedAt
	return json.Marshal(out)
}

func (c Codec) decodeAccount(raw json.RawMessage) (Account, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Account{}, err
	}
	var a Account
	if err := json.Unmarshal(obj["id"], &a.ID); err != nil {
		return Account{}, fmt.Errorf("id: %w", err)
	}
	bal, err := c.decodeBalance(obj["balance"])
	if err != nil {
		return Account{}, fmt.Errorf("account %d balance: %w", a.ID, err)
	}
	a.Balance = bal
	// Documents written by the first version of the service used "timestamp".
	created, ok := obj["createdAt"]
	if !ok {
		created, ok = obj["timestamp"]
	}
	if ok {
		if err := json.Unmarshal(created, &a.CreatedAt); err != nil {
			return Account{}, fmt.Errorf("account %d createdAt: %w", a.ID, err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
	}
	a.Fields = meta.New(nil)
	for k, v := range obj {
		if isReserved(k) {
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return Account{}, fmt.Errorf("account %d field %q must be a string: %w", a.ID, k, err)
		}
		a.Fields[k] = str
	}
	return a, nil
}

func (c Codec) decodeBalance(raw json.RawMessage) (money.Amount, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return money.NewAmountFromMinorUnits(c.Currency, 0)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return money.Amount{}, err
	}
	return money.ParseAmount(c.Currency, n.String())
}

// ZeroAmount returns zero in the given currency.
func ZeroAmount(currency string) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(currency, 0)
}

func isReserved(k string) bool {
	for _, r := range Reserved {
		if k == r {
			return true
		}
	}
	return false
}

// EncodeAccount returns the document form of a single account.
func (c Codec) EncodeAccount(a Account) (json.RawMessage, error) {
	return c.encodeAccount(a)
}
