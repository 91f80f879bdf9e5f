package httpapi

import (
	"encoding/json"
	"time"

	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/ledger"
)

type postAccountRequest struct {
	Balance json.Number       `json:"balance,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type amountRequest struct {
	Amount json.Number `json:"amount"`
}

// legacyAmountRequest is the body of PATCH /account/deposito and /account/saque.
type legacyAmountRequest struct {
	ID      int64       `json:"id"`
	Balance json.Number `json:"balance"`
}

type accountResponse struct {
	ID        int64             `json:"id"`
	Balance   json.Number       `json:"balance"`
	CreatedAt time.Time         `json:"createdAt"`
	Fields    map[string]string `json:"fields"`
}

type listAccountsResponse struct {
	Accounts []accountResponse `json:"accounts"`
}

type balanceResponse struct {
	Balance json.Number `json:"balance"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{ID: a.ID, Balance: number(a.Balance), CreatedAt: a.CreatedAt, Fields: a.Fields.Clone()}
}

func number(a money.Amount) json.Number { return json.Number(a.Decimal().String()) }
