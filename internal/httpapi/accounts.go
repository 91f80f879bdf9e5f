// Account handlers (v1): create, list, balance, delete, deposit, withdraw.

package httpapi

import (
	"context"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/ledger"
	"github.com/tinoosan/bankledger/internal/meta"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	var req postAccountRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	draft := ledger.Draft{Balance: s.svc.Zero(), Fields: meta.New(req.Fields)}
	if req.Balance != "" {
		bal, err := s.svc.ParseAmount(req.Balance.String())
		if err != nil {
			s.writeServiceErr(w, r, err)
			return
		}
		draft.Balance = bal
	}
	acc, err := s.svc.Create(r.Context(), draft)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accs, err := s.svc.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := listAccountsResponse{Accounts: make([]accountResponse, 0, len(accs))}
	for _, a := range accs {
		out.Accounts = append(out.Accounts, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

// getBalance handles GET /v1/accounts/{id}/balance
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	bal, err := s.svc.Balance(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{Balance: number(bal)})
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	s.moveFunds(w, r, s.svc.Deposit)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	s.moveFunds(w, r, s.svc.Withdraw)
}

type fundsOp func(ctx context.Context, id int64, amount money.Amount) (ledger.Account, error)

func (s *Server) moveFunds(w http.ResponseWriter, r *http.Request, op fundsOp) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	amount, err := s.svc.ParseAmount(req.Amount.String())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	acc, err := op(r.Context(), id, amount)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

// accountID parses the {id} path parameter, writing 400 when it is not a positive integer.
func accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(w, "invalid account id")
		return 0, false
	}
	return id, true
}
