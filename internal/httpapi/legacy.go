// Handlers for the first-generation routes under /account. Bodies and
// responses use the flat document shape: custom fields sit next to id and balance.

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/govalues/money"
	"github.com/tinoosan/bankledger/internal/errs"
	"github.com/tinoosan/bankledger/internal/ledger"
	"github.com/tinoosan/bankledger/internal/meta"
)

func (s *Server) legacyCreate(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeJSON(w, r, &body, false); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	draft := ledger.Draft{Balance: s.svc.Zero(), Fields: meta.Metadata{}}
	for k, raw := range body {
		if k == "balance" {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			badRequest(w, "field "+k+" must be a string")
			return
		}
		draft.Fields[k] = v
	}
	if raw, ok := body["balance"]; ok && !isNull(raw) {
		bal, err := s.parseRawAmount(raw)
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
	doc, err := s.codec.EncodeAccount(acc)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, doc)
}

func (s *Server) legacyList(w http.ResponseWriter, r *http.Request) {
	accs, err := s.svc.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	docs := make([]json.RawMessage, 0, len(accs))
	for _, a := range accs {
		doc, err := s.codec.EncodeAccount(a)
		if err != nil {
			s.writeServiceErr(w, r, err)
			return
		}
		docs = append(docs, doc)
	}
	toJSON(w, http.StatusOK, map[string]any{"accounts": docs})
}

func (s *Server) legacyBalance(w http.ResponseWriter, r *http.Request) {
	s.getBalance(w, r)
}

// legacyDelete answers 200 with an empty body like the first version did.
func (s *Server) legacyDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) legacyDeposit(w http.ResponseWriter, r *http.Request) {
	s.legacyMoveFunds(w, r, s.svc.Deposit)
}

func (s *Server) legacyWithdraw(w http.ResponseWriter, r *http.Request) {
	s.legacyMoveFunds(w, r, s.svc.Withdraw)
}

func (s *Server) legacyMoveFunds(w http.ResponseWriter, r *http.Request, op fundsOp) {
	var req legacyAmountRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.ID < 1 {
		badRequest(w, "invalid account id")
		return
	}
	amount, err := s.svc.ParseAmount(req.Balance.String())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if _, err := op(r.Context(), req.ID, amount); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// parseRawAmount accepts a JSON number or a quoted decimal.
func (s *Server) parseRawAmount(raw json.RawMessage) (money.Amount, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return money.Amount{}, fmt.Errorf("balance %s: %w", raw, errs.ErrInvalidAmount)
	}
	return s.svc.ParseAmount(n.String())
}

func isNull(raw json.RawMessage) bool { return bytes.Equal(bytes.TrimSpace(raw), []byte("null")) }
