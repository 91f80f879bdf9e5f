package account

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tinoosan/bankledger/internal/errs"
)

const (
	resultOK           = "ok"
	resultNotFound     = "not_found"
	resultInvalid      = "invalid"
	resultInvalidAmt   = "invalid_amount"
	resultInsufficient = "insufficient_funds"
	resultStorage      = "storage_failure"
	resultCanceled     = "canceled"
	resultError        = "error"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "operations_total",
		Help:      "Ledger service operations by outcome",
	},
	[]string{"op", "result"},
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, errs.ErrNotFound):
		return resultNotFound
	case errors.Is(err, errs.ErrInvalidAmount):
		return resultInvalidAmt
	case errors.Is(err, errs.ErrInsufficientFunds):
		return resultInsufficient
	case errors.Is(err, errs.ErrStorage):
		return resultStorage
	case errors.Is(err, errs.ErrInvalid):
		return resultInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resultCanceled
	default:
		return resultError
	}
}
