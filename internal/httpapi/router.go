// Package httpapi wires the HTTP surface of the bank ledger service.
// It keeps handlers thin, delegating every ledger rule to the account service.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tinoosan/bankledger/internal/ledger"
	"github.com/tinoosan/bankledger/internal/service/account"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	svc   account.Service
	ready ReadyChecker
	codec ledger.Codec
	log   *slog.Logger
	rt    *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// ready may be nil when the backing store has no readiness probe.
func New(svc account.Service, ready ReadyChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		svc:   svc,
		ready: ready,
		codec: ledger.Codec{Currency: svc.Zero().Curr().Code()},
		log:   logger,
		rt:    r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts (v1)
	s.rt.Route("/v1/accounts", func(r chi.Router) {
		r.With(requireJSON).Post("/", s.postAccount)
		r.Get("/", s.listAccounts)
		r.Get("/{id}/balance", s.getBalance)
		r.Delete("/{id}", s.deleteAccount)
		r.With(requireJSON).Post("/{id}/deposit", s.deposit)
		r.With(requireJSON).Post("/{id}/withdraw", s.withdraw)
	})
	// Routes of the first version of the service, kept for existing clients
	s.rt.With(requireJSON).Post("/account", s.legacyCreate)
	s.rt.Get("/account", s.legacyList)
	s.rt.Get("/account/saldo/{id}", s.legacyBalance)
	s.rt.Delete("/account/{id}", s.legacyDelete)
	s.rt.With(requireJSON).Patch("/account/deposito", s.legacyDeposit)
	s.rt.With(requireJSON).Patch("/account/saque", s.legacyWithdraw)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
