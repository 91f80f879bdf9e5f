// Package memory provides an in-memory persistence adapter used for development and tests.
// It keeps the encoded document rather than the State so every Load hands out an
// independent copy, the same as a disk or database round trip would.
package memory

import (
    "context"
    "fmt"
    "sync"

    "github.com/tinoosan/bankledger/internal/errs"
    "github.com/tinoosan/bankledger/internal/ledger"
)

// Store holds the last stored ledger document.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
    mu       sync.RWMutex
    codec    ledger.Codec
    doc      []byte
    storeErr error
    loadErr  error
    stores   int
}

// New constructs an empty in-memory store for the given ledger currency.
func New(currency string) *Store {
    return &Store{codec: ledger.Codec{Currency: currency}}
}

// Seed replaces the stored document. Helpers below are for local dev/tests.
func (s *Store) Seed(st ledger.State) error {
    b, err := s.codec.Encode(st)
    if err != nil { return err }
    s.mu.Lock(); s.doc = b; s.mu.Unlock()
    return nil
}

// SeedDocument replaces the stored document with raw bytes (not validated until Load).
func (s *Store) SeedDocument(b []byte) { s.mu.Lock(); s.doc = append([]byte(nil), b...); s.mu.Unlock() }

// FailStores makes every following Store return err; nil restores normal behaviour.
func (s *Store) FailStores(err error) { s.mu.Lock(); s.storeErr = err; s.mu.Unlock() }

// FailLoads makes every following Load return err; nil restores normal behaviour.
func (s *Store) FailLoads(err error) { s.mu.Lock(); s.loadErr = err; s.mu.Unlock() }

// Document returns a copy of the stored document, nil if nothing was stored.
func (s *Store) Document() []byte {
    s.mu.RLock(); defer s.mu.RUnlock()
    if s.doc == nil { return nil }
    return append([]byte(nil), s.doc...)
}

// Stores reports how many successful Store calls happened.
func (s *Store) Stores() int { s.mu.RLock(); defer s.mu.RUnlock(); return s.stores }

func (s *Store) Reset() {
    s.mu.Lock()
    s.doc = nil
    s.storeErr = nil
    s.loadErr = nil
    s.stores = 0
    s.mu.Unlock()
}

// Load decodes the stored document, or returns the empty ledger if none was stored.
func (s *Store) Load(_ context.Context) (ledger.State, error) {
    s.mu.RLock(); defer s.mu.RUnlock()
    if s.loadErr != nil { return ledger.State{}, fmt.Errorf("memory load: %w: %w", errs.ErrStorage, s.loadErr) }
    if s.doc == nil { return ledger.NewState(), nil }
    st, err := s.codec.Decode(s.doc)
    if err != nil { return ledger.State{}, fmt.Errorf("memory load: %w: %w", errs.ErrStorage, err) }
    return st, nil
}

// Store replaces the document with the encoding of st.
func (s *Store) Store(_ context.Context, st ledger.State) error {
    b, err := s.codec.Encode(st)
    if err != nil { return fmt.Errorf("memory store: %w: %w", errs.ErrStorage, err) }
    s.mu.Lock(); defer s.mu.Unlock()
    if s.storeErr != nil { return fmt.Errorf("memory store: %w: %w", errs.ErrStorage, s.storeErr) }
    s.doc = b
    s.stores++
    return nil
}

// Init stores the empty ledger when nothing was stored yet and reports whether it did.
func (s *Store) Init(_ context.Context) (bool, error) {
    s.mu.Lock(); defer s.mu.Unlock()
    if s.doc != nil { return false, nil }
    b, err := s.codec.Encode(ledger.NewState())
    if err != nil { return false, fmt.Errorf("memory init: %w: %w", errs.ErrStorage, err) }
    s.doc = b
    return true, nil
}

// Ready always succeeds for the in-memory store.
func (s *Store) Ready(_ context.Context) error { return nil }
