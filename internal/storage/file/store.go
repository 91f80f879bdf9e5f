// Package file persists the ledger as a single JSON document on local disk.
//
// Every Store rewrites the whole document: the new bytes go to a temporary file in
// the same directory, which is synced and then renamed over the target. A reader
// therefore sees either the previous document or the new one, never a mix.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tinoosan/bankledger/internal/errs"
	"github.com/tinoosan/bankledger/internal/ledger"
)

// Store reads and writes the ledger document at Path.
type Store struct {
	path  string
	codec ledger.Codec
	log   *slog.Logger
}

// New returns a Store for the document at path, holding balances in currency.
func New(path, currency string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, codec: ledger.Codec{Currency: currency}, log: logger}
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Init writes the empty ledger if no document exists yet. It reports whether it wrote one.
func (s *Store) Init(ctx context.Context) (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w: %w", s.path, errs.ErrStorage, err)
	}
	if err := s.Store(ctx, ledger.NewState()); err != nil {
		return false, err
	}
	s.log.Info("ledger document created", "path", s.path)
	return true, nil
}

// Load reads and decodes the document. A missing file yields the empty ledger.
func (s *Store) Load(_ context.Context) (ledger.State, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.NewState(), nil
	}
	if err != nil {
		return ledger.State{}, fmt.Errorf("read %s: %w: %w", s.path, errs.ErrStorage, err)
	}
	st, err := s.codec.Decode(b)
	if err != nil {
		return ledger.State{}, fmt.Errorf("read %s: %w: %w", s.path, errs.ErrStorage, err)
	}
	return st, nil
}

// Store replaces the document with the encoding of st.
func (s *Store) Store(_ context.Context, st ledger.State) error {
	b, err := s.codec.Encode(st)
	if err != nil {
		return fmt.Errorf("encode ledger: %w: %w", errs.ErrStorage, err)
	}
	if err := writeAtomic(s.path, b); err != nil {
		return fmt.Errorf("write %s: %w: %w", s.path, errs.ErrStorage, err)
	}
	s.log.Debug("ledger document stored", "path", s.path, "bytes", len(b), "next_id", st.NextID)
	return nil
}

// Ready checks that the document directory is reachable.
func (s *Store) Ready(_ context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w: %w", dir, errs.ErrStorage, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", dir, errs.ErrStorage)
	}
	return nil
}

func writeAtomic(path string, b []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(b); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return syncDir(dir)
}

// syncDir makes the rename durable. Platforms that cannot open a directory for
// syncing are ignored.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}
