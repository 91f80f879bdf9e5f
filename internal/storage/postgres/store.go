// Package postgres provides a pgx-backed persistence adapter for the ledger.
//
// The ledger is kept as one jsonb document in a single-row table, so Load and
// Store keep the whole-document contract of the other adapters while the
// database supplies durability. The schema lives under db/migrations.
package postgres

import (
    "context"
    _ "embed"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/tinoosan/bankledger/internal/errs"
    "github.com/tinoosan/bankledger/internal/ledger"
)

// ledgerRow is the primary key of the only row in ledger_state.
const ledgerRow = 1

//go:embed schema.sql
var schema string

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
    pool  *pgxpool.Pool
    codec ledger.Codec
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn, currency string) (*Store, error) {
    cfg, err := pgxpool.ParseConfig(dsn)
    if err != nil { return nil, err }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil { return nil, err }
    // Verify connection
    if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
    return &Store{pool: pool, codec: ledger.Codec{Currency: currency}}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { if s.pool != nil { s.pool.Close() } }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error {
    if err := s.pool.Ping(ctx); err != nil { return fmt.Errorf("postgres ping: %w: %w", errs.ErrStorage, err) }
    return nil
}

// Migrate creates the ledger_state table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
    if _, err := s.pool.Exec(ctx, schema); err != nil { return fmt.Errorf("apply schema: %w", err) }
    return nil
}

// Init inserts the empty ledger if no row exists yet. It reports whether it inserted one.
func (s *Store) Init(ctx context.Context) (bool, error) {
    doc, err := s.codec.Encode(ledger.NewState())
    if err != nil { return false, err }
    ct, err := s.pool.Exec(ctx, `
        insert into ledger_state (id, document, updated_at)
        values ($1, $2, now())
        on conflict (id) do nothing
    `, ledgerRow, doc)
    if err != nil { return false, fmt.Errorf("postgres init: %w: %w", errs.ErrStorage, err) }
    return ct.RowsAffected() == 1, nil
}

// Load returns the stored ledger, or the empty ledger if the row does not exist.
func (s *Store) Load(ctx context.Context) (ledger.State, error) {
    var doc []byte
    err := s.pool.QueryRow(ctx, `select document from ledger_state where id = $1`, ledgerRow).Scan(&doc)
    if errors.Is(err, pgx.ErrNoRows) { return ledger.NewState(), nil }
    if err != nil { return ledger.State{}, fmt.Errorf("postgres load: %w: %w", errs.ErrStorage, err) }
    st, err := s.codec.Decode(doc)
    if err != nil { return ledger.State{}, fmt.Errorf("postgres load: %w: %w", errs.ErrStorage, err) }
    return st, nil
}

// Store replaces the ledger document inside a transaction.
func (s *Store) Store(ctx context.Context, st ledger.State) error {
    doc, err := s.codec.Encode(st)
    if err != nil { return fmt.Errorf("postgres store: %w: %w", errs.ErrStorage, err) }
    tx, err := s.pool.Begin(ctx)
    if err != nil { return fmt.Errorf("postgres begin: %w: %w", errs.ErrStorage, err) }
    defer func() { _ = tx.Rollback(ctx) }()
    if _, err := tx.Exec(ctx, `
        insert into ledger_state (id, document, updated_at)
        values ($1, $2, now())
        on conflict (id) do update set document = excluded.document, updated_at = excluded.updated_at
    `, ledgerRow, doc); err != nil {
        return fmt.Errorf("postgres store: %w: %w", errs.ErrStorage, err)
    }
    if err := tx.Commit(ctx); err != nil { return fmt.Errorf("postgres commit: %w: %w", errs.ErrStorage, err) }
    return nil
}
