// Package sqlsnapshot persists the in-memory bench state into a single
// key/value table of JSON buckets. Transactions run against the memory store;
// after each successful commit every bucket is upserted in one SQL
// transaction. Dialects supply the DDL and upsert statement.
package sqlsnapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"labworks/internal/infra/persistence/memory"
	"labworks/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Dialect captures the statements that differ between SQL engines.
type Dialect struct {
	Name string
	// StateDDL creates the state(bucket, payload) table when missing.
	StateDDL string
	// Upsert writes one bucket; it takes bucket and payload as arguments.
	Upsert string
}

// Store persists state to SQL while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// Open ensures the state table exists and hydrates a memory store from any
// existing snapshot.
func Open(ctx context.Context, db *sql.DB, dialect Dialect, engine *domain.RulesEngine) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	if _, err := db.ExecContext(ctx, dialect.StateDDL); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	snapshot, err := Load(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore(engine)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db, dialect: dialect}, nil
}

// RunInTransaction applies fn within a memory transaction, then snapshots to
// SQL if successful. When the snapshot cannot be written the memory state is
// rolled back to what it was before fn ran.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(ctx); err != nil {
		s.Store.ImportState(prev)
		return res, err
	}
	return res, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect returns the configured SQL dialect.
func (s *Store) Dialect() Dialect { return s.dialect }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

type bucket struct {
	name   string
	target any
}

// Buckets lists bucket names in persistence order.
func Buckets() []string {
	var names []string
	for _, b := range bucketsOf(&domain.Snapshot{}) {
		names = append(names, b.name)
	}
	return names
}

func bucketsOf(s *domain.Snapshot) []bucket {
	return []bucket{
		{"keyboards", &s.Keyboards},
		{"samples", &s.Samples},
		{"coffees", &s.Coffees},
		{"plants", &s.Plants},
		{"araucarias", &s.Araucarias},
		{"fittonias", &s.Fittonias},
		{"library", &s.Library},
	}
}

// Load reads every bucket row. Unknown buckets are ignored and every record
// is re-validated while decoding.
func Load(ctx context.Context, db *sql.DB) (domain.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot domain.Snapshot
	targets := map[string]any{}
	for _, b := range bucketsOf(&snapshot) {
		targets[b.name] = b.target
	}
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		if target, ok := targets[name]; ok {
			if err := json.Unmarshal(payload, target); err != nil {
				return domain.Snapshot{}, fmt.Errorf("decode %s: %w", name, err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot.Clone(), nil
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) error {
	snapshot := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, b := range bucketsOf(&snapshot) {
		data, err := json.Marshal(b.target)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Upsert, b.name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
