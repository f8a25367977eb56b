package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"labworks/internal/infra/persistence/testutil"
	"labworks/pkg/domain"
)

func TestNewStoreUsesPgxAndDefaultDSN(t *testing.T) {
	db, conn := testutil.NewStubDB()
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	})
	defer restore()

	if _, err := NewStore("", domain.NewRulesEngine()); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if gotDriver != "pgx" || gotDSN != defaultDSN {
		t.Fatalf("unexpected open args %q %q", gotDriver, gotDSN)
	}
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "JSONB") {
		t.Fatalf("expected JSONB state table DDL, got %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsAndReloads(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("postgres://ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var id string
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		c, err := domain.NewCoffee(domain.Size300, domain.SortArabica, false, true)
		if err != nil {
			return err
		}
		id, err = tx.CreateCoffee(c)
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	var sawUpsert bool
	for _, stmt := range conn.Execs {
		if strings.Contains(stmt, "$1") && strings.Contains(stmt, "ON CONFLICT") {
			sawUpsert = true
		}
	}
	if !sawUpsert {
		t.Fatalf("expected postgres upsert, got %v", conn.Execs)
	}

	reloaded, err := NewStore("postgres://ignored", nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c, ok := reloaded.ExportState().Coffees[id]; !ok || c.Sort() != domain.SortArabica {
		t.Fatalf("expected coffee %s after reload", id)
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("boom") })
	defer restore()
	if _, err := NewStore("x", nil); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStoreClosesDBWhenSnapshotOpenFails(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	conn.FailPing = true
	if _, err := NewStore("postgres://ignored", nil); err == nil {
		t.Fatalf("expected ping error")
	}
	conn.FailPing = false
	if err := db.PingContext(context.Background()); err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected db to be closed after failed open, got %v", err)
	}
}
