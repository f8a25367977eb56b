// Package mysql snapshots the bench state into a MySQL JSON table through
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	gomysql "github.com/go-sql-driver/mysql"

	"labworks/internal/infra/persistence/sqlsnapshot"
	"labworks/pkg/domain"
)

const defaultDriver = "mysql"

// Dialect holds the MySQL state table statements.
var Dialect = sqlsnapshot.Dialect{
	Name: "mysql",
	StateDDL: `CREATE TABLE IF NOT EXISTS state (
		bucket VARCHAR(64) NOT NULL PRIMARY KEY,
		payload JSON NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON DUPLICATE KEY UPDATE payload=VALUES(payload)`,
}

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to MySQL while reusing the in-memory implementation for transactions.
type Store struct {
	*sqlsnapshot.Store
}

// NormalizeDSN parses dsn with the driver's config parser and forces
// parseTime so timestamps scan into time.Time.
func NormalizeDSN(dsn string) (string, error) {
	if dsn == "" {
		dsn = "root@tcp(127.0.0.1:3306)/labworks"
	}
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// NewStore opens a MySQL-backed store, ensures the snapshot table exists and
// hydrates the in-memory store from any existing snapshot.
func NewStore(dsn string, engine *domain.RulesEngine) (*Store, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, normalized)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	inner, err := sqlsnapshot.Open(context.Background(), db, Dialect, engine)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: inner}, nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
