package core

import (
	"fmt"
	"os"
	"strings"

	"labworks/internal/infra/persistence/memory"
	"labworks/internal/infra/persistence/mysql"
	"labworks/internal/infra/persistence/postgres"
	"labworks/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMySQL    StorageDriver = "mysql"    // MySQL / MariaDB server
)

// NewMemoryStore constructs an in-memory store bound to engine.
func NewMemoryStore(engine *RulesEngine) *memory.Store {
	return memory.NewStore(engine)
}

// NewSQLiteStore opens a SQLite snapshot store; an empty path uses sqlite.DefaultPath.
func NewSQLiteStore(path string, engine *RulesEngine) (*sqlite.Store, error) {
	return sqlite.NewStore(path, engine)
}

// NewPostgresStore opens a PostgreSQL snapshot store.
func NewPostgresStore(dsn string, engine *RulesEngine) (*postgres.Store, error) {
	return postgres.NewStore(dsn, engine)
}

// NewMySQLStore opens a MySQL snapshot store.
func NewMySQLStore(dsn string, engine *RulesEngine) (*mysql.Store, error) {
	return mysql.NewStore(dsn, engine)
}

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	LABWORKS_STORAGE_DRIVER: memory|sqlite|postgres|mysql (default sqlite)
//	LABWORKS_SQLITE_PATH: path to sqlite file (default ./labworks.db)
//	LABWORKS_POSTGRES_DSN: postgres DSN when driver=postgres
//	LABWORKS_MYSQL_DSN: mysql DSN when driver=mysql
//
// SQL-backed stores hold a connection pool; callers release it by asserting
// io.Closer on the result.
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("LABWORKS_STORAGE_DRIVER")))
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return NewMemoryStore(engine), nil
	case StorageSQLite:
		store, err := NewSQLiteStore(os.Getenv("LABWORKS_SQLITE_PATH"), engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := NewPostgresStore(os.Getenv("LABWORKS_POSTGRES_DSN"), engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageMySQL:
		store, err := NewMySQLStore(os.Getenv("LABWORKS_MYSQL_DSN"), engine)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
