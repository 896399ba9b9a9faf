// Package sqlstore implements the durable storage collaborators on
// database/sql, supporting SQLite (modernc.org/sqlite) and MySQL
// (go-sql-driver/mysql). It owns the schema and the RBAC reference data;
// callers get back providers that plug straight into the engine builder.
//
// Storage is the source of truth for accounts, sessions, and role edges.
// Role and permission reference rows are seeded once and never mutated at
// runtime.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavor for the handful of statements where SQLite
// and MySQL differ.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// OpenDB opens a database handle for the named driver ("sqlite" or "mysql")
// and returns it together with the matching dialect. MySQL DSNs must carry
// parseTime=true so DATETIME columns scan into time.Time.
func OpenDB(driver, dsn string) (*sql.DB, Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		db, err := OpenSQLite(dsn)
		if err != nil {
			return nil, "", err
		}
		return db, DialectSQLite, nil
	case "mysql":
		db, err := OpenMySQL(dsn)
		if err != nil {
			return nil, "", err
		}
		return db, DialectMySQL, nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenSQLite opens (and creates, if needed) a SQLite database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	// Driver options may ride in as query parameters; strip them before
	// creating the parent directory.
	filePath := path
	if i := strings.IndexByte(filePath, '?'); i >= 0 {
		filePath = filePath[:i]
	}
	if filePath != "" && filePath != ":memory:" && !strings.HasPrefix(filePath, "file::memory:") {
		if dir := filepath.Dir(filePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open(sqlite): %w", err)
	}
	// Concurrent writers contend on the file lock; a single connection is
	// the stable configuration for a single-node deployment.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping(sqlite): %w", err)
	}

	// Persistent database-level setting; one Exec covers all connections.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	return db, nil
}

// OpenMySQL opens a MySQL handle with pool settings suited to a long-lived
// service process.
func OpenMySQL(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("mysql dsn required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open(mysql): %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping(mysql): %w", err)
	}
	return db, nil
}

func insertIgnoreVerb(d Dialect) string {
	if d == DialectSQLite {
		return "INSERT OR IGNORE"
	}
	return "INSERT IGNORE"
}
