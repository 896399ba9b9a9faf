package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
	"github.com/go-sql-driver/mysql"
)

// Store implements the engine's SessionProvider, UserProvider, and
// RoleProvider on a single *sql.DB. Safe for concurrent use; all methods
// honor context cancellation through the database/sql layer.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps db as a Store. Call [Store.EnsureSchema] (and usually
// [Store.SeedRBAC]) before handing the store to the engine builder.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	if db == nil {
		return nil, errors.New("db required")
	}
	switch dialect {
	case DialectSQLite, DialectMySQL:
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// storageErr wraps driver and connection failures in the engine's storage
// sentinel so callers can distinguish outages from domain outcomes.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", neurochat.ErrStorageUnavailable, op, err)
}

// isDuplicate reports whether err is a unique-constraint violation.
func (s *Store) isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	// modernc.org/sqlite reports constraint failures by message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ neurochat.SessionProvider = (*Store)(nil)
	_ neurochat.UserProvider    = (*Store)(nil)
	_ neurochat.RoleProvider    = (*Store)(nil)
)
