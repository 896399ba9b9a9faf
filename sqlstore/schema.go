package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
	"github.com/google/uuid"
)

// seedPermissions is the permission vocabulary, in bit-assignment order.
var seedPermissions = []string{
	"users.read",
	"users.activate",
	"users.promote",
}

// seedRoles maps each seeded role to its permission grants.
var seedRoles = map[string][]string{
	"admin":   {"users.read", "users.activate", "users.promote"},
	"support": {"users.read"},
	"user":    {},
}

// PermissionNames returns the seeded permission vocabulary for the engine
// builder.
func PermissionNames() []string {
	return append([]string(nil), seedPermissions...)
}

// RoleDefinitions returns the seeded role set in a stable order for the
// engine builder.
func RoleDefinitions() []neurochat.RoleDefinition {
	defs := make([]neurochat.RoleDefinition, 0, len(seedRoles))
	for _, name := range []string{"admin", "support", "user"} {
		defs = append(defs, neurochat.RoleDefinition{
			Name:        name,
			Permissions: append([]string(nil), seedRoles[name]...),
		})
	}
	return defs
}

// EnsureSchema creates every table the store needs. Idempotent; safe to run
// at every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id VARCHAR(36) PRIMARY KEY,
  email VARCHAR(255) NOT NULL UNIQUE,
  username VARCHAR(64) NOT NULL UNIQUE,
  hashed_password VARCHAR(255) NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  last_login DATETIME NULL,
  created_at DATETIME NOT NULL
)`,
		sessionsDDL(s.dialect),
		`CREATE TABLE IF NOT EXISTS roles (
  id VARCHAR(36) PRIMARY KEY,
  name VARCHAR(64) NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS permissions (
  id VARCHAR(36) PRIMARY KEY,
  name VARCHAR(128) NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS role_permissions (
  role_id VARCHAR(36) NOT NULL,
  permission_id VARCHAR(36) NOT NULL,
  PRIMARY KEY (role_id, permission_id)
)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
  user_id VARCHAR(36) NOT NULL,
  role_id VARCHAR(36) NOT NULL,
  PRIMARY KEY (user_id, role_id)
)`,
	}

	if s.dialect == DialectSQLite {
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS idx_user_sessions_user_id ON user_sessions (user_id)`)
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// sessionsDDL differs per dialect: MySQL declares the user_id index inline
// because it has no CREATE INDEX IF NOT EXISTS.
func sessionsDDL(d Dialect) string {
	if d == DialectMySQL {
		return `CREATE TABLE IF NOT EXISTS user_sessions (
  session_key VARCHAR(128) PRIMARY KEY,
  user_id VARCHAR(36) NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  INDEX idx_user_sessions_user_id (user_id)
)`
	}
	return `CREATE TABLE IF NOT EXISTS user_sessions (
  session_key VARCHAR(128) PRIMARY KEY,
  user_id VARCHAR(36) NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL
)`
}

// SeedRBAC inserts the role and permission reference rows and the
// role-to-permission grants. Idempotent: existing rows are left untouched,
// so repeated startups converge on the same reference data.
func (s *Store) SeedRBAC(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("seed rbac", err)
	}
	defer tx.Rollback()

	for _, name := range seedPermissions {
		verb := insertIgnoreVerb(s.dialect)
		if _, err := tx.ExecContext(ctx,
			verb+` INTO permissions(id, name) VALUES (?, ?)`,
			uuid.NewString(), name,
		); err != nil {
			return storageErr("seed permission", err)
		}
	}

	for _, role := range []string{"admin", "support", "user"} {
		verb := insertIgnoreVerb(s.dialect)
		if _, err := tx.ExecContext(ctx,
			verb+` INTO roles(id, name) VALUES (?, ?)`,
			uuid.NewString(), role,
		); err != nil {
			return storageErr("seed role", err)
		}

		for _, perm := range seedRoles[role] {
			roleID, err := idByName(ctx, tx, "roles", role)
			if err != nil {
				return err
			}
			permID, err := idByName(ctx, tx, "permissions", perm)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				verb+` INTO role_permissions(role_id, permission_id) VALUES (?, ?)`,
				roleID, permID,
			); err != nil {
				return storageErr("seed role grant", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("seed rbac commit", err)
	}
	return nil
}

func idByName(ctx context.Context, tx *sql.Tx, table, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE name = ?`, name,
	).Scan(&id)
	if err != nil {
		return "", storageErr("lookup "+table, err)
	}
	return id, nil
}
