package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
)

const userColumns = `id, email, username, hashed_password, is_active, last_login, created_at`

func scanUser(row *sql.Row) (neurochat.UserRecord, error) {
	var (
		u         neurochat.UserRecord
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.UserID, &u.Email, &u.Username, &u.PasswordHash, &u.Active, &lastLogin, &u.CreatedAt)
	if err != nil {
		return neurochat.UserRecord{}, err
	}
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, userID string) (neurochat.UserRecord, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return neurochat.UserRecord{}, neurochat.ErrUserNotFound
	}
	if err != nil {
		return neurochat.UserRecord{}, storageErr("user by id", err)
	}
	return u, nil
}

func (s *Store) UserByIdentifier(ctx context.Context, identifier string) (neurochat.UserRecord, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? OR username = ?`,
		identifier, identifier))
	if errors.Is(err, sql.ErrNoRows) {
		return neurochat.UserRecord{}, neurochat.ErrUserNotFound
	}
	if err != nil {
		return neurochat.UserRecord{}, storageErr("user by identifier", err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, input neurochat.CreateUserInput) (neurochat.UserRecord, error) {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(id, email, username, hashed_password, is_active, created_at)
		 VALUES (?, ?, ?, ?, TRUE, ?)`,
		input.UserID, input.Email, input.Username, input.PasswordHash, now)
	if err != nil {
		if s.isDuplicate(err) {
			return neurochat.UserRecord{}, fmt.Errorf("%w: %s", neurochat.ErrDuplicateIdentifier, input.Email)
		}
		return neurochat.UserRecord{}, storageErr("create user", err)
	}

	return neurochat.UserRecord{
		UserID:       input.UserID,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		Active:       true,
		CreatedAt:    now,
	}, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`,
		at.UTC().Truncate(time.Second), userID)
	if err != nil {
		return storageErr("touch last login", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return neurochat.ErrUserNotFound
	}
	return nil
}

func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, active, userID)
	if err != nil {
		return storageErr("set user active", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return neurochat.ErrUserNotFound
	}
	return nil
}

// DeactivateIdleSince flips every active account whose last recorded login
// predates cutoff and returns the affected IDs. Accounts that never logged
// in are left alone; their created_at governs other cleanup paths.
func (s *Store) DeactivateIdleSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	cutoffUTC := cutoff.UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("deactivate idle", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM users WHERE is_active = TRUE AND last_login IS NOT NULL AND last_login < ?`,
		cutoffUTC)
	if err != nil {
		return nil, storageErr("deactivate idle select", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, storageErr("deactivate idle scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storageErr("deactivate idle rows", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE WHERE is_active = TRUE AND last_login IS NOT NULL AND last_login < ?`,
		cutoffUTC); err != nil {
		return nil, storageErr("deactivate idle update", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("deactivate idle commit", err)
	}
	return ids, nil
}
