package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
)

func (s *Store) SessionByKey(ctx context.Context, key string) (neurochat.SessionRecord, error) {
	var rec neurochat.SessionRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT session_key, user_id, is_active, created_at, expires_at
		 FROM user_sessions WHERE session_key = ? AND is_active = TRUE`,
		key,
	).Scan(&rec.SessionKey, &rec.UserID, &rec.Active, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return neurochat.SessionRecord{}, neurochat.ErrSessionNotFound
	}
	if err != nil {
		return neurochat.SessionRecord{}, storageErr("session by key", err)
	}
	return rec, nil
}

func (s *Store) CreateSession(ctx context.Context, rec neurochat.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_sessions(session_key, user_id, is_active, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionKey, rec.UserID, rec.Active,
		rec.CreatedAt.UTC().Truncate(time.Second),
		rec.ExpiresAt.UTC().Truncate(time.Second))
	if err != nil {
		return storageErr("create session", err)
	}
	return nil
}

func (s *Store) InvalidateSession(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_sessions SET is_active = FALSE WHERE session_key = ?`, key)
	if err != nil {
		return storageErr("invalidate session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return neurochat.ErrSessionNotFound
	}
	return nil
}

func (s *Store) InvalidateUserSessions(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_sessions SET is_active = FALSE WHERE user_id = ? AND is_active = TRUE`,
		userID)
	if err != nil {
		return 0, storageErr("invalidate user sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("invalidate user sessions", err)
	}
	return n, nil
}

// PurgeExpiredSessions deletes rows whose expiry is in the past. Meant for a
// host scheduler; the resolve path never depends on it because expiry is
// checked per row.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_sessions WHERE expires_at < ?`,
		time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return 0, storageErr("purge expired sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("purge expired sessions", err)
	}
	return n, nil
}
