package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	neurochat "github.com/EdwinKingori/I-NeuroChat"
)

func (s *Store) RolesByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name`,
		userID)
	if err != nil {
		return nil, storageErr("roles by user", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr("roles by user scan", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("roles by user rows", err)
	}
	return names, nil
}

func (s *Store) AssignRole(ctx context.Context, userID, roleName string) error {
	var roleID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM roles WHERE name = ?`, roleName,
	).Scan(&roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return neurochat.ErrUnknownRole
	}
	if err != nil {
		return storageErr("role lookup", err)
	}

	// Insert-if-absent makes re-grants no-ops at the storage level too.
	_, err = s.db.ExecContext(ctx,
		insertIgnoreVerb(s.dialect)+` INTO user_roles(user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	if err != nil {
		return storageErr("assign role", err)
	}
	return nil
}
