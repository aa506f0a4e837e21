package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthKit/permission"
)

// UserGroups describes the usergroups operation and its observable behavior.
//
// UserGroups may return an error when input validation, dependency calls, or security checks fail.
// UserGroups does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UserGroups(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.codename
		FROM auth_groups g
		JOIN auth_user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1 AND g.is_active
		ORDER BY g.codename`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("user groups: %w", err)
	}
	defer rows.Close()

	return collectStrings(rows)
}

// UserPermissions describes the userpermissions operation and its observable behavior.
//
// UserPermissions may return an error when input validation, dependency calls, or security checks fail.
// UserPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT p.codename
		FROM auth_permissions p
		JOIN auth_group_permissions gp ON gp.permission_id = p.id
		JOIN auth_groups g ON g.id = gp.group_id
		JOIN auth_user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1 AND g.is_active
		ORDER BY p.codename`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("user permissions: %w", err)
	}
	defer rows.Close()

	return collectStrings(rows)
}

// UserHasPermission describes the userhaspermission operation and its observable behavior.
//
// UserHasPermission may return an error when input validation, dependency calls, or security checks fail.
// UserHasPermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UserHasPermission(ctx context.Context, userID, codename string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM auth_permissions p
			JOIN auth_group_permissions gp ON gp.permission_id = p.id
			JOIN auth_groups g ON g.id = gp.group_id
			JOIN auth_user_groups ug ON ug.group_id = g.id
			WHERE ug.user_id = $1 AND p.codename = $2 AND g.is_active
		)`,
		userID, codename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user has permission: %w", err)
	}
	return exists, nil
}

// GroupByCodename describes the groupbycodename operation and its observable behavior.
//
// GroupByCodename may return an error when input validation, dependency calls, or security checks fail.
// GroupByCodename does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GroupByCodename(ctx context.Context, codename string) (*permission.Group, error) {
	var g permission.Group
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, codename, is_system, is_active
		FROM auth_groups WHERE codename = $1`,
		codename,
	).Scan(&g.ID, &g.Name, &g.Codename, &g.IsSystem, &g.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permission.ErrGroupNotFound
		}
		return nil, fmt.Errorf("group by codename: %w", err)
	}
	return &g, nil
}

// ReplaceUserGroups describes the replaceusergroups operation and its observable behavior.
//
// The replacement is atomic: codenames are resolved first, existing
// memberships deleted and the new set inserted inside one transaction.
// Any unknown codename rolls the whole call back.
//
// ReplaceUserGroups may return an error when input validation, dependency calls, or security checks fail.
// ReplaceUserGroups does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ReplaceUserGroups(ctx context.Context, userID string, codenames []string, assignedBy string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace groups: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	groupIDs := make([]int64, 0, len(codenames))
	for _, codename := range codenames {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM auth_groups WHERE codename = $1 AND is_active`,
			codename,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return permission.ErrGroupNotFound
			}
			return fmt.Errorf("resolve group %q: %w", codename, err)
		}
		groupIDs = append(groupIDs, id)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM auth_user_groups WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("clear user groups: %w", err)
	}

	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_user_groups (user_id, group_id, assigned_by) VALUES ($1, $2, $3)`,
			userID, groupID, assignedBy,
		); err != nil {
			return fmt.Errorf("assign group: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace groups: %w", err)
	}
	return nil
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
