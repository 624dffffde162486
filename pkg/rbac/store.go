package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GrantStore persists explicit permission grants
type GrantStore interface {
	// HasGrant reports whether the user holds perm under any scope
	HasGrant(ctx context.Context, userID int64, perm Permission) (bool, error)
	ListGrants(ctx context.Context, userID int64) ([]Grant, error)
	// Grant inserts g and reports false when an identical grant exists
	Grant(ctx context.Context, g *Grant) (bool, error)
	// Revoke deletes a grant and reports false when there was none
	Revoke(ctx context.Context, userID int64, perm Permission, scope string) (bool, error)
}

// Store handles grant persistence in the user_permissions table
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new grant store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// HasGrant implements GrantStore
func (s *Store) HasGrant(ctx context.Context, userID int64, perm Permission) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM user_permissions
		WHERE user_id = $1 AND permission_type = $2
		LIMIT 1
	`, userID, string(perm)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return true, nil
}

// ListGrants implements GrantStore
func (s *Store) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, permission_type, scope, granted_by, granted_at
		FROM user_permissions
		WHERE user_id = $1
		ORDER BY permission_type, scope
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	grants := []Grant{}
	for rows.Next() {
		var (
			g         Grant
			perm      string
			grantedBy sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.UserID, &perm, &g.Scope, &grantedBy, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		g.Permission = Permission(perm)
		if grantedBy.Valid {
			v := grantedBy.Int64
			g.GrantedBy = &v
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grants: %w", err)
	}
	return grants, nil
}

// Grant implements GrantStore
func (s *Store) Grant(ctx context.Context, g *Grant) (bool, error) {
	grantedAt := s.now().UTC()

	var grantedBy interface{}
	if g.GrantedBy != nil {
		grantedBy = *g.GrantedBy
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_permissions (user_id, permission_type, scope, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, permission_type, scope) DO NOTHING
		RETURNING id
	`, g.UserID, string(g.Permission), g.Scope, grantedBy, grantedAt).Scan(&g.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to grant permission: %w", err)
	}

	g.GrantedAt = grantedAt
	return true, nil
}

// Revoke implements GrantStore
func (s *Store) Revoke(ctx context.Context, userID int64, perm Permission, scope string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM user_permissions
		WHERE user_id = $1 AND permission_type = $2 AND scope = $3
	`, userID, string(perm), scope)
	if err != nil {
		return false, fmt.Errorf("failed to revoke permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
