package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

const groupColumns = `g.id, g.name, g.email, g.description, g.group_type, g.active, g.created_by, g.created_at,
	(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)`

// Store handles distribution group and membership persistence
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new group store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row rowScanner) (*Group, error) {
	var (
		g           Group
		description sql.NullString
		createdBy   sql.NullInt64
	)
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Email,
		&description,
		&g.GroupType,
		&g.Active,
		&createdBy,
		&g.CreatedAt,
		&g.MemberCount,
	)
	if err != nil {
		return nil, err
	}

	g.Description = description.String
	if createdBy.Valid {
		id := createdBy.Int64
		g.CreatedBy = &id
	}
	return &g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetByID returns the group or *errs.NotFoundError
func (s *Store) GetByID(ctx context.Context, id int64) (*Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM distribution_groups g WHERE g.id = $1`, id)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError("group", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// NameExists reports whether a group already uses name
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM distribution_groups WHERE name = $1`, name)
}

// EmailExists reports whether a group already uses email
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT COUNT(*) FROM distribution_groups WHERE email = $1`, email)
}

func (s *Store) exists(ctx context.Context, query string, arg string) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check group uniqueness: %w", err)
	}
	return n > 0, nil
}

// Create inserts an active group. Duplicate names or emails yield a
// *errs.ValidationError.
func (s *Store) Create(ctx context.Context, group *Group) (*Group, error) {
	created := *group
	created.Active = true
	created.CreatedAt = s.now().UTC()
	if created.GroupType == "" {
		created.GroupType = DefaultGroupType
	}

	var createdBy sql.NullInt64
	if created.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: *created.CreatedBy, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO distribution_groups (name, email, description, group_type, active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		created.Name,
		created.Email,
		nullString(created.Description),
		created.GroupType,
		created.Active,
		createdBy,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			if strings.Contains(storage.ConstraintName(err), "email") {
				return nil, errs.NewValidationError("email", "A group with this email already exists.")
			}
			return nil, errs.NewValidationError("name", "A group with this name already exists.")
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	created.MemberCount = 0
	return &created, nil
}

// AddMember adds a user to a group. It reports false when the user was
// already a member.
func (s *Store) AddMember(ctx context.Context, groupID, userID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add group member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// RemoveMember removes a user from a group. It reports false when the user
// was not a member.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove group member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Members returns the members of a group ordered by display name
func (s *Store) Members(ctx context.Context, groupID int64) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name, u.email, u.department, u.location, u.phone, m.added_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY u.display_name, u.id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var (
			m                           Member
			department, location, phone sql.NullString
		)
		if err := rows.Scan(&m.UserID, &m.Username, &m.DisplayName, &m.Email,
			&department, &location, &phone, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		m.Department = department.String
		m.Location = location.String
		m.Phone = phone.String
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

func listWhere(filter ListFilter) (string, []interface{}) {
	clauses := []string{"g.active = $1"}
	args := []interface{}{true}

	if filter.Search != "" {
		pattern := storage.ContainsPattern(filter.Search)
		args = append(args, pattern, pattern)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(g.name) LIKE LOWER($%d) %s OR LOWER(COALESCE(g.description, '')) LIKE LOWER($%d) %s)",
			n-1, storage.LikeEscape, n, storage.LikeEscape))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns one page of active groups ordered by name and the total
// number of matches.
func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Group, int64, error) {
	where, args := listWhere(filter)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM distribution_groups g`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	n := len(args)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM distribution_groups g%s ORDER BY g.name, g.id LIMIT $%d OFFSET $%d`, groupColumns, where, n+1, n+2)

	groups, err := s.queryGroups(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, total, nil
}

// GroupsForUser returns the active groups a user belongs to ordered by name
func (s *Store) GroupsForUser(ctx context.Context, userID int64) ([]*Group, error) {
	groups, err := s.queryGroups(ctx, `
		SELECT `+groupColumns+`
		FROM distribution_groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1 AND g.active = $2
		ORDER BY g.name, g.id
	`, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user: %w", err)
	}
	return groups, nil
}

func (s *Store) queryGroups(ctx context.Context, query string, args ...interface{}) ([]*Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []*Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// Stats counts all and active groups
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN active = $1 THEN 1 ELSE 0 END), 0)
		FROM distribution_groups
	`, true).Scan(&st.TotalGroups, &st.ActiveGroups)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count groups: %w", err)
	}
	return st, nil
}

// CountActive returns the number of active groups
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM distribution_groups WHERE active = $1`, true).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active groups: %w", err)
	}
	return n, nil
}

// CountForUser returns the number of active groups a user belongs to
func (s *Store) CountForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM group_members gm
		JOIN distribution_groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1 AND g.active = $2
	`, userID, true).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count groups for user: %w", err)
	}
	return n, nil
}
