package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/storage"
)

const userColumns = `id, username, email, display_name, department, location, role, manager, phone,
	active, is_admin, can_manage_groups, created_at, last_login`

// Store handles user persistence
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new user store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u                                          auth.User
		department, location, role, manager, phone sql.NullString
		lastLogin                                  sql.NullTime
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&department,
		&location,
		&role,
		&manager,
		&phone,
		&u.Active,
		&u.IsAdmin,
		&u.CanManageGroups,
		&u.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}

	u.Department = department.String
	u.Location = location.String
	u.Role = role.String
	u.Manager = manager.String
	u.Phone = phone.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetByID returns the user or *errs.NotFoundError
func (s *Store) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByUsername returns the user or nil when no user has that username
func (s *Store) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

// Create inserts a user. Duplicate usernames or emails yield a
// *errs.ValidationError.
func (s *Store) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	created := *user
	created.CreatedAt = s.now().UTC()

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, display_name, department, location, role, manager, phone,
			active, is_admin, can_manage_groups, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		created.Username,
		created.Email,
		created.DisplayName,
		nullString(created.Department),
		nullString(created.Location),
		nullString(created.Role),
		nullString(created.Manager),
		nullString(created.Phone),
		created.Active,
		created.IsAdmin,
		created.CanManageGroups,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			if strings.Contains(storage.ConstraintName(err), "email") {
				return nil, errs.NewValidationError("email", "A user with this email already exists.")
			}
			return nil, errs.NewValidationError("username", "A user with this username already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &created, nil
}

// TouchLastLogin records a successful sign-in
func (s *Store) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Update writes the given profile fields. Unknown fields are rejected.
func (s *Store) Update(ctx context.Context, id int64, fields map[Field]string) error {
	if len(fields) == 0 {
		return nil
	}

	var (
		sets []string
		args []interface{}
	)
	// fixed order keeps the statement stable
	for _, f := range elevatedFields {
		v, ok := fields[f]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	if len(sets) != len(fields) {
		return fmt.Errorf("unsupported user field in update")
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errs.NewNotFoundError("user", id)
	}
	return nil
}

// Search returns active users whose display name or email contains query
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	pattern := storage.ContainsPattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, department
		FROM users
		WHERE active = $1
		  AND (LOWER(display_name) LIKE LOWER($2) `+storage.LikeEscape+`
		       OR LOWER(email) LIKE LOWER($3) `+storage.LikeEscape+`)
		ORDER BY display_name, id
		LIMIT $4
	`, true, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var (
			r          SearchResult
			department sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.DisplayName, &r.Email, &department); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		r.Department = department.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return results, nil
}

func listWhere(filter ListFilter) (string, []interface{}) {
	clauses := []string{"active = $1"}
	args := []interface{}{true}

	if filter.Search != "" {
		pattern := storage.ContainsPattern(filter.Search)
		args = append(args, pattern, pattern, pattern)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(display_name) LIKE LOWER($%d) %s OR LOWER(email) LIKE LOWER($%d) %s OR LOWER(username) LIKE LOWER($%d) %s)",
			n-2, storage.LikeEscape, n-1, storage.LikeEscape, n, storage.LikeEscape))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		clauses = append(clauses, fmt.Sprintf("department = $%d", len(args)))
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns one page of active users ordered by display name and the
// total number of matches.
func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*auth.User, int64, error) {
	where, args := listWhere(filter)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	n := len(args)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY display_name, id LIMIT $%d OFFSET $%d`, userColumns, where, n+1, n+2)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*auth.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

// Departments returns the distinct non-empty departments of active users
func (s *Store) Departments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT department
		FROM users
		WHERE active = $1 AND department IS NOT NULL AND department <> ''
		ORDER BY department
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate departments: %w", err)
	}
	return departments, nil
}

// Stats counts all and active users
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN active = $1 THEN 1 ELSE 0 END), 0)
		FROM users
	`, true).Scan(&st.TotalUsers, &st.ActiveUsers)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count users: %w", err)
	}
	return st, nil
}

// CountActive returns the number of active users
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE active = $1`, true).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return n, nil
}
