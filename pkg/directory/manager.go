package directory

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/observability"
)

const (
	minSearchLength    = 2
	defaultSearchLimit = 10
)

// UserRepository is the persistence the directory manager needs
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*auth.User, error)
	Update(ctx context.Context, id int64, fields map[Field]string) error
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*auth.User, int64, error)
	Departments(ctx context.Context) ([]string, error)
}

// Manager implements directory browsing and profile edits
type Manager struct {
	users   UserRepository
	audit   audit.Recorder
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewManager creates a directory manager
func NewManager(users UserRepository, recorder audit.Recorder, metrics *observability.Metrics, logger *observability.Logger) *Manager {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Manager{
		users:   users,
		audit:   recorder,
		metrics: metrics,
		logger:  logger,
	}
}

// EditableFields returns the profile fields actor may change on target
func EditableFields(actor, target *auth.User) []Field {
	switch {
	case !actor.IsAuthenticated() || target == nil:
		return []Field{}
	case actor.IsElevated():
		return append([]Field(nil), elevatedFields...)
	case actor.ID == target.ID:
		return append([]Field(nil), selfFields...)
	default:
		return []Field{}
	}
}

// EditableFields returns the profile fields actor may change on target
func (m *Manager) EditableFields(actor, target *auth.User) []Field {
	return EditableFields(actor, target)
}

// GetUser returns a user and the fields actor may edit
func (m *Manager) GetUser(ctx context.Context, actor *auth.User, id int64) (*UserDetail, error) {
	if !actor.IsAuthenticated() {
		return nil, errs.ErrUnauthenticated
	}

	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("load user", err)
	}

	fields := EditableFields(actor, user)
	return &UserDetail{
		User:           user,
		EditableFields: fields,
		CanEdit:        len(fields) > 0,
	}, nil
}

// UpdateUser applies the permitted subset of fields to a user. Fields the
// actor may not edit are dropped without error.
func (m *Manager) UpdateUser(ctx context.Context, actor *auth.User, targetID int64, fields map[Field]string, ip string) (*auth.User, error) {
	if !actor.IsAuthenticated() {
		return nil, errs.ErrUnauthenticated
	}

	target, err := m.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, wrapLookup("load user", err)
	}

	editable := EditableFields(actor, target)
	if len(editable) == 0 {
		return nil, &errs.AuthorizationError{Reason: "you do not have permission to edit this user"}
	}

	changes := make(map[Field]string, len(editable))
	for _, f := range editable {
		v, ok := fields[f]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if limit := fieldMaxLen[f]; utf8.RuneCountInString(v) > limit {
			return nil, errs.NewValidationError(string(f), fmt.Sprintf("%s must be at most %d characters", f, limit))
		}
		changes[f] = v
	}
	if v, ok := changes[FieldDisplayName]; ok && v == "" {
		return nil, errs.NewValidationError(string(FieldDisplayName), "display_name is required")
	}

	if err := m.users.Update(ctx, targetID, changes); err != nil {
		return nil, wrapLookup("update user", err)
	}

	updated, err := m.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, wrapLookup("reload user", err)
	}

	m.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionEditUser,
		TargetType: audit.TargetUser,
		TargetID:   audit.Int64Ptr(targetID),
		Details:    "Updated user information for " + updated.DisplayName,
		IPAddress:  ip,
	})
	m.metrics.ObserveUserEdit()

	m.logger.WithFields(map[string]interface{}{
		"actor_id": actor.ID,
		"user_id":  targetID,
		"fields":   len(changes),
	}).Info("User updated")

	return updated, nil
}

// Search finds active users by display name or email. Queries shorter than
// two characters return nothing.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return []SearchResult{}, nil
	}
	if limit <= 0 || limit > defaultSearchLimit {
		limit = defaultSearchLimit
	}

	results, err := m.users.Search(ctx, query, limit)
	if err != nil {
		return nil, errs.Failed("search users", err)
	}
	return results, nil
}

// ListUsers returns a page of active users
func (m *Manager) ListUsers(ctx context.Context, filter ListFilter) (*UserPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Department = strings.TrimSpace(filter.Department)
	if filter.Page < 1 {
		filter.Page = 1
	}

	users, total, err := m.users.List(ctx, filter, PageSize, (filter.Page-1)*PageSize)
	if err != nil {
		return nil, errs.Failed("list users", err)
	}

	return &UserPage{
		Users:    users,
		Total:    total,
		Page:     filter.Page,
		PageSize: PageSize,
		Pages:    int((total + PageSize - 1) / PageSize),
	}, nil
}

// Departments returns the sorted distinct departments of active users
func (m *Manager) Departments(ctx context.Context) ([]string, error) {
	departments, err := m.users.Departments(ctx)
	if err != nil {
		return nil, errs.Failed("list departments", err)
	}
	return departments, nil
}

// wrapLookup passes domain errors through and wraps everything else
func wrapLookup(op string, err error) error {
	if errs.IsNotFound(err) || errs.IsValidation(err) {
		return err
	}
	return errs.Failed(op, err)
}
