package groups

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/observability"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
)

// GroupRepository is the persistence the group manager needs
type GroupRepository interface {
	GetByID(ctx context.Context, id int64) (*Group, error)
	NameExists(ctx context.Context, name string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, group *Group) (*Group, error)
	AddMember(ctx context.Context, groupID, userID int64) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID int64) (bool, error)
	Members(ctx context.Context, groupID int64) ([]Member, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Group, int64, error)
	GroupsForUser(ctx context.Context, userID int64) ([]*Group, error)
}

// UserGetter loads users by id. Missing users yield *errs.NotFoundError.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*auth.User, error)
}

// Authorizer checks a single permission for an actor
type Authorizer interface {
	Require(ctx context.Context, actor *auth.User, perm rbac.Permission) error
}

// Manager implements distribution group operations
type Manager struct {
	groups  GroupRepository
	users   UserGetter
	guard   Authorizer
	audit   audit.Recorder
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewManager creates a group manager
func NewManager(groups GroupRepository, users UserGetter, guard Authorizer, recorder audit.Recorder, metrics *observability.Metrics, logger *observability.Logger) *Manager {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Manager{
		groups:  groups,
		users:   users,
		guard:   guard,
		audit:   recorder,
		metrics: metrics,
		logger:  logger,
	}
}

// load resolves the group and user of a membership change
func (m *Manager) load(ctx context.Context, groupID, userID int64) (*Group, *auth.User, error) {
	group, err := m.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, wrapLookup("load group", err)
	}
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, wrapLookup("load user", err)
	}
	return group, user, nil
}

// AddMember adds a user to a group. Adding an existing member returns
// AlreadyMember and records nothing.
func (m *Manager) AddMember(ctx context.Context, actor *auth.User, groupID, userID int64, ip string) (MembershipResult, error) {
	if err := m.guard.Require(ctx, actor, rbac.ManageGroups); err != nil {
		return "", err
	}

	group, user, err := m.load(ctx, groupID, userID)
	if err != nil {
		return "", err
	}

	added, err := m.groups.AddMember(ctx, groupID, userID)
	if err != nil {
		return "", errs.Failed("add group member", err)
	}
	if !added {
		m.metrics.ObserveMembershipChange("add", string(AlreadyMember))
		return AlreadyMember, nil
	}

	m.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionAddGroupMember,
		TargetType: audit.TargetGroup,
		TargetID:   audit.Int64Ptr(groupID),
		Details:    "Added user " + user.DisplayName + " to group " + group.Name,
		IPAddress:  ip,
	})
	m.metrics.ObserveMembershipChange("add", string(Added))

	m.logger.WithFields(map[string]interface{}{
		"actor_id": actor.ID,
		"group_id": groupID,
		"user_id":  userID,
	}).Info("Group member added")

	return Added, nil
}

// RemoveMember removes a user from a group. Removing a non-member returns
// NotMember and records nothing.
func (m *Manager) RemoveMember(ctx context.Context, actor *auth.User, groupID, userID int64, ip string) (MembershipResult, error) {
	if err := m.guard.Require(ctx, actor, rbac.ManageGroups); err != nil {
		return "", err
	}

	group, user, err := m.load(ctx, groupID, userID)
	if err != nil {
		return "", err
	}

	removed, err := m.groups.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return "", errs.Failed("remove group member", err)
	}
	if !removed {
		m.metrics.ObserveMembershipChange("remove", string(NotMember))
		return NotMember, nil
	}

	m.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionRemoveGroupMember,
		TargetType: audit.TargetGroup,
		TargetID:   audit.Int64Ptr(groupID),
		Details:    "Removed user " + user.DisplayName + " from group " + group.Name,
		IPAddress:  ip,
	})
	m.metrics.ObserveMembershipChange("remove", string(Removed))

	m.logger.WithFields(map[string]interface{}{
		"actor_id": actor.ID,
		"group_id": groupID,
		"user_id":  userID,
	}).Info("Group member removed")

	return Removed, nil
}

// CreateGroup creates an active group owned by actor
func (m *Manager) CreateGroup(ctx context.Context, actor *auth.User, req CreateGroupRequest, ip string) (*Group, error) {
	if err := m.guard.Require(ctx, actor, rbac.ManageGroups); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	groupType := strings.TrimSpace(req.GroupType)
	if name == "" {
		return nil, errs.NewValidationError("name", "Group name is required.")
	}
	if email == "" {
		return nil, errs.NewValidationError("email", "Group email is required.")
	}
	for _, c := range []struct {
		field, value string
		limit        int
	}{
		{"name", name, maxNameLen},
		{"email", email, maxEmailLen},
		{"group_type", groupType, maxGroupTypeLen},
	} {
		if utf8.RuneCountInString(c.value) > c.limit {
			return nil, errs.NewValidationError(c.field, fmt.Sprintf("%s must be at most %d characters", c.field, c.limit))
		}
	}

	taken, err := m.groups.NameExists(ctx, name)
	if err != nil {
		return nil, errs.Failed("check group name", err)
	}
	if taken {
		return nil, errs.NewValidationError("name", "A group with this name already exists.")
	}
	taken, err = m.groups.EmailExists(ctx, email)
	if err != nil {
		return nil, errs.Failed("check group email", err)
	}
	if taken {
		return nil, errs.NewValidationError("email", "A group with this email already exists.")
	}

	createdBy := actor.ID
	group, err := m.groups.Create(ctx, &Group{
		Name:        name,
		Email:       email,
		Description: strings.TrimSpace(req.Description),
		GroupType:   groupType,
		CreatedBy:   &createdBy,
	})
	if err != nil {
		return nil, wrapLookup("create group", err)
	}

	m.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(actor.ID),
		Action:     audit.ActionCreateGroup,
		TargetType: audit.TargetGroup,
		TargetID:   audit.Int64Ptr(group.ID),
		Details:    "Created new group: " + group.Name,
		IPAddress:  ip,
	})
	m.metrics.ObserveGroupCreated()

	m.logger.WithFields(map[string]interface{}{
		"actor_id": actor.ID,
		"group_id": group.ID,
	}).Info("Group created")

	return group, nil
}

// ListGroups returns a page of active groups
func (m *Manager) ListGroups(ctx context.Context, filter ListFilter) (*GroupPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page < 1 {
		filter.Page = 1
	}

	groups, total, err := m.groups.List(ctx, filter, PageSize, (filter.Page-1)*PageSize)
	if err != nil {
		return nil, errs.Failed("list groups", err)
	}

	return &GroupPage{
		Groups:   groups,
		Total:    total,
		Page:     filter.Page,
		PageSize: PageSize,
		Pages:    int((total + PageSize - 1) / PageSize),
	}, nil
}

// CanManage reports whether actor may change group
func CanManage(actor *auth.User, group *Group) bool {
	if actor.IsElevated() {
		return true
	}
	return actor.IsAuthenticated() && group != nil &&
		group.CreatedBy != nil && *group.CreatedBy == actor.ID
}

// GetGroupDetail returns a group with its members
func (m *Manager) GetGroupDetail(ctx context.Context, actor *auth.User, id int64) (*GroupDetail, error) {
	if !actor.IsAuthenticated() {
		return nil, errs.ErrUnauthenticated
	}

	group, err := m.groups.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("load group", err)
	}

	members, err := m.groups.Members(ctx, id)
	if err != nil {
		return nil, errs.Failed("list group members", err)
	}

	return &GroupDetail{
		Group:     group,
		Members:   members,
		CanManage: CanManage(actor, group),
	}, nil
}

// GroupsForUser returns the active groups a user belongs to
func (m *Manager) GroupsForUser(ctx context.Context, userID int64) ([]*Group, error) {
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		return nil, wrapLookup("load user", err)
	}

	groups, err := m.groups.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, errs.Failed("list groups for user", err)
	}
	return groups, nil
}

func wrapLookup(op string, err error) error {
	if errs.IsNotFound(err) || errs.IsValidation(err) {
		return err
	}
	return errs.Failed(op, err)
}
