package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/directory"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/groups"
	"github.com/frezendesp/GroupManagement/pkg/rbac"
)

const (
	// RecentActivityLimit is the number of the actor's own entries on the dashboard
	RecentActivityLimit = 5
	// OverviewActivityLimit is the number of entries on the admin overview
	OverviewActivityLimit = 10
)

// UserStats counts directory users
type UserStats interface {
	CountActive(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (directory.Stats, error)
}

// GroupStats counts distribution groups
type GroupStats interface {
	CountActive(ctx context.Context) (int64, error)
	CountForUser(ctx context.Context, userID int64) (int64, error)
	Stats(ctx context.Context) (groups.Stats, error)
}

// ActivitySource returns the newest audit entries, optionally for one actor
type ActivitySource interface {
	Recent(ctx context.Context, limit int, actorID *int64) ([]*audit.Entry, error)
}

// Authorizer checks a single permission for an actor
type Authorizer interface {
	Require(ctx context.Context, actor *auth.User, perm rbac.Permission) error
}

// Dashboard is the landing page summary for one user
type Dashboard struct {
	ActiveUsers    int64          `json:"active_users"`
	ActiveGroups   int64          `json:"active_groups"`
	MyGroups       int64          `json:"my_groups"`
	RecentActivity []*audit.Entry `json:"recent_activity"`
}

// Overview is the administrator summary
type Overview struct {
	TotalUsers     int64          `json:"total_users"`
	ActiveUsers    int64          `json:"active_users"`
	TotalGroups    int64          `json:"total_groups"`
	ActiveGroups   int64          `json:"active_groups"`
	RecentActivity []*audit.Entry `json:"recent_activity"`
}

// Service loads dashboard figures
type Service struct {
	users    UserStats
	groups   GroupStats
	activity ActivitySource
	guard    Authorizer
}

// NewService creates a dashboard service
func NewService(users UserStats, groups GroupStats, activity ActivitySource, guard Authorizer) *Service {
	return &Service{
		users:    users,
		groups:   groups,
		activity: activity,
		guard:    guard,
	}
}

// Dashboard returns the landing page figures for actor
func (s *Service) Dashboard(ctx context.Context, actor *auth.User) (*Dashboard, error) {
	if !actor.IsAuthenticated() {
		return nil, errs.ErrUnauthenticated
	}

	var d Dashboard
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() (err error) {
		d.ActiveUsers, err = s.users.CountActive(ctx)
		return err
	})
	eg.Go(func() (err error) {
		d.ActiveGroups, err = s.groups.CountActive(ctx)
		return err
	})
	eg.Go(func() (err error) {
		d.MyGroups, err = s.groups.CountForUser(ctx, actor.ID)
		return err
	})
	eg.Go(func() (err error) {
		actorID := actor.ID
		d.RecentActivity, err = s.activity.Recent(ctx, RecentActivityLimit, &actorID)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, errs.Failed("load dashboard", err)
	}
	if d.RecentActivity == nil {
		d.RecentActivity = []*audit.Entry{}
	}
	return &d, nil
}

// Overview returns the administrator figures. It requires full_admin.
func (s *Service) Overview(ctx context.Context, actor *auth.User) (*Overview, error) {
	if err := s.guard.Require(ctx, actor, rbac.FullAdmin); err != nil {
		return nil, err
	}

	var (
		o          Overview
		userStats  directory.Stats
		groupStats groups.Stats
	)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() (err error) {
		userStats, err = s.users.Stats(ctx)
		return err
	})
	eg.Go(func() (err error) {
		groupStats, err = s.groups.Stats(ctx)
		return err
	})
	eg.Go(func() (err error) {
		o.RecentActivity, err = s.activity.Recent(ctx, OverviewActivityLimit, nil)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, errs.Failed("load overview", err)
	}

	o.TotalUsers = userStats.TotalUsers
	o.ActiveUsers = userStats.ActiveUsers
	o.TotalGroups = groupStats.TotalGroups
	o.ActiveGroups = groupStats.ActiveGroups
	if o.RecentActivity == nil {
		o.RecentActivity = []*audit.Entry{}
	}
	return &o, nil
}
