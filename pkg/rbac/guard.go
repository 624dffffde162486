package rbac

import (
	"context"

	"github.com/frezendesp/GroupManagement/pkg/auth"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/observability"
)

// Guard answers "may this actor do that" for a single permission
type Guard struct {
	grants GrantStore
	logger *observability.Logger
}

// NewGuard creates an access guard backed by grants
func NewGuard(grants GrantStore, logger *observability.Logger) *Guard {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Guard{grants: grants, logger: logger}
}

// Authorize evaluates perm for actor. Lookup failures deny.
func (g *Guard) Authorize(ctx context.Context, actor *auth.User, perm Permission) Decision {
	d := Decision{Permission: perm}

	switch {
	case !actor.IsAuthenticated():
		d.Reason = ReasonUnauthenticated
		return d
	case actor.IsAdmin:
		d.Allowed, d.Reason = true, ReasonAdmin
		return d
	case perm == ManageGroups && actor.CanManageGroups:
		d.Allowed, d.Reason = true, ReasonManageFlag
		return d
	}

	ok, err := g.grants.HasGrant(ctx, actor.ID, perm)
	if err != nil {
		g.logger.WithError(err).WithFields(map[string]interface{}{
			"user_id":    actor.ID,
			"permission": string(perm),
		}).Error("Permission lookup failed, denying access")
		d.Reason = ReasonLookupFailed
		return d
	}
	if !ok {
		d.Reason = ReasonNoGrant
		return d
	}

	d.Allowed, d.Reason = true, ReasonGrant
	return d
}

// Require returns nil when actor holds perm, errs.ErrUnauthenticated when
// there is no actor and an *errs.AuthorizationError otherwise.
func (g *Guard) Require(ctx context.Context, actor *auth.User, perm Permission) error {
	d := g.Authorize(ctx, actor, perm)
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonUnauthenticated {
		return errs.ErrUnauthenticated
	}
	return &errs.AuthorizationError{Permission: string(perm), Reason: d.Reason}
}
