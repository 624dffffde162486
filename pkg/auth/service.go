package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/audit"
	"github.com/frezendesp/GroupManagement/pkg/errs"
	"github.com/frezendesp/GroupManagement/pkg/observability"
)

// UserStore is the persistence the login flow needs
type UserStore interface {
	// GetByUsername returns nil when no user has that username
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service signs users in and out
type Service struct {
	authn   Authenticator
	users   UserStore
	audit   audit.Recorder
	metrics *observability.Metrics
	logger  *observability.Logger
	now     func() time.Time
}

// NewService creates a login service
func NewService(authn Authenticator, users UserStore, recorder audit.Recorder, metrics *observability.Metrics, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		authn:   authn,
		users:   users,
		audit:   recorder,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Login verifies credentials, provisions the user on first sign-in and
// records the attempt.
func (s *Service) Login(ctx context.Context, username, password, ip string) (*User, error) {
	username = strings.TrimSpace(username)

	profile, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.recordFailure(ctx, username, ip, "failed")
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Failed("authenticate", err)
	}

	user, err := s.provision(ctx, profile)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		s.recordFailure(ctx, username, ip, "inactive")
		return nil, ErrInactiveUser
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, errs.Failed("update last login", err)
	}
	user.LastLogin = &now

	s.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(user.ID),
		Action:     audit.ActionLogin,
		TargetType: audit.TargetUser,
		TargetID:   audit.Int64Ptr(user.ID),
		Details:    "User logged in successfully",
		IPAddress:  ip,
	})
	s.metrics.ObserveLogin("success")

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User logged in")

	return user, nil
}

// Logout records the end of a session
func (s *Service) Logout(ctx context.Context, user *User, ip string) {
	if !user.IsAuthenticated() {
		return
	}

	s.audit.Record(ctx, audit.Record{
		ActorID:    audit.Int64Ptr(user.ID),
		Action:     audit.ActionLogout,
		TargetType: audit.TargetUser,
		TargetID:   audit.Int64Ptr(user.ID),
		Details:    "User logged out",
		IPAddress:  ip,
	})
}

// SeedUsers creates any profile whose username does not exist yet
func (s *Service) SeedUsers(ctx context.Context, profiles []*User) (int, error) {
	created := 0
	for _, p := range profiles {
		existing, err := s.users.GetByUsername(ctx, p.Username)
		if err != nil {
			return created, fmt.Errorf("failed to look up %s: %w", p.Username, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.users.Create(ctx, p); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", p.Username, err)
		}
		created++
	}
	return created, nil
}

func (s *Service) provision(ctx context.Context, profile *User) (*User, error) {
	user, err := s.users.GetByUsername(ctx, profile.Username)
	if err != nil {
		return nil, errs.Failed("load user", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.Create(ctx, profile)
	if err == nil {
		s.logger.WithField("username", profile.Username).Info("Provisioned user on first login")
		return user, nil
	}

	// a concurrent first login may have created the row
	if again, getErr := s.users.GetByUsername(ctx, profile.Username); getErr == nil && again != nil {
		return again, nil
	}
	return nil, errs.Failed("provision user", err)
}

func (s *Service) recordFailure(ctx context.Context, username, ip, status string) {
	s.audit.Record(ctx, audit.Record{
		Action:     audit.ActionLoginFailed,
		TargetType: audit.TargetUser,
		Details:    "Failed login attempt for username: " + username,
		IPAddress:  ip,
	})
	s.metrics.ObserveLogin(status)

	s.logger.WithFields(map[string]interface{}{
		"username": username,
		"status":   status,
	}).Warn("Login rejected")
}
