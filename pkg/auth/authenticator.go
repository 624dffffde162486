package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInactiveUser is returned when a deactivated user tries to sign in
	ErrInactiveUser = errors.New("user account is inactive")
)

// Authenticator verifies credentials and returns the directory profile of
// the account. The returned user has no ID; provisioning assigns one.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
}

// SeedAccount is one stub account with its profile
type SeedAccount struct {
	Username        string `yaml:"username"`
	Password        string `yaml:"password,omitempty"`
	PasswordHash    string `yaml:"password_hash,omitempty"`
	Email           string `yaml:"email"`
	DisplayName     string `yaml:"display_name"`
	Department      string `yaml:"department,omitempty"`
	Location        string `yaml:"location,omitempty"`
	Role            string `yaml:"role,omitempty"`
	Manager         string `yaml:"manager,omitempty"`
	Phone           string `yaml:"phone,omitempty"`
	IsAdmin         bool   `yaml:"is_admin,omitempty"`
	CanManageGroups bool   `yaml:"can_manage_groups,omitempty"`
}

// Profile converts the seed into an unpersisted user
func (s SeedAccount) Profile() *User {
	return &User{
		Username:        s.Username,
		Email:           s.Email,
		DisplayName:     s.DisplayName,
		Department:      s.Department,
		Location:        s.Location,
		Role:            s.Role,
		Manager:         s.Manager,
		Phone:           s.Phone,
		Active:          true,
		IsAdmin:         s.IsAdmin,
		CanManageGroups: s.CanManageGroups,
	}
}

type seedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// DefaultSeedAccounts returns the built-in demonstration accounts
func DefaultSeedAccounts() []SeedAccount {
	return []SeedAccount{
		{
			Username:        "admin",
			Password:        "admin123",
			Email:           "admin@company.com",
			DisplayName:     "System Administrator",
			Department:      "IT",
			IsAdmin:         true,
			CanManageGroups: true,
		},
		{
			Username:        "hr.manager",
			Password:        "hr123",
			Email:           "hr.manager@company.com",
			DisplayName:     "HR Manager",
			Department:      "Human Resources",
			CanManageGroups: true,
		},
		{
			Username:    "gp.user",
			Password:    "gp123",
			Email:       "gp.user@company.com",
			DisplayName: "GP User",
			Department:  "General Practice",
		},
		{
			Username:    "comm.user",
			Password:    "comm123",
			Email:       "comm.user@company.com",
			DisplayName: "Communications User",
			Department:  "Communications",
		},
	}
}

// LoadSeedAccounts reads seed accounts from a YAML file. An empty path
// returns the defaults.
func LoadSeedAccounts(path string) ([]SeedAccount, error) {
	if path == "" {
		return DefaultSeedAccounts(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seen := make(map[string]bool)
	for i, acct := range file.Accounts {
		if acct.Username == "" || acct.Email == "" {
			return nil, fmt.Errorf("seed account %d: username and email are required", i)
		}
		if acct.Password == "" && acct.PasswordHash == "" {
			return nil, fmt.Errorf("seed account %q: password or password_hash is required", acct.Username)
		}
		key := strings.ToLower(acct.Username)
		if seen[key] {
			return nil, fmt.Errorf("seed account %q is defined twice", acct.Username)
		}
		seen[key] = true
		if file.Accounts[i].DisplayName == "" {
			file.Accounts[i].DisplayName = acct.Username
		}
	}

	return file.Accounts, nil
}

type stubCredential struct {
	hash    []byte
	account SeedAccount
}

// StubAuthenticator checks credentials against seed accounts
type StubAuthenticator struct {
	credentials map[string]stubCredential
	dummyHash   []byte
}

// NewStubAuthenticator hashes plain seed passwords with the given bcrypt cost
func NewStubAuthenticator(accounts []SeedAccount, cost int) (*StubAuthenticator, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	sa := &StubAuthenticator{credentials: make(map[string]stubCredential, len(accounts))}
	for _, acct := range accounts {
		hash := []byte(acct.PasswordHash)
		if len(hash) == 0 {
			var err error
			hash, err = bcrypt.GenerateFromPassword([]byte(acct.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password for %s: %w", acct.Username, err)
			}
		}
		acct.Password = ""
		sa.credentials[acct.Username] = stubCredential{hash: hash, account: acct}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}
	sa.dummyHash = dummy

	return sa, nil
}

// Authenticate implements Authenticator
func (sa *StubAuthenticator) Authenticate(ctx context.Context, username, password string) (*User, error) {
	cred, ok := sa.credentials[username]
	if !ok {
		// compare anyway so unknown users take as long as wrong passwords
		_ = bcrypt.CompareHashAndPassword(sa.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return cred.account.Profile(), nil
}

// Profiles returns the profile of every seed account
func (sa *StubAuthenticator) Profiles() []*User {
	profiles := make([]*User, 0, len(sa.credentials))
	for _, cred := range sa.credentials {
		profiles = append(profiles, cred.account.Profile())
	}
	return profiles
}
