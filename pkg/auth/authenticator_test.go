package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) *StubAuthenticator {
	t.Helper()
	sa, err := NewStubAuthenticator(DefaultSeedAccounts(), bcrypt.MinCost)
	require.NoError(t, err)
	return sa
}

func TestStubAuthenticator_DefaultAccounts(t *testing.T) {
	sa := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		username, password string
		department         string
		admin, manage      bool
	}{
		{"admin", "admin123", "IT", true, true},
		{"hr.manager", "hr123", "Human Resources", false, true},
		{"gp.user", "gp123", "General Practice", false, false},
		{"comm.user", "comm123", "Communications", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			user, err := sa.Authenticate(ctx, tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.Equal(t, tt.department, user.Department)
			assert.Equal(t, tt.admin, user.IsAdmin)
			assert.Equal(t, tt.manage, user.CanManageGroups)
			assert.True(t, user.Active)
			assert.Zero(t, user.ID)
		})
	}
}

func TestStubAuthenticator_Rejects(t *testing.T) {
	sa := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := sa.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = sa.Authenticate(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = sa.Authenticate(ctx, "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStubAuthenticator_PrehashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	sa, err := NewStubAuthenticator([]SeedAccount{{
		Username:     "ops",
		PasswordHash: string(hash),
		Email:        "ops@company.com",
		DisplayName:  "Ops",
	}}, bcrypt.MinCost)
	require.NoError(t, err)

	user, err := sa.Authenticate(context.Background(), "ops", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ops@company.com", user.Email)
	assert.Len(t, sa.Profiles(), 1)
}

func TestLoadSeedAccounts(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		accounts, err := LoadSeedAccounts("")
		require.NoError(t, err)
		assert.Len(t, accounts, 4)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  - username: jane
    password: pw
    email: jane@company.com
    department: Finance
    can_manage_groups: true
`), 0o600))

		accounts, err := LoadSeedAccounts(path)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "jane", accounts[0].DisplayName)
		assert.True(t, accounts[0].CanManageGroups)
		assert.Equal(t, "Finance", accounts[0].Profile().Department)
	})

	t.Run("duplicate username", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  - {username: jane, password: a, email: a@company.com}
  - {username: Jane, password: b, email: b@company.com}
`), 0o600))

		_, err := LoadSeedAccounts(path)
		assert.ErrorContains(t, err, "defined twice")
	})

	t.Run("missing password", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte("accounts:\n  - {username: jane, email: j@company.com}\n"), 0o600))

		_, err := LoadSeedAccounts(path)
		assert.ErrorContains(t, err, "password")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeedAccounts(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
