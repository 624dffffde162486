package rbac

import "github.com/frezendesp/GroupManagement/pkg/storage"

// Migrations returns the user_permissions schema. The scope column is never
// NULL so the unique constraint also covers unscoped grants.
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     300,
			Description: "Create user_permissions table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS user_permissions (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id),
					permission_type VARCHAR(50) NOT NULL,
					scope VARCHAR(100) NOT NULL DEFAULT '',
					granted_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					granted_at TIMESTAMP NOT NULL,
					UNIQUE(user_id, permission_type, scope)
				);

				CREATE INDEX IF NOT EXISTS idx_user_permissions_user_id ON user_permissions(user_id);
			`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS user_permissions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER NOT NULL REFERENCES users(id),
					permission_type VARCHAR(50) NOT NULL,
					scope VARCHAR(100) NOT NULL DEFAULT '',
					granted_by INTEGER REFERENCES users(id) ON DELETE SET NULL,
					granted_at TIMESTAMP NOT NULL,
					UNIQUE(user_id, permission_type, scope)
				);

				CREATE INDEX IF NOT EXISTS idx_user_permissions_user_id ON user_permissions(user_id);
			`,
		},
	}
}
