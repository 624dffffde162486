package groups

import "github.com/frezendesp/GroupManagement/pkg/storage"

// Migrations returns the distribution group schema
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     200,
			Description: "Create distribution_groups table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS distribution_groups (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL UNIQUE,
					email VARCHAR(120) NOT NULL UNIQUE,
					description TEXT,
					group_type VARCHAR(50) NOT NULL DEFAULT 'distribution',
					active BOOLEAN NOT NULL DEFAULT TRUE,
					created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					created_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_distribution_groups_active ON distribution_groups(active);
			`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS distribution_groups (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name VARCHAR(100) NOT NULL UNIQUE,
					email VARCHAR(120) NOT NULL UNIQUE,
					description TEXT,
					group_type VARCHAR(50) NOT NULL DEFAULT 'distribution',
					active BOOLEAN NOT NULL DEFAULT 1,
					created_by INTEGER REFERENCES users(id) ON DELETE SET NULL,
					created_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_distribution_groups_active ON distribution_groups(active);
			`,
		},
		{
			Version:     201,
			Description: "Create group_members table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS group_members (
					group_id BIGINT NOT NULL REFERENCES distribution_groups(id) ON DELETE CASCADE,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					added_at TIMESTAMP NOT NULL,
					PRIMARY KEY (group_id, user_id)
				);

				CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
			`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS group_members (
					group_id INTEGER NOT NULL REFERENCES distribution_groups(id) ON DELETE CASCADE,
					user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					added_at TIMESTAMP NOT NULL,
					PRIMARY KEY (group_id, user_id)
				);

				CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
			`,
		},
	}
}
