package directory

import "github.com/frezendesp/GroupManagement/pkg/storage"

// Migrations returns the users schema
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     100,
			Description: "Create users table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(64) NOT NULL UNIQUE,
					email VARCHAR(120) NOT NULL UNIQUE,
					display_name VARCHAR(120) NOT NULL,
					department VARCHAR(100),
					location VARCHAR(100),
					role VARCHAR(100),
					manager VARCHAR(120),
					phone VARCHAR(20),
					active BOOLEAN NOT NULL DEFAULT TRUE,
					is_admin BOOLEAN NOT NULL DEFAULT FALSE,
					can_manage_groups BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL,
					last_login TIMESTAMP
				);
			`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS users (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					username VARCHAR(64) NOT NULL UNIQUE,
					email VARCHAR(120) NOT NULL UNIQUE,
					display_name VARCHAR(120) NOT NULL,
					department VARCHAR(100),
					location VARCHAR(100),
					role VARCHAR(100),
					manager VARCHAR(120),
					phone VARCHAR(20),
					active BOOLEAN NOT NULL DEFAULT 1,
					is_admin BOOLEAN NOT NULL DEFAULT 0,
					can_manage_groups BOOLEAN NOT NULL DEFAULT 0,
					created_at TIMESTAMP NOT NULL,
					last_login TIMESTAMP
				);
			`,
		},
		{
			Version:     101,
			Description: "Index users for directory listings",
			Postgres: `
				CREATE INDEX IF NOT EXISTS idx_users_display_name ON users(display_name);
				CREATE INDEX IF NOT EXISTS idx_users_department ON users(department);
			`,
		},
	}
}
