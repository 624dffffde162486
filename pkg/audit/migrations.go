package audit

import "github.com/frezendesp/GroupManagement/pkg/storage"

// Migrations returns the audit_logs schema
func Migrations() []storage.Migration {
	return []storage.Migration{
		{
			Version:     500,
			Description: "Create audit_logs table",
			Postgres: `
				CREATE TABLE IF NOT EXISTS audit_logs (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
					action VARCHAR(100) NOT NULL,
					target_type VARCHAR(50),
					target_id BIGINT,
					details TEXT,
					timestamp TIMESTAMP NOT NULL,
					ip_address VARCHAR(45)
				);

				CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp DESC);
				CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
				CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action);
			`,
			SQLite: `
				CREATE TABLE IF NOT EXISTS audit_logs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
					action VARCHAR(100) NOT NULL,
					target_type VARCHAR(50),
					target_id INTEGER,
					details TEXT,
					timestamp TIMESTAMP NOT NULL,
					ip_address VARCHAR(45)
				);

				CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp DESC);
				CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
				CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action);
			`,
		},
	}
}
