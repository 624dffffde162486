// Package auth holds the user model, the stub credential check that stands
// in for directory sign-on, and the login service that provisions accounts
// and records sign-in activity.
//
// # Authentication
//
// StubAuthenticator verifies a username and password against a fixed set of
// seed accounts. Passwords are kept only as bcrypt hashes. Accounts come from
// an optional YAML file:
//
//	accounts:
//	  - username: admin
//	    password: admin123
//	    email: admin@company.com
//	    display_name: System Administrator
//	    department: IT
//	    is_admin: true
//	    can_manage_groups: true
//
// When no file is configured the four built-in demonstration accounts are
// used.
//
// # Login
//
// Service.Login provisions the user row on first sign-in, refuses inactive
// users, stamps last_login and writes a login or login_failed audit entry.
//
// # Session tokens
//
// TokenGenerator creates opaque session tokens. Only the SHA-256 hash of a
// token is used as a storage key.
package auth
