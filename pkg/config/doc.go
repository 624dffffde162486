// Package config loads the group administration service configuration
// from GM_* environment variables and validates it.
package config
