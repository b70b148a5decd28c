// Package config loads and validates application configuration from
// environment variables and optional config files via viper. All settings
// are grouped by concern (server, database, auth, review) and validated
// with go-playground/validator struct tags before the application starts.
package config
