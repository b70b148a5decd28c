package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"required,gt=0"`
}

// ReviewConfig contains the scheduling settings.
//
// Timezone is the single deployment-wide default zone attached to naive
// timestamps; accepted forms are IANA names ("UTC", "Asia/Shanghai") and
// fixed offsets ("+08:00"). Exactly one value applies per deployment;
// mixing zones across code paths is what the consistency repairer exists
// to clean up after.
type ReviewConfig struct {
	Timezone            string `mapstructure:"timezone" validate:"required"`
	GuestSessionMinutes int    `mapstructure:"guest_session_minutes" validate:"required,gt=0"`
}
