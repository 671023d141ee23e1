package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	View     ViewConfig     `mapstructure:"view" validate:"required"`
	Rollover RolloverConfig `mapstructure:"rollover" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// AdminPasswordHash is the bcrypt hash guarding the operational
	// endpoints. When empty those endpoints are disabled entirely.
	// Generate a hash with cmd/hashgen.
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"omitempty,min=32"`
}

// ViewConfig tunes the filtered view result cache.
type ViewConfig struct {
	// CacheTTLSeconds bounds how stale a cached filter result may get.
	// Entries also fall out on any preference write or day rollover, so
	// this only caps staleness from task writes that bypass this process.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"gte=0"`

	// CacheSize caps the number of cached results across all users.
	CacheSize int `mapstructure:"cache_size" validate:"required,gt=0"`
}

// RolloverConfig tunes the midnight rollover scheduler.
type RolloverConfig struct {
	// RefreshTimeoutSeconds bounds the per-user refresh work triggered
	// when a timer fires.
	RefreshTimeoutSeconds int `mapstructure:"refresh_timeout_seconds" validate:"required,gt=0"`

	// MidnightSlackMinutes is the half-width of the window around local
	// midnight within which a fire is considered on time.
	MidnightSlackMinutes int `mapstructure:"midnight_slack_minutes" validate:"required,gt=0"`
}
