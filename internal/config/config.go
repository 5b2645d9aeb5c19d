// Package config loads application configuration from the environment.
// A .env file is honored when present; explicit environment variables win.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL           string `mapstructure:"url"`
	MaxConns      int32  `mapstructure:"max_conns"`
	MinConns      int32  `mapstructure:"min_conns"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	Expiration time.Duration `mapstructure:"expiration"`
	Secure     bool          `mapstructure:"secure"`
}

// LimitsConfig holds rate-limit and input-size settings for the API.
type LimitsConfig struct {
	LoginPerMinute      int           `mapstructure:"login_per_minute"`
	TransitionPerMinute int           `mapstructure:"transition_per_minute"`
	MaxTitleLength      int           `mapstructure:"max_title_length"`
	MaxContentLength    int           `mapstructure:"max_content_length"`
	QueryTimeout        time.Duration `mapstructure:"query_timeout"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine; deployments set real environment variables.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("projectdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// DATABASE_URL and PORT are conventional names; honor them without the prefix.
	_ = v.BindEnv("database.url", "PROJECTDESK_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.port", "PROJECTDESK_SERVER_PORT", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("session.cookie_name", "projectdesk_session")
	v.SetDefault("session.expiration", 8*time.Hour)
	v.SetDefault("session.secure", true)

	v.SetDefault("limits.login_per_minute", 5)
	v.SetDefault("limits.transition_per_minute", 30)
	v.SetDefault("limits.max_title_length", 200)
	v.SetDefault("limits.max_content_length", 1024*1024)
	v.SetDefault("limits.query_timeout", 30*time.Second)

	v.SetDefault("logger.output_path", "logs/projectdesk.log")
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Limits.LoginPerMinute <= 0 {
		return fmt.Errorf("limits.login_per_minute must be positive, got %d", c.Limits.LoginPerMinute)
	}
	if c.Limits.TransitionPerMinute <= 0 {
		return fmt.Errorf("limits.transition_per_minute must be positive, got %d", c.Limits.TransitionPerMinute)
	}
	return nil
}
