package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		ConnectRetries  int    `yaml:"connect_retries" env:"DB_CONNECT_RETRIES"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Addr           string `yaml:"addr" env:"REDIS_ADDR"`
		Password       string `yaml:"password" env:"REDIS_PASSWORD"`
		DB             int    `yaml:"db" env:"REDIS_DB"`
		StateTTL       string `yaml:"state_ttl" env:"REDIS_STATE_TTL"`
		EntitlementTTL string `yaml:"entitlement_ttl" env:"REDIS_ENTITLEMENT_TTL"`
	} `yaml:"redis"`

	RateLimit struct {
		Enabled bool   `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		Auth    string `yaml:"auth" env:"RATE_LIMIT_AUTH"`
		Global  string `yaml:"global" env:"RATE_LIMIT_GLOBAL"`
	} `yaml:"rate_limit"`

	Payments struct {
		PriceCents    int64  `yaml:"price_cents" env:"PAYMENTS_PRICE_CENTS"`
		Currency      string `yaml:"currency" env:"PAYMENTS_CURRENCY"`
		AccessPeriod  string `yaml:"access_period" env:"PAYMENTS_ACCESS_PERIOD"`
		WebhookSecret string `yaml:"webhook_secret" env:"PAYMENTS_WEBHOOK_SECRET"`
	} `yaml:"payments"`

	Invitations struct {
		Expiry string `yaml:"expiry" env:"INVITATIONS_EXPIRY"`
	} `yaml:"invitations"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
		ClientURL string `yaml:"client_url" env:"SMTP_CLIENT_URL"`
	} `yaml:"smtp"`

	Maintenance struct {
		Enabled             bool   `yaml:"enabled" env:"MAINTENANCE_ENABLED"`
		TokenCleanupSpec    string `yaml:"token_cleanup_spec" env:"MAINTENANCE_TOKEN_CLEANUP_SPEC"`
		InvitationSweepSpec string `yaml:"invitation_sweep_spec" env:"MAINTENANCE_INVITATION_SWEEP_SPEC"`
	} `yaml:"maintenance"`

	// EnvOverrides lists the environment keys applied on top of the file
	EnvOverrides []string `yaml:"-"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; real environment variables still win over it
	_ = godotenv.Load()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "collegeprep"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.ConnectRetries = 5

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "collegeprep.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.StateTTL = "168h"
	config.Redis.EntitlementTTL = "60s"

	config.RateLimit.Enabled = true
	config.RateLimit.Auth = "20-M"
	config.RateLimit.Global = "300-M"

	config.Payments.PriceCents = 499
	config.Payments.Currency = "usd"
	config.Payments.AccessPeriod = "8760h"

	config.Invitations.Expiry = "168h"

	config.SMTP.Port = 587
	config.SMTP.FromName = "College Prep Organizer"
	config.SMTP.FromEmail = "no-reply@collegeprep.app"
	config.SMTP.ClientURL = "http://localhost:5173"

	config.Maintenance.Enabled = true
	config.Maintenance.TokenCleanupSpec = "@daily"
	config.Maintenance.InvitationSweepSpec = "@hourly"
}

// loadFromEnv overrides configuration with environment variables and
// remembers which keys were applied
func loadFromEnv(config *Config) error {
	applied, err := applyEnv(config, os.LookupEnv)
	config.EnvOverrides = applied
	return err
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"server read timeout":          config.Server.ReadTimeout,
		"server write timeout":         config.Server.WriteTimeout,
		"redis state ttl":              config.Redis.StateTTL,
		"redis entitlement ttl":        config.Redis.EntitlementTTL,
		"payments access period":       config.Payments.AccessPeriod,
		"invitation expiry":            config.Invitations.Expiry,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Payments.PriceCents <= 0 {
		return fmt.Errorf("payments price must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// Duration parses a validated duration string, falling back to def
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
