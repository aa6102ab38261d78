package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Approval  ApprovalConfig  `yaml:"approval"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig contains gRPC and HTTP listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	HTTPPort int    `yaml:"http_port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// EmailConfig contains notifier settings. An empty SendGrid key selects the
// log-only notifier.
type EmailConfig struct {
	SendGridAPIKey  string `yaml:"sendgrid_api_key"`
	FromEmail       string `yaml:"from_email"`
	FromName        string `yaml:"from_name"`
	ApprovalBaseURL string `yaml:"approval_base_url"`
}

// JWTConfig contains access token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// ApprovalConfig contains the sponsor-approval workflow limits
type ApprovalConfig struct {
	LinkTTLDays         int `yaml:"link_ttl_days"`
	RateLimitWindowDays int `yaml:"rate_limit_window_days"`
	RateLimitQuota      *int `yaml:"rate_limit_quota"` // 0 freezes approvals; unset means 5
	MaterializeAttempts int `yaml:"materialize_attempts"`
	SweepBatchSize      int `yaml:"sweep_batch_size"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SweepExpiredApplications string `yaml:"sweep_expired_applications"`
}

// CORSConfig contains allowed origins for the approval-link HTTP API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}
	if val := os.Getenv("APPROVAL_BASE_URL"); val != "" {
		c.Email.ApprovalBaseURL = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}

	// CORS
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORS.AllowedOrigins = strings.Split(val, ",")
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = c.Server.Port + 1
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 || c.Server.HTTPPort == c.Server.Port {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Email.SendGridAPIKey != "" && c.Email.FromEmail == "" {
		return fmt.Errorf("email from address is required when SendGrid is enabled")
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Membership Committee"
	}
	if c.Email.ApprovalBaseURL == "" {
		c.Email.ApprovalBaseURL = fmt.Sprintf("http://localhost:%d/applications", c.Server.HTTPPort)
	}

	// Approval defaults
	if c.Approval.LinkTTLDays == 0 {
		c.Approval.LinkTTLDays = 7
	}
	if c.Approval.RateLimitWindowDays == 0 {
		c.Approval.RateLimitWindowDays = 30
	}
	if c.Approval.RateLimitQuota == nil {
		quota := 5
		c.Approval.RateLimitQuota = &quota
	}
	if c.Approval.MaterializeAttempts == 0 {
		c.Approval.MaterializeAttempts = 3
	}
	if c.Approval.SweepBatchSize == 0 {
		c.Approval.SweepBatchSize = 500
	}
	if c.Approval.LinkTTLDays < 0 || c.Approval.RateLimitWindowDays < 0 || *c.Approval.RateLimitQuota < 0 ||
		c.Approval.MaterializeAttempts < 0 || c.Approval.SweepBatchSize < 0 {
		return fmt.Errorf("approval settings must not be negative")
	}

	// Scheduler defaults
	if c.Scheduler.SweepExpiredApplications == "" {
		c.Scheduler.SweepExpiredApplications = "0 */15 * * * *" // every 15 minutes
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the approval-link HTTP server address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

func (a ApprovalConfig) LinkTTL() time.Duration {
	return time.Duration(a.LinkTTLDays) * 24 * time.Hour
}

func (a ApprovalConfig) RateLimitWindow() time.Duration {
	return time.Duration(a.RateLimitWindowDays) * 24 * time.Hour
}

func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.AccessTokenExpiry) * time.Minute
}
