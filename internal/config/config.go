// Package config provides configuration management for the team journal.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	journalerrors "team-journal/internal/errors"
	"team-journal/internal/logging"
	"team-journal/pkg/utils"
)

// MinSecretLength is the shortest accepted JWT signing secret.
const MinSecretLength = 32

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Security SecurityConfig `mapstructure:"security"`
	Risk     RiskConfig     `mapstructure:"risk"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
	// TemplatePath is set when Load wrote a fresh config.toml.
	TemplatePath string `mapstructure:"-"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds trade store configuration.
type DatabaseConfig struct {
	Path          string        `mapstructure:"path"`
	BusyTimeoutMS int           `mapstructure:"busy_timeout_ms"`
	MaxOpenConns  int           `mapstructure:"max_open_conns"`
	QueryTimeout  time.Duration `mapstructure:"query_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// LoggingConfig holds application log configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// AuditConfig holds audit trail configuration.
type AuditConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Dir        string `mapstructure:"dir"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// SecurityConfig holds input screening configuration.
type SecurityConfig struct {
	StrictValidation bool `mapstructure:"strict_validation"`
}

// RiskConfig holds daily risk window configuration.
type RiskConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/team-journal"
	}
	return filepath.Join(home, ".config", "team-journal")
}

// ConfigPath returns the config.toml path inside configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{Dir: configDir}

	if err := loadDotEnv(configDir); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	templatePath, err := loadConfigFile(configDir, "config", cfg)
	if err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	cfg.TemplatePath = templatePath

	applyEnvOverrides(cfg)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.path", "")
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.query_timeout", "5s")
	v.SetDefault("database.retry_attempts", 3)

	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.issuer", "team-journal")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.max_size", 50)
	v.SetDefault("audit.max_backups", 30)
	v.SetDefault("audit.max_age", 365)

	v.SetDefault("security.strict_validation", false)

	v.SetDefault("risk.timezone", utils.TradingTimezone)
}

// loadConfigFile reads name.toml, writing a template first when it is missing.
// It returns the template path when one was written.
func loadConfigFile(configDir, name string, target interface{}) (string, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	var templatePath string
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return "", err
		}
		path, err := createTemplateConfig(configDir, name)
		if err != nil {
			return "", err
		}
		templatePath = path
		if err := v.ReadInConfig(); err != nil {
			return "", err
		}
	}

	return templatePath, v.Unmarshal(target)
}

// loadDotEnv loads .env from the working directory and then from the config
// directory. Variables already set in the environment win.
func loadDotEnv(configDir string) error {
	for _, path := range []string{".env", filepath.Join(configDir, ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("JOURNAL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JOURNAL_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv("JOURNAL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("JOURNAL_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("JOURNAL_TOKEN_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = ttl
		}
	}

	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("JOURNAL_AUDIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Audit.Enabled = enabled
		}
	}
}

// resolvePaths fills empty file locations relative to the config directory.
func (c *Config) resolvePaths() {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Dir, "journal.db")
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Dir, "logs", "journal.log")
	}
	if c.Audit.Dir == "" {
		c.Audit.Dir = filepath.Join(c.Dir, "audit")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", c.Server.Port, "must be between 1 and 65535")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return invalid("server.read_timeout", c.Server.ReadTimeout, "timeouts must be non-negative")
	}

	if c.Database.QueryTimeout <= 0 {
		return invalid("database.query_timeout", c.Database.QueryTimeout, "must be positive")
	}
	if c.Database.RetryAttempts < 1 {
		return invalid("database.retry_attempts", c.Database.RetryAttempts, "must be at least 1")
	}

	if len(c.Auth.JWTSecret) < MinSecretLength {
		return invalid("auth.jwt_secret", "", fmt.Sprintf("must be at least %d characters", MinSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		return invalid("auth.token_ttl", c.Auth.TokenTTL, "must be positive")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	if _, err := time.LoadLocation(c.Risk.Timezone); err != nil {
		return invalid("risk.timezone", c.Risk.Timezone, "unknown time zone")
	}

	return nil
}

// Location returns the trading-day time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Risk.Timezone)
	if err != nil {
		return utils.NewYorkLocation
	}
	return loc
}

// ListenAddr returns the host:port the API server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

func invalid(field string, value interface{}, msg string) error {
	return &journalerrors.ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
		Err:     journalerrors.ErrConfigInvalid,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
