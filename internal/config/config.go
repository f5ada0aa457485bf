// Package config loads server and CLI configuration with viper.
//
// Priority (highest to lowest):
//  1. Environment variables (PORT, DB_PATH, JWT_SECRET, ...)
//  2. The file named by CONFIG_FILE (YAML, TOML or JSON)
//  3. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all server configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	GitHub    GitHubConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// GitHubConfig is optional; GitHub login is disabled when ClientID is empty.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

func (g GitHubConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type LogConfig struct {
	Level string // debug, info, warn, error
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig throttles the login and register endpoints per client IP.
type RateLimitConfig struct {
	LoginPerSecond float64
	LoginBurst     int
}

// ClientConfig configures the pinctl CLI and the API client it builds.
type ClientConfig struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.port":             "PORT",
	"server.read_timeout":     "READ_TIMEOUT",
	"server.write_timeout":    "WRITE_TIMEOUT",
	"server.idle_timeout":     "IDLE_TIMEOUT",
	"server.shutdown_timeout": "SHUTDOWN_TIMEOUT",
	"database.path":           "DB_PATH",
	"auth.jwt_secret":         "JWT_SECRET",
	"auth.token_ttl":          "TOKEN_TTL",
	"github.client_id":        "GITHUB_CLIENT_ID",
	"github.client_secret":    "GITHUB_CLIENT_SECRET",
	"github.callback_url":     "GITHUB_CALLBACK_URL",
	"log.level":               "LOG_LEVEL",
	"cors.allowed_origins":    "CORS_ORIGINS",
	"rate_limit.login_rps":    "LOGIN_RATE_PER_SEC",
	"rate_limit.login_burst":  "LOGIN_BURST",
	"client.api_url":          "PINBOARD_API_URL",
	"client.session_file":     "PINBOARD_SESSION_FILE",
	"client.timeout":          "PINBOARD_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.path", "data/pinboard.db")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("github.callback_url", "http://localhost:8080/auth/github/callback")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.login_rps", 1.0)
	v.SetDefault("rate_limit.login_burst", 5)
	v.SetDefault("client.api_url", "http://localhost:8080/api")
	v.SetDefault("client.session_file", "")
	v.SetDefault("client.timeout", 10*time.Second)
}

// newViper builds a viper instance with defaults, the optional config file
// and environment bindings applied.
func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", env, err)
		}
	}
	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("config: binding CONFIG_FILE: %w", err)
	}

	if configFile == "" {
		configFile = v.GetString("config_file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load reads the server configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		GitHub: GitHubConfig{
			ClientID:     v.GetString("github.client_id"),
			ClientSecret: v.GetString("github.client_secret"),
			CallbackURL:  v.GetString("github.callback_url"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("cors.allowed_origins")),
		},
		RateLimit: RateLimitConfig{
			LoginPerSecond: v.GetFloat64("rate_limit.login_rps"),
			LoginBurst:     v.GetInt("rate_limit.login_burst"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads the CLI configuration. configFile may be empty.
func LoadClient(configFile string) (*ClientConfig, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	cfg := &ClientConfig{
		APIURL:      strings.TrimRight(v.GetString("client.api_url"), "/"),
		SessionFile: v.GetString("client.session_file"),
		Timeout:     v.GetDuration("client.timeout"),
	}
	if cfg.APIURL == "" {
		return nil, errors.New("config: PINBOARD_API_URL must not be empty")
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("config: DB_PATH must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// splitList accepts both list values from config files and a single
// comma-separated environment variable.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
