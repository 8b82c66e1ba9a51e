// Package config loads server settings: defaults, then an optional YAML
// file, then GEOJOURNAL_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevSecret используется только в development, если секрет не задан
	DevSecret = "geojournal-development-secret"
)

// Config holds runtime settings for the server.
type Config struct {
	Address         string          `yaml:"address"`
	Environment     string          `yaml:"environment"`
	Log             LogConfig       `yaml:"log"`
	Database        DatabaseConfig  `yaml:"database"`
	Auth            AuthConfig      `yaml:"auth"`
	Images          ImagesConfig    `yaml:"images"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	AMQP            AMQPConfig      `yaml:"amqp"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
}

// LogConfig настройки логирования
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DatabaseConfig selects the entry/user store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

// AuthConfig настройки токенов и паролей
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	IdentityCacheTTL time.Duration `yaml:"identity_cache_ttl"` // 0 отключает кеш
	BcryptCost       int           `yaml:"bcrypt_cost"`
}

// ImagesConfig selects where uploaded photos go.
type ImagesConfig struct {
	Backend       string   `yaml:"backend"` // fs, s3
	UploadDir     string   `yaml:"upload_dir"`
	PublicURL     string   `yaml:"public_url"`
	S3            S3Config `yaml:"s3"`
	MaxUploadSize int64    `yaml:"max_upload_size"`
}

// S3Config настройки S3-совместимого хранилища
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// RateLimitConfig limits register/login attempts per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// AMQPConfig настройки публикации событий; пустой URL отключает публикацию
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Default returns development defaults.
func Default() *Config {
	return &Config{
		Address:     ":5000",
		Environment: EnvDevelopment,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "geojournal.db",
		},
		Auth: AuthConfig{
			TokenTTL:         7 * 24 * time.Hour,
			IdentityCacheTTL: 0,
			BcryptCost:       12,
		},
		Images: ImagesConfig{
			Backend:       "fs",
			UploadDir:     "uploads",
			MaxUploadSize: 5 << 20,
		},
		RateLimit: RateLimitConfig{
			Requests: 20,
			Window:   15 * time.Minute,
		},
		AMQP: AMQPConfig{
			Exchange: "geojournal.entries",
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds a Config from args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := Default()

	if path := configPath(args, os.Getenv("GEOJOURNAL_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.JWTSecret = DevSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// IsDevelopment reports whether error responses may carry internal details.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required outside development"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.Auth.IdentityCacheTTL < 0 {
		errs = append(errs, errors.New("identity cache ttl must not be negative"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range 4..31", c.Auth.BcryptCost))
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}

	switch c.Images.Backend {
	case "fs":
		if c.Images.UploadDir == "" {
			errs = append(errs, errors.New("upload dir is required for fs image backend"))
		}
	case "s3":
		if c.Images.S3.Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is required for s3 image backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown image backend %q", c.Images.Backend))
	}
	if c.Images.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}

	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit requests and window must be positive"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
