package config

import (
	"flag"
	"io"
	"strings"
)

// configPath ищет -config/--config среди аргументов до разбора остальных флагов
func configPath(args []string, fallback string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}

// parseFlags applies command-line overrides on top of the current values.
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("geojournal-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ignored string
	fs.StringVar(&ignored, "config", "", "path to YAML config file")

	fs.StringVar(&c.Address, "address", c.Address, "HTTP listen address")
	fs.StringVar(&c.Environment, "env", c.Environment, "environment: development or production")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "log format: text or json")
	fs.StringVar(&c.Database.Driver, "db-driver", c.Database.Driver, "database driver: sqlite or postgres")
	fs.StringVar(&c.Database.DSN, "db-dsn", c.Database.DSN, "database DSN or SQLite file path")
	fs.StringVar(&c.Auth.JWTSecret, "jwt-secret", c.Auth.JWTSecret, "HMAC secret for session tokens")
	fs.DurationVar(&c.Auth.TokenTTL, "token-ttl", c.Auth.TokenTTL, "session token lifetime")
	fs.DurationVar(&c.Auth.IdentityCacheTTL, "identity-cache-ttl", c.Auth.IdentityCacheTTL, "identity cache TTL, 0 disables")
	fs.IntVar(&c.Auth.BcryptCost, "bcrypt-cost", c.Auth.BcryptCost, "bcrypt cost")
	fs.StringVar(&c.Images.Backend, "image-backend", c.Images.Backend, "image store: fs or s3")
	fs.StringVar(&c.Images.UploadDir, "upload-dir", c.Images.UploadDir, "directory for the fs image store")
	fs.StringVar(&c.Images.PublicURL, "public-url", c.Images.PublicURL, "public base URL of stored images")
	fs.Int64Var(&c.Images.MaxUploadSize, "max-upload-size", c.Images.MaxUploadSize, "maximum image size in bytes")
	fs.StringVar(&c.Images.S3.Bucket, "s3-bucket", c.Images.S3.Bucket, "S3 bucket")
	fs.StringVar(&c.Images.S3.Region, "s3-region", c.Images.S3.Region, "S3 region")
	fs.StringVar(&c.Images.S3.Endpoint, "s3-endpoint", c.Images.S3.Endpoint, "S3 base endpoint")
	fs.StringVar(&c.Images.S3.AccessKey, "s3-access-key", c.Images.S3.AccessKey, "S3 access key")
	fs.StringVar(&c.Images.S3.SecretKey, "s3-secret-key", c.Images.S3.SecretKey, "S3 secret key")
	fs.IntVar(&c.RateLimit.Requests, "rate-limit", c.RateLimit.Requests, "auth requests per window per IP")
	fs.DurationVar(&c.RateLimit.Window, "rate-window", c.RateLimit.Window, "rate limit window")
	fs.StringVar(&c.AMQP.URL, "amqp-url", c.AMQP.URL, "RabbitMQ URL for entry events, empty disables")
	fs.StringVar(&c.AMQP.Exchange, "amqp-exchange", c.AMQP.Exchange, "RabbitMQ exchange for entry events")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")

	return fs.Parse(args)
}
