package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "GEOJOURNAL_"

type lookupFunc func(key string) (string, bool)

// loadEnv переопределяет значения из переменных окружения GEOJOURNAL_*
func (c *Config) loadEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"ADDRESS":       &c.Address,
		"ENVIRONMENT":   &c.Environment,
		"LOG_LEVEL":     &c.Log.Level,
		"LOG_FORMAT":    &c.Log.Format,
		"DB_DRIVER":     &c.Database.Driver,
		"DB_DSN":        &c.Database.DSN,
		"JWT_SECRET":    &c.Auth.JWTSecret,
		"IMAGE_BACKEND": &c.Images.Backend,
		"UPLOAD_DIR":    &c.Images.UploadDir,
		"PUBLIC_URL":    &c.Images.PublicURL,
		"S3_BUCKET":     &c.Images.S3.Bucket,
		"S3_REGION":     &c.Images.S3.Region,
		"S3_ENDPOINT":   &c.Images.S3.Endpoint,
		"S3_ACCESS_KEY": &c.Images.S3.AccessKey,
		"S3_SECRET_KEY": &c.Images.S3.SecretKey,
		"AMQP_URL":      &c.AMQP.URL,
		"AMQP_EXCHANGE": &c.AMQP.Exchange,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TOKEN_TTL":          &c.Auth.TokenTTL,
		"IDENTITY_CACHE_TTL": &c.Auth.IdentityCacheTTL,
		"RATE_LIMIT_WINDOW":  &c.RateLimit.Window,
		"SHUTDOWN_TIMEOUT":   &c.ShutdownTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"BCRYPT_COST":         &c.Auth.BcryptCost,
		"RATE_LIMIT_REQUESTS": &c.RateLimit.Requests,
	}
	for name, dst := range ints {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := lookup(envPrefix + "MAX_UPLOAD_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_SIZE: %w", envPrefix, err)
		}
		c.Images.MaxUploadSize = n
	}

	return nil
}
