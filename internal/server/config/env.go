package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// parseEnv overlays settings from environment variables. Only variables that
// are set are applied. SESSION_TTL is a number of seconds; the other
// durations use time.ParseDuration syntax.
func parseEnv(c *Config) error {
	envString("ADDRESS", &c.EndpointAddrHTTP)
	envString("DATABASE_DSN", &c.DatabaseDSN)
	envString("STORE_TYPE", &c.StoreType)
	envString("LOGIN_DOMAIN", &c.LoginDomain)
	envString("CORS_ORIGIN", &c.CORSOrigin)
	envString("STORAGE_BACKEND", &c.StorageBackend)
	envString("S3_ROOT_USER", &c.S3RootUser)
	envString("S3_ROOT_PASSWORD", &c.S3RootPassword)
	envString("S3_BUCKET", &c.S3Bucket)
	envString("S3_REGION", &c.S3Region)
	envString("S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	envString("LOCAL_STORAGE_ROOT", &c.LocalStorageRoot)
	envString("ASSET_SECRET", &c.AssetSecret)
	envString("PUBLIC_BASE_URL", &c.PublicBaseURL)

	if v, ok := os.LookupEnv("SESSION_TTL"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = time.Duration(secs) * time.Second
	}
	if err := envDuration("SESSION_SWEEP_INTERVAL", &c.SessionSweepInterval); err != nil {
		return err
	}
	if err := envDuration("SIGNED_URL_TTL", &c.SignedURLTTL); err != nil {
		return err
	}
	if err := envInt("SALT_ROUNDS", &c.BcryptCost); err != nil {
		return err
	}
	if err := envInt("THUMBNAIL_SIZE", &c.ThumbnailSize); err != nil {
		return err
	}
	if err := envInt("LOGIN_RATE_LIMIT", &c.LoginRateLimit); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("MAX_IMAGE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_IMAGE_BYTES: %w", err)
		}
		c.MaxImageBytes = n
	}
	if v, ok := os.LookupEnv("LOG_DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEV: %w", err)
		}
		c.Debug = b
	}
	return nil
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
