package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration. Durations accept
// both "15m" style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	StoreType            string         `json:"store_type"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	SessionSweepInterval timex.Duration `json:"session_sweep_interval"`
	BcryptCost           int            `json:"bcrypt_cost"`
	LoginDomain          string         `json:"login_domain"`
	CORSOrigin           string         `json:"cors_origin"`
	StorageBackend       string         `json:"storage_backend"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	LocalStorageRoot     string         `json:"local_storage_root"`
	AssetSecret          string         `json:"asset_secret"`
	PublicBaseURL        string         `json:"public_base_url"`
	SignedURLTTL         timex.Duration `json:"signed_url_ttl"`
	MaxImageBytes        int64          `json:"max_image_bytes"`
	ThumbnailSize        int            `json:"thumbnail_size"`
	LoginRateLimit       int            `json:"login_rate_limit"`
	Debug                bool           `json:"debug"`
}

// parseJson overlays the file named by -c/-config (or $CONFIG) onto config.
// Keys missing from the file keep their current values. No file is not an error.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := toJson(config)
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}
	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:     c.EndpointAddrHTTP,
		DatabaseDSN:          c.DatabaseDSN,
		StoreType:            c.StoreType,
		SessionTTL:           timex.Duration{Duration: c.SessionTTL},
		SessionSweepInterval: timex.Duration{Duration: c.SessionSweepInterval},
		BcryptCost:           c.BcryptCost,
		LoginDomain:          c.LoginDomain,
		CORSOrigin:           c.CORSOrigin,
		StorageBackend:       c.StorageBackend,
		S3RootUser:           c.S3RootUser,
		S3RootPassword:       c.S3RootPassword,
		S3Bucket:             c.S3Bucket,
		S3Region:             c.S3Region,
		S3BaseEndpoint:       c.S3BaseEndpoint,
		LocalStorageRoot:     c.LocalStorageRoot,
		AssetSecret:          c.AssetSecret,
		PublicBaseURL:        c.PublicBaseURL,
		SignedURLTTL:         timex.Duration{Duration: c.SignedURLTTL},
		MaxImageBytes:        c.MaxImageBytes,
		ThumbnailSize:        c.ThumbnailSize,
		LoginRateLimit:       c.LoginRateLimit,
		Debug:                c.Debug,
	}
}

func fromJson(c *Config, j *JsonConfig) {
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.DatabaseDSN = j.DatabaseDSN
	c.StoreType = j.StoreType
	c.SessionTTL = j.SessionTTL.Duration
	c.SessionSweepInterval = j.SessionSweepInterval.Duration
	c.BcryptCost = j.BcryptCost
	c.LoginDomain = j.LoginDomain
	c.CORSOrigin = j.CORSOrigin
	c.StorageBackend = j.StorageBackend
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.LocalStorageRoot = j.LocalStorageRoot
	c.AssetSecret = j.AssetSecret
	c.PublicBaseURL = j.PublicBaseURL
	c.SignedURLTTL = j.SignedURLTTL.Duration
	c.MaxImageBytes = j.MaxImageBytes
	c.ThumbnailSize = j.ThumbnailSize
	c.LoginRateLimit = j.LoginRateLimit
	c.Debug = j.Debug
}
