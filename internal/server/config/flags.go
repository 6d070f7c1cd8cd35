package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-d", "-m", "-t", "-r", "-o", "-u", "-p", "-b", "-g", "-e",
	"-backend", "-root", "-s", "-base-url", "-debug",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-d string     PostgreSQL DSN
//	-m string     store type: postgres or memory
//	-t int        session ttl, minutes
//	-r int        bcrypt cost (salt rounds)
//	-o string     allowed CORS origin
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-backend      storage backend: s3 or local
//	-root         local storage root directory
//	-s string     asset URL signing secret
//	-base-url     public base URL used in local asset links
//	-debug        development logging
//
// Only these flags are looked at; -c/-config is handled by parseJson.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StoreType, "m", config.StoreType, "store type (postgres or memory)")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")
	fs.IntVar(&config.BcryptCost, "r", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.CORSOrigin, "o", config.CORSOrigin, "allowed CORS origin")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.StorageBackend, "backend", config.StorageBackend, "storage backend (s3 or local)")
	fs.StringVar(&config.LocalStorageRoot, "root", config.LocalStorageRoot, "local storage root")
	fs.StringVar(&config.AssetSecret, "s", config.AssetSecret, "asset url signing secret")
	fs.StringVar(&config.PublicBaseURL, "base-url", config.PublicBaseURL, "public base url")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "development logging")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
	return nil
}
