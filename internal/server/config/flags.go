package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fishtank/internal/flagx"
)

var serverFlags = []string{
	"-a", "-b", "-u", "-driver", "-f", "-sqlite", "-d",
	"-bucket", "-s3-key", "-region", "-endpoint", "-path-style",
	"-s", "-t", "-reset-ttl", "-cost", "-queue", "-log-level", "-log-format",
}

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-a string         HTTP bind address (e.g. ":8080")
//	-b string         public base URL for image references
//	-u string         upload directory
//	-driver string    storage driver: file, sqlite, postgres, s3, memory
//	-f string         JSON data file (file driver)
//	-sqlite string    SQLite database path (sqlite driver)
//	-d string         PostgreSQL DSN (postgres driver)
//	-bucket string    S3 bucket (s3 driver)
//	-s3-key string    S3 object key (s3 driver)
//	-region string    S3 region
//	-endpoint string  S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-path-style       S3 path-style addressing
//	-s string         bearer token HMAC secret
//	-t duration       access token validity
//	-reset-ttl duration  password reset token validity
//	-cost int         bcrypt cost
//	-queue int        serializer queue cap, 0 for unbounded
//	-log-level string
//	-log-format string  json or text
//
// args is filtered with flagx.FilterArgs first so flags meant for other
// components (such as -c) do not fail parsing.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("fishtank", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "public base URL")
	fs.StringVar(&cfg.UploadDir, "u", cfg.UploadDir, "upload directory")
	fs.StringVar(&cfg.StorageDriver, "driver", cfg.StorageDriver, "storage driver")
	fs.StringVar(&cfg.DataFile, "f", cfg.DataFile, "data file")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "sqlite database path")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.S3Bucket, "bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Key, "s3-key", cfg.S3Key, "S3 object key")
	fs.StringVar(&cfg.S3Region, "region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&cfg.S3PathStyle, "path-style", cfg.S3PathStyle, "S3 path-style addressing")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.AccessTokenValidityDuration, "t", cfg.AccessTokenValidityDuration, "access token validity")
	fs.DurationVar(&cfg.ResetTokenValidityDuration, "reset-ttl", cfg.ResetTokenValidityDuration, "reset token validity")
	fs.IntVar(&cfg.BcryptCost, "cost", cfg.BcryptCost, "bcrypt cost")
	fs.IntVar(&cfg.MaxQueueDepth, "queue", cfg.MaxQueueDepth, "serializer queue cap")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
