package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/flagx"
	"github.com/dmitrijs2005/fishtank/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout. It uses timex.Duration for lifetimes so
// they may be written as "15m" or as integer nanoseconds. It is seeded from
// the current Config, so keys absent from the file keep their value.
type fileConfig struct {
	ListenAddr     string `json:"listen_addr" yaml:"listen_addr"`
	BaseURL        string `json:"base_url" yaml:"base_url"`
	UploadDir      string `json:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes int64  `json:"max_upload_bytes" yaml:"max_upload_bytes"`

	StorageDriver string `json:"storage_driver" yaml:"storage_driver"`
	DataFile      string `json:"data_file" yaml:"data_file"`
	SQLitePath    string `json:"sqlite_path" yaml:"sqlite_path"`
	DatabaseDSN   string `json:"database_dsn" yaml:"database_dsn"`

	S3Bucket          string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Key             string `json:"s3_key" yaml:"s3_key"`
	S3Region          string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3AccessKeyID     string `json:"s3_access_key_id" yaml:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key" yaml:"s3_secret_access_key"`
	S3PathStyle       bool   `json:"s3_path_style" yaml:"s3_path_style"`

	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	ResetTokenValidityDuration  timex.Duration `json:"reset_token_validity_duration" yaml:"reset_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`

	MaxQueueDepth   int            `json:"max_queue_depth" yaml:"max_queue_depth"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// parseFile overlays the file named by -c/-config. Files ending in .yaml or
// .yml are YAML; anything else is JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := toFile(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func toFile(c *Config) *fileConfig {
	return &fileConfig{
		ListenAddr:                  c.ListenAddr,
		BaseURL:                     c.BaseURL,
		UploadDir:                   c.UploadDir,
		MaxUploadBytes:              c.MaxUploadBytes,
		StorageDriver:               c.StorageDriver,
		DataFile:                    c.DataFile,
		SQLitePath:                  c.SQLitePath,
		DatabaseDSN:                 c.DatabaseDSN,
		S3Bucket:                    c.S3Bucket,
		S3Key:                       c.S3Key,
		S3Region:                    c.S3Region,
		S3BaseEndpoint:              c.S3BaseEndpoint,
		S3AccessKeyID:               c.S3AccessKeyID,
		S3SecretAccessKey:           c.S3SecretAccessKey,
		S3PathStyle:                 c.S3PathStyle,
		SecretKey:                   c.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: c.AccessTokenValidityDuration},
		ResetTokenValidityDuration:  timex.Duration{Duration: c.ResetTokenValidityDuration},
		BcryptCost:                  c.BcryptCost,
		MaxQueueDepth:               c.MaxQueueDepth,
		ShutdownTimeout:             timex.Duration{Duration: c.ShutdownTimeout},
		LogLevel:                    c.LogLevel,
		LogFormat:                   c.LogFormat,
	}
}

func (f *fileConfig) apply(c *Config) {
	c.ListenAddr = f.ListenAddr
	c.BaseURL = f.BaseURL
	c.UploadDir = f.UploadDir
	c.MaxUploadBytes = f.MaxUploadBytes
	c.StorageDriver = f.StorageDriver
	c.DataFile = f.DataFile
	c.SQLitePath = f.SQLitePath
	c.DatabaseDSN = f.DatabaseDSN
	c.S3Bucket = f.S3Bucket
	c.S3Key = f.S3Key
	c.S3Region = f.S3Region
	c.S3BaseEndpoint = f.S3BaseEndpoint
	c.S3AccessKeyID = f.S3AccessKeyID
	c.S3SecretAccessKey = f.S3SecretAccessKey
	c.S3PathStyle = f.S3PathStyle
	c.SecretKey = f.SecretKey
	c.AccessTokenValidityDuration = f.AccessTokenValidityDuration.Duration
	c.ResetTokenValidityDuration = f.ResetTokenValidityDuration.Duration
	c.BcryptCost = f.BcryptCost
	c.MaxQueueDepth = f.MaxQueueDepth
	c.ShutdownTimeout = f.ShutdownTimeout.Duration
	c.LogLevel = f.LogLevel
	c.LogFormat = f.LogFormat
}
