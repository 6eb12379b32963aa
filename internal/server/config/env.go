package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays environment variables. PORT, BASE_URL and DATA_FILE keep
// the names used by existing deployments; everything else is FISHTANK_*.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		cfg.ListenAddr = ":" + port
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"FISHTANK_LISTEN_ADDR", &cfg.ListenAddr},
		{"BASE_URL", &cfg.BaseURL},
		{"FISHTANK_UPLOAD_DIR", &cfg.UploadDir},
		{"FISHTANK_STORAGE_DRIVER", &cfg.StorageDriver},
		{"DATA_FILE", &cfg.DataFile},
		{"FISHTANK_SQLITE_PATH", &cfg.SQLitePath},
		{"FISHTANK_DATABASE_DSN", &cfg.DatabaseDSN},
		{"FISHTANK_S3_BUCKET", &cfg.S3Bucket},
		{"FISHTANK_S3_KEY", &cfg.S3Key},
		{"FISHTANK_S3_REGION", &cfg.S3Region},
		{"FISHTANK_S3_ENDPOINT", &cfg.S3BaseEndpoint},
		{"FISHTANK_S3_ACCESS_KEY_ID", &cfg.S3AccessKeyID},
		{"FISHTANK_S3_SECRET_ACCESS_KEY", &cfg.S3SecretAccessKey},
		{"FISHTANK_SECRET_KEY", &cfg.SecretKey},
		{"FISHTANK_LOG_LEVEL", &cfg.LogLevel},
		{"FISHTANK_LOG_FORMAT", &cfg.LogFormat},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"FISHTANK_ACCESS_TOKEN_TTL", &cfg.AccessTokenValidityDuration},
		{"FISHTANK_RESET_TOKEN_TTL", &cfg.ResetTokenValidityDuration},
		{"FISHTANK_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"FISHTANK_BCRYPT_COST", &cfg.BcryptCost},
		{"FISHTANK_MAX_QUEUE_DEPTH", &cfg.MaxQueueDepth},
	}
	for _, n := range ints {
		v, ok := lookup(n.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", n.key, err)
		}
		*n.dst = parsed
	}

	if v, ok := lookup("FISHTANK_S3_PATH_STYLE"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FISHTANK_S3_PATH_STYLE: %w", err)
		}
		cfg.S3PathStyle = parsed
	}
	return nil
}
