package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/common"
	"github.com/joho/godotenv"
)

// parseEnv loads the .env file named by CLUBATTACH_ENV_FILE (default ".env")
// when it exists, then overlays every CLUBATTACH_* variable that is set.
// Variables already present in the process environment win over the file.
func parseEnv(cfg *Config) {
	file := os.Getenv(common.EnvPrefix + "ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(common.EnvPrefix + key); ok {
			*dst = v
		}
	}

	str("SERVER_URL", &cfg.ServerURL)
	str("ACCESS_TOKEN", &cfg.AccessToken)
	str("STORAGE", &cfg.Storage)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3Endpoint)
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_PUBLIC_BASE_URL", &cfg.S3PublicBaseURL)
	str("DATABASE_PATH", &cfg.DatabasePath)
	str("PREVIEW_DIR", &cfg.PreviewDir)
	str("DOWNLOAD_DIR", &cfg.DownloadDir)
	str("LABEL", &cfg.Label)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup(common.EnvPrefix + "ONLINE_CHECK_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.OnlineCheckInterval = d
	}
	if v, ok := lookup(common.EnvPrefix + "MAX_FILES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.MaxFiles = n
	}
	if v, ok := lookup(common.EnvPrefix + "MAX_SIZE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		cfg.MaxSizeBytes = n
	}
	if v, ok := lookup(common.EnvPrefix + "COMPACT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.Compact = b
	}
	if v, ok := lookup(common.EnvPrefix + "ACCEPTED_TYPES"); ok {
		cfg.AcceptedTypes = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
