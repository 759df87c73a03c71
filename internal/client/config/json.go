package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/flagx"
	"github.com/dmitrijs2005/clubattach/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from zero so a partial file only overrides what it
// names.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	AccessToken         *string         `json:"access_token"`

	Storage         *string `json:"storage"`
	S3Bucket        *string `json:"s3_bucket"`
	S3Region        *string `json:"s3_region"`
	S3Endpoint      *string `json:"s3_endpoint"`
	S3AccessKey     *string `json:"s3_access_key"`
	S3SecretKey     *string `json:"s3_secret_key"`
	S3PublicBaseURL *string `json:"s3_public_base_url"`

	DatabasePath *string `json:"database_path"`
	PreviewDir   *string `json:"preview_dir"`
	DownloadDir  *string `json:"download_dir"`

	MaxFiles      *int     `json:"max_files"`
	MaxSizeBytes  *int64   `json:"max_size_bytes"`
	AcceptedTypes []string `json:"accepted_types"`
	Label         *string  `json:"label"`
	Compact       *bool    `json:"compact"`

	LogLevel *string `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c or -config in args.
// Without either flag nothing is loaded. Read and decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	set(&cfg.ServerURL, jc.ServerURL)
	set(&cfg.AccessToken, jc.AccessToken)
	set(&cfg.Storage, jc.Storage)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3Endpoint, jc.S3Endpoint)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.PreviewDir, jc.PreviewDir)
	set(&cfg.DownloadDir, jc.DownloadDir)
	set(&cfg.MaxFiles, jc.MaxFiles)
	set(&cfg.MaxSizeBytes, jc.MaxSizeBytes)
	set(&cfg.Label, jc.Label)
	set(&cfg.Compact, jc.Compact)
	set(&cfg.LogLevel, jc.LogLevel)

	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.AcceptedTypes != nil {
		cfg.AcceptedTypes = jc.AcceptedTypes
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
