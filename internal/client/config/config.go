package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StorageHTTP = "http"
	StorageS3   = "s3"
)

// Config holds runtime settings for the attachment client.
type Config struct {
	ServerURL           string        `validate:"required,url"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`
	AccessToken         string

	Storage         string `validate:"oneof=http s3"`
	S3Bucket        string `validate:"required_if=Storage s3"`
	S3Region        string
	S3Endpoint      string `validate:"omitempty,url"`
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string `validate:"omitempty,url"`

	DatabasePath string `validate:"required"`
	PreviewDir   string
	DownloadDir  string

	MaxFiles      int   `validate:"gt=0"`
	MaxSizeBytes  int64 `validate:"gt=0"`
	AcceptedTypes []string
	Label         string
	Compact       bool

	LogLevel string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/api"
	c.OnlineCheckInterval = 3 * time.Second
	c.Storage = StorageHTTP
	c.S3Region = "us-east-1"
	c.DatabasePath = "clubattach.db"
	c.MaxFiles = 5
	c.MaxSizeBytes = 10 << 20
	c.Label = "Attachments"
	c.LogLevel = "info"
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the environment (including an
// optional .env file), a JSON file and finally command-line flags; later
// sources win. args are the command-line arguments without the program name.
// Malformed input panics, as the client cannot start without a config.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg, args)
	parseFlags(cfg, args)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
