package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	var c Config
	c.LoadDefaults()
	return &c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.ServerURL)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, StorageHTTP, c.Storage)
	assert.Equal(t, 5, c.MaxFiles)
	assert.Equal(t, int64(10<<20), c.MaxSizeBytes)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad url", func(c *Config) { c.ServerURL = "not a url" }},
		{"zero max files", func(c *Config) { c.MaxFiles = 0 }},
		{"negative size", func(c *Config) { c.MaxSizeBytes = -1 }},
		{"unknown storage", func(c *Config) { c.Storage = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Storage = StorageS3 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero interval", func(c *Config) { c.OnlineCheckInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}

	c := defaults()
	c.Storage, c.S3Bucket = StorageS3, "club-files"
	require.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLUBATTACH_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CLUBATTACH_LABEL", "from env")
	t.Setenv("CLUBATTACH_MAX_FILES", "7")

	jsonPath := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"max_files": 9, "server_url": "https://portal.example.edu/api"}`), 0o600))

	cfg, err := LoadConfig([]string{"-c", jsonPath, "-max-files", "3", "-unknown", "x"})
	require.NoError(t, err)

	assert.Equal(t, "from env", cfg.Label)
	assert.Equal(t, "https://portal.example.edu/api", cfg.ServerURL)
	assert.Equal(t, 3, cfg.MaxFiles)
}

func TestLoadConfig_InvalidResult(t *testing.T) {
	t.Setenv("CLUBATTACH_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := LoadConfig([]string{"-s", "s3"})
	require.Error(t, err)
}
