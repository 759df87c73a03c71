package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    func(c *Config)
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "overrides",
			args: []string{"-a", "https://portal.example.edu/api", "-i", "10", "-max-files=2", "-accept", "image/*,.pdf", "-compact=true"},
			expected: func(c *Config) {
				c.ServerURL = "https://portal.example.edu/api"
				c.OnlineCheckInterval = 10 * time.Second
				c.MaxFiles = 2
				c.AcceptedTypes = []string{"image/*", ".pdf"}
				c.Compact = true
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "conf.json", "-v"},
			expected: func(c *Config) {},
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			want := defaults()
			tt.expected(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}
