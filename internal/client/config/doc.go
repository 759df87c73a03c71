// Package config loads runtime configuration for the attachment client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: an optional .env file (godotenv; path from
//     CLUBATTACH_ENV_FILE) and CLUBATTACH_* variables.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// The merged result is checked with go-playground/validator.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s" or
// integer nanoseconds. Keys left out keep their earlier value:
//
//	{
//	  "server_url": "https://portal.example.edu/api",
//	  "online_check_interval": "5s",
//	  "storage": "http",
//	  "database_path": "clubattach.db",
//	  "max_files": 5,
//	  "max_size_bytes": 10485760,
//	  "accepted_types": ["image/*", "application/pdf"],
//	  "label": "Event attachments",
//	  "compact": false
//	}
//
// Primary API
//
//   - type Config                           - runtime settings
//   - func LoadConfig(args) (*Config, error) - defaults, env, JSON, flags, validation
//   - func (*Config) LoadDefaults()         - sets sensible defaults
package config
