package config

import (
	"flag"
	"strings"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/flagx"
)

var knownFlags = []string{
	"-a", "-i", "-s", "-d", "-t",
	"-bucket", "-preview-dir", "-download-dir",
	"-max-files", "-max-size", "-accept", "-label", "-compact", "-log-level",
}

// parseFlags overlays cfg with command-line flags.
//
//	-a string        base URL of the portal's file API
//	-i int           online check interval (seconds)
//	-s string        storage backend: http or s3
//	-d string        path of the local SQLite cache
//	-t string        access token
//	-bucket string   S3 bucket (s3 storage)
//	-preview-dir     directory for local image previews
//	-download-dir    directory for downloads
//	-max-files int   files per record
//	-max-size int    bytes per file
//	-accept string   comma-separated accepted types ("image/*,.pdf")
//	-label string    widget label
//	-compact         compact listing
//	-log-level       debug, info, warn or error
//
// args are filtered through flagx.FilterArgs so flags owned by other layers
// (-c/-config) do not abort the parse. Parse errors panic.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the file API")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "storage backend: http or s3")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local cache database path")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.S3Bucket, "bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.PreviewDir, "preview-dir", cfg.PreviewDir, "preview directory")
	fs.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "download directory")
	fs.IntVar(&cfg.MaxFiles, "max-files", cfg.MaxFiles, "maximum files per record")
	fs.Int64Var(&cfg.MaxSizeBytes, "max-size", cfg.MaxSizeBytes, "maximum file size in bytes")
	accept := fs.String("accept", strings.Join(cfg.AcceptedTypes, ","), "accepted types")
	fs.StringVar(&cfg.Label, "label", cfg.Label, "widget label")
	fs.BoolVar(&cfg.Compact, "compact", cfg.Compact, "compact listing")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	cfg.AcceptedTypes = splitList(*accept)
}
