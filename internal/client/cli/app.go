package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/clubattach/internal/client/client"
	"github.com/dmitrijs2005/clubattach/internal/client/config"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/preview"
	"github.com/dmitrijs2005/clubattach/internal/client/services"
	"github.com/dmitrijs2005/clubattach/internal/client/staging"
	"github.com/dmitrijs2005/clubattach/internal/client/storage/s3store"
	"github.com/dmitrijs2005/clubattach/internal/client/upload"
	"github.com/dmitrijs2005/clubattach/internal/client/widget"
	"github.com/dmitrijs2005/clubattach/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const defaultRecord = "draft"

// tokenSetter is implemented by collaborators that authenticate with a
// bearer token.
type tokenSetter interface {
	SetAccessToken(token string)
}

type App struct {
	config *config.Config
	log    logging.Logger

	db           *sql.DB
	remote       client.Client
	tokens       tokenSetter
	registry     *prometheus.Registry
	orchestrator *upload.Orchestrator
	resolver     *preview.Resolver
	previews     staging.PreviewProvider
	attachments  services.AttachmentService

	mu     sync.Mutex
	mode   Mode
	record string
	staged int
	widget *widget.AttachmentWidget

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local cache, builds the configured collaborator and
// starts an empty session for the default record.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, logging.ParseLevel(c.LogLevel))

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	remote, tokens, err := newRemote(ctx, c, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	previews, err := staging.NewDirPreviews(c.PreviewDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := newApp(c, log, db, remote, previews)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.tokens = tokens
	return a, nil
}

func newRemote(ctx context.Context, c *config.Config, log logging.Logger) (client.Client, tokenSetter, error) {
	switch c.Storage {
	case config.StorageS3:
		st, err := s3store.New(ctx, s3store.Config{
			Bucket:        c.S3Bucket,
			Region:        c.S3Region,
			Endpoint:      c.S3Endpoint,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			PublicBaseURL: c.S3PublicBaseURL,
		}, s3store.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	default:
		hc, err := client.NewHTTPClient(c.ServerURL,
			client.WithAccessToken(c.AccessToken, nil),
			client.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return hc, hc, nil
	}
}

func newApp(c *config.Config, log logging.Logger, db *sql.DB, remote client.Client, previews staging.PreviewProvider) (*App, error) {
	reg := prometheus.NewRegistry()

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		remote:   remote,
		registry: reg,
		orchestrator: upload.New(remote,
			upload.WithLogger(log),
			upload.WithMetrics(upload.NewMetrics(reg))),
		resolver:    preview.NewResolver(remote),
		previews:    previews,
		attachments: services.NewAttachmentService(db, remote, log),
		mode:        ModeOnline,
		record:      defaultRecord,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	w, err := a.newWidget()
	if err != nil {
		return nil, err
	}
	a.widget = w
	return a, nil
}

func (a *App) newWidget() (*widget.AttachmentWidget, error) {
	return widget.NewAttachmentWidget(widget.Config{
		MaxFiles:      a.config.MaxFiles,
		MaxSizeBytes:  a.config.MaxSizeBytes,
		AcceptedTypes: a.config.AcceptedTypes,
		Label:         a.config.Label,
		Compact:       a.config.Compact,
	}, a.orchestrator, a.resolver, a, widget.WithPreviews(a.previews), widget.WithLogger(a.log))
}

// OnFilesChange receives every session change from the widget.
func (a *App) OnFilesChange(files []models.StagedFile) {
	a.mu.Lock()
	a.staged = len(files)
	record := a.record
	a.mu.Unlock()

	a.log.Debug(context.Background(), "session changed", "record", record, "files", len(files))
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) currentRecord() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.record
}

func (a *App) session() *widget.AttachmentWidget {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fmt.Sprintf("(%s, %d staged, %s)", a.record, a.staged, a.mode)
}

// Run starts the connectivity watcher and the REPL, and releases the
// session and the cache when the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	printlnFn("Welcome to clubattach (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() {
	a.session().Close()
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "error closing database", "error", err)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.remote.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
