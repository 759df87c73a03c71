package widget

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/preview"
	"github.com/dmitrijs2005/clubattach/internal/client/staging"
	"github.com/dmitrijs2005/clubattach/internal/client/upload"
	"github.com/dmitrijs2005/clubattach/internal/logging"
	"github.com/samber/lo"
)

// HostForm is the form that owns the attachments.
type HostForm interface {
	OnFilesChange(files []models.StagedFile)
}

// HostFormFunc adapts a function to HostForm.
type HostFormFunc func(files []models.StagedFile)

func (f HostFormFunc) OnFilesChange(files []models.StagedFile) { f(files) }

// Uploader is the part of upload.Orchestrator the widget drives.
type Uploader interface {
	Upload(ctx context.Context, b upload.Batch) ([]models.AttachmentReference, error)
	SetProgressObserver(fn func(percent int)) (unregister func())
}

// Rejection names a file that was not staged and why.
type Rejection struct {
	Name string
	Err  error
}

// Selection is the outcome of Select.
type Selection struct {
	Staged   []models.StagedFile
	Rejected []Rejection
}

// Item is one rendered row of the widget.
type Item struct {
	File    models.StagedFile
	Icon    string
	Size    string
	Preview preview.Resolution
}

type AttachmentWidget struct {
	cfg      Config
	store    *staging.Store
	uploader Uploader
	resolver *preview.Resolver
	log      logging.Logger

	uploading atomic.Bool
	progress  atomic.Int32
}

type Option func(*options)

type options struct {
	previews staging.PreviewProvider
	log      logging.Logger
}

func WithPreviews(p staging.PreviewProvider) Option {
	return func(o *options) { o.previews = p }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// NewAttachmentWidget validates cfg and starts an empty session.
func NewAttachmentWidget(cfg Config, up Uploader, resolver *preview.Resolver, host HostForm, opts ...Option) (*AttachmentWidget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	storeOpts := []staging.Option{staging.WithLogger(o.log)}
	if o.previews != nil {
		storeOpts = append(storeOpts, staging.WithPreviews(o.previews))
	}
	if host != nil {
		storeOpts = append(storeOpts, staging.WithOnChange(host.OnFilesChange))
	}

	return &AttachmentWidget{
		cfg:      cfg,
		store:    staging.New(cfg.MaxFiles, storeOpts...),
		uploader: up,
		resolver: resolver,
		log:      o.log,
	}, nil
}

// Select filters files by size and type, stages as many as fit and reports
// every file left out.
func (w *AttachmentWidget) Select(files []models.RawFile) Selection {
	var sel Selection
	accepted := make([]models.RawFile, 0, len(files))

	for _, f := range files {
		switch {
		case f.Size > w.cfg.MaxSizeBytes:
			sel.Rejected = append(sel.Rejected, Rejection{Name: f.Name,
				Err: fmt.Errorf("%w: %w (%s > %s)", ErrSelectionRejected, ErrTooLarge,
					filekind.FormatSize(f.Size), filekind.FormatSize(w.cfg.MaxSizeBytes))})
		case !w.cfg.Accepts(f):
			sel.Rejected = append(sel.Rejected, Rejection{Name: f.Name,
				Err: fmt.Errorf("%w: %w (%s)", ErrSelectionRejected, ErrTypeNotAccepted, f.MimeType)})
		default:
			accepted = append(accepted, f)
		}
	}

	room := w.store.Remaining()
	if len(accepted) > room {
		for _, f := range accepted[room:] {
			sel.Rejected = append(sel.Rejected, Rejection{Name: f.Name,
				Err: fmt.Errorf("%w: limit is %d", ErrCapacityExceeded, w.cfg.MaxFiles)})
		}
		accepted = accepted[:room]
	}

	for _, r := range sel.Rejected {
		w.log.Warn(context.Background(), "file not staged", "file", r.Name, "reason", r.Err)
	}

	if len(accepted) > 0 {
		session := w.store.Add(accepted)
		sel.Staged = session[len(session)-len(accepted):]
	}

	return sel
}

// Remove unstages the entry with id. It fails while a batch is in flight.
func (w *AttachmentWidget) Remove(id string) ([]models.StagedFile, error) {
	if w.uploading.Load() {
		return w.store.Snapshot(), staging.ErrUploadInFlight
	}
	return w.store.Remove(id)
}

// Submit uploads every pending entry as one batch and returns the new
// references. With nothing pending it returns an empty result without any
// network call.
func (w *AttachmentWidget) Submit(ctx context.Context) ([]models.AttachmentReference, error) {
	if !w.uploading.CompareAndSwap(false, true) {
		return nil, upload.ErrBatchInFlight
	}
	defer w.uploading.Store(false)

	pending := w.store.Pending()
	if len(pending) == 0 {
		return []models.AttachmentReference{}, nil
	}

	w.progress.Store(0)
	unregister := w.uploader.SetProgressObserver(func(p int) { w.progress.Store(int32(p)) })
	defer unregister()

	return w.uploader.Upload(ctx, upload.NewBatch(pending, w.store))
}

// Retry moves failed entries back to pending and submits again.
func (w *AttachmentWidget) Retry(ctx context.Context) ([]models.AttachmentReference, error) {
	if w.uploading.Load() {
		return nil, upload.ErrBatchInFlight
	}
	w.store.ResetFailed()
	return w.Submit(ctx)
}

// Progress is the last reported percentage of the current or last batch.
func (w *AttachmentWidget) Progress() int {
	return int(w.progress.Load())
}

func (w *AttachmentWidget) Uploading() bool {
	return w.uploading.Load()
}

// Files returns the session.
func (w *AttachmentWidget) Files() []models.StagedFile {
	return w.store.Snapshot()
}

// Attachments returns the references of every completed entry, in staging
// order.
func (w *AttachmentWidget) Attachments() []models.AttachmentReference {
	done := lo.Filter(w.store.Snapshot(), func(f models.StagedFile, _ int) bool { return f.Persisted() })
	return lo.Map(done, func(f models.StagedFile, _ int) models.AttachmentReference { return f.Reference() })
}

// Items returns the session ready for display with thumbnails of the given
// size.
func (w *AttachmentWidget) Items(width, height int) []Item {
	return lo.Map(w.store.Snapshot(), func(f models.StagedFile, _ int) Item {
		return Item{
			File:    f,
			Icon:    filekind.Icon(f.Kind),
			Size:    filekind.FormatSize(f.Raw.Size),
			Preview: w.resolver.ForStaged(f, width, height),
		}
	})
}

// Render writes the session as text.
func (w *AttachmentWidget) Render(out io.Writer) error {
	var b strings.Builder

	label := w.cfg.Label
	if label == "" {
		label = "Attachments"
	}
	items := w.Items(preview.DefaultWidth, preview.DefaultHeight)
	fmt.Fprintf(&b, "%s (%d/%d)\n", label, len(items), w.cfg.MaxFiles)

	if w.uploading.Load() {
		fmt.Fprintf(&b, "  uploading... %d%%\n", w.Progress())
	}

	if len(items) == 0 {
		b.WriteString("  no files selected\n")
	}

	for i, it := range items {
		if w.cfg.Compact {
			fmt.Fprintf(&b, "  %s %s (%s)\n", it.Icon, it.File.Raw.Name, it.File.Status)
			continue
		}
		fmt.Fprintf(&b, "  %d. %s %-30s %10s  %-9s %s\n", i+1, it.Icon, it.File.Raw.Name, it.Size, it.File.Status, it.File.ID)
		if it.File.Err != "" {
			fmt.Fprintf(&b, "     error: %s\n", it.File.Err)
		}
		if it.Preview.Available() {
			fmt.Fprintf(&b, "     preview: %s\n", it.Preview.ThumbnailURL)
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// Close ends the session and releases local previews.
func (w *AttachmentWidget) Close() {
	w.store.Close()
}
