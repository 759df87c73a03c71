package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	resultOK     = "ok"
	resultFailed = "failed"
)

type observer struct {
	fn func(percent int)
}

// Orchestrator sends staged batches through a Transport.
type Orchestrator struct {
	transport Transport
	log       logging.Logger
	metrics   *Metrics
	tracer    trace.Tracer

	inFlight atomic.Bool

	mu  sync.Mutex
	obs *observer
}

type Option func(*Orchestrator)

func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

func New(t Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transport: t,
		log:       logging.Discard(),
		tracer:    otel.Tracer("github.com/dmitrijs2005/clubattach/upload"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetProgressObserver puts fn in the single observer slot, replacing any
// previous observer. The returned function clears the slot only if fn is
// still the registered observer.
func (o *Orchestrator) SetProgressObserver(fn func(percent int)) (unregister func()) {
	reg := &observer{fn: fn}

	o.mu.Lock()
	o.obs = reg
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		if o.obs == reg {
			o.obs = nil
		}
		o.mu.Unlock()
	}
}

func (o *Orchestrator) notify(percent int) {
	o.mu.Lock()
	reg := o.obs
	o.mu.Unlock()

	if reg != nil && reg.fn != nil {
		reg.fn(percent)
	}
}

// InFlight reports whether a batch is being sent.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Upload sends the batch in one transport call. On success every entry is
// completed with the reference at its position and the references are
// returned. On any failure every entry is moved to error and the returned
// error matches ErrTransferFailed. Entries that are no longer pending in the
// sink are dropped from the batch; a batch left empty returns immediately.
func (o *Orchestrator) Upload(ctx context.Context, b Batch) ([]models.AttachmentReference, error) {
	if b.Len() == 0 {
		return []models.AttachmentReference{}, nil
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBatchInFlight
	}
	defer o.inFlight.Store(false)

	b = b.only(b.sink.MarkUploading(b.ids()))
	if b.Len() == 0 {
		return []models.AttachmentReference{}, nil
	}

	ctx, span := o.tracer.Start(ctx, "upload.batch",
		trace.WithAttributes(
			attribute.Int("clubattach.files", b.Len()),
			attribute.Int64("clubattach.bytes", b.bytes()),
		))
	defer span.End()

	ids := b.ids()
	o.metrics.setInFlight(true)
	defer o.metrics.setInFlight(false)

	tracker := &progressTracker{notify: o.notify}
	tracker.report(0)

	start := time.Now()
	refs, err := o.transport.UploadBatch(ctx, b.raws(), tracker.onBytes)
	elapsed := time.Since(start).Seconds()

	if err == nil {
		err = checkRefs(refs, b.Len())
	}

	if err != nil {
		tracker.seal()
		if !errors.Is(err, ErrTransferFailed) {
			err = fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}

		b.sink.MarkFailed(ids, err.Error())
		o.metrics.observe(resultFailed, b.Len(), 0, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.log.Error(ctx, "batch upload failed", "files", b.Len(), "err", err)
		return nil, err
	}

	tracker.finish()

	done := make(map[string]models.AttachmentReference, len(ids))
	for i, id := range ids {
		done[id] = refs[i]
	}
	b.sink.MarkCompleted(done)

	o.metrics.observe(resultOK, b.Len(), b.bytes(), elapsed)
	span.SetStatus(codes.Ok, "")
	o.log.Info(ctx, "batch uploaded", "files", b.Len(), "bytes", b.bytes(), "seconds", elapsed)

	out := make([]models.AttachmentReference, len(refs))
	copy(out, refs)
	return out, nil
}

// checkRefs requires one complete reference per file sent.
func checkRefs(refs []models.AttachmentReference, sent int) error {
	if len(refs) != sent {
		return fmt.Errorf("%w: sent %d, got %d", ErrResponseMismatch, sent, len(refs))
	}
	for i, r := range refs {
		if r.ID == "" || r.URL == "" {
			return fmt.Errorf("%w: reference %d has no id or url", ErrResponseMismatch, i)
		}
	}
	return nil
}
