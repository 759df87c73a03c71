package upload

import (
	"context"

	"github.com/samber/lo"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
)

// ProgressFunc reports bytes sent so far out of total.
type ProgressFunc func(sent, total int64)

// Transport performs the batch network call. The returned references must be
// in the same order as files.
type Transport interface {
	UploadBatch(ctx context.Context, files []models.RawFile, progress ProgressFunc) ([]models.AttachmentReference, error)
}

// Sink receives status changes for the entries of a batch. Each call is one
// logical step. MarkUploading returns the ids that were still pending and
// are now owned by the batch. staging.Store implements it.
type Sink interface {
	MarkUploading(ids []string) []string
	MarkCompleted(refs map[string]models.AttachmentReference)
	MarkFailed(ids []string, reason string)
}

// Batch is an immutable snapshot of the pending entries to send.
type Batch struct {
	files []models.StagedFile
	sink  Sink
}

// NewBatch keeps the pending entries of files. The slice is copied so later
// session changes do not affect the batch.
func NewBatch(files []models.StagedFile, sink Sink) Batch {
	cp := lo.Filter(files, func(f models.StagedFile, _ int) bool {
		return f.Status == models.StatusPending
	})
	return Batch{files: cp, sink: sink}
}

// only narrows the batch to the given ids, keeping batch order.
func (b Batch) only(ids []string) Batch {
	b.files = lo.Filter(b.files, func(f models.StagedFile, _ int) bool {
		return lo.Contains(ids, f.ID)
	})
	return b
}

func (b Batch) Len() int { return len(b.files) }

// Files returns a copy of the batch entries.
func (b Batch) Files() []models.StagedFile {
	cp := make([]models.StagedFile, len(b.files))
	copy(cp, b.files)
	return cp
}

func (b Batch) ids() []string {
	out := make([]string, len(b.files))
	for i, f := range b.files {
		out[i] = f.ID
	}
	return out
}

func (b Batch) raws() []models.RawFile {
	out := make([]models.RawFile, len(b.files))
	for i, f := range b.files {
		out[i] = f.Raw
	}
	return out
}

func (b Batch) bytes() int64 {
	var n int64
	for _, f := range b.files {
		n += f.Raw.Size
	}
	return n
}
