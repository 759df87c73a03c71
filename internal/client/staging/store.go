package staging

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/logging"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Store is the staging session. It is safe for concurrent use, although the
// widget drives it from a single goroutine.
type Store struct {
	mu       sync.Mutex
	files    []models.StagedFile
	maxFiles int

	previews PreviewProvider
	onChange func([]models.StagedFile)
	log      logging.Logger
	newID    func() string
}

type Option func(*Store)

// WithPreviews sets the preview provider. Without it no previews are made.
func WithPreviews(p PreviewProvider) Option {
	return func(s *Store) { s.previews = p }
}

// WithOnChange registers the host callback invoked after every mutation with
// a copy of the session.
func WithOnChange(fn func([]models.StagedFile)) Option {
	return func(s *Store) { s.onChange = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns an empty session holding at most maxFiles entries.
func New(maxFiles int, opts ...Option) *Store {
	s := &Store{
		maxFiles: maxFiles,
		previews: noPreviews{},
		log:      logging.Discard(),
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add stages files in order until the session is full; the rest are
// dropped. It returns the updated session.
func (s *Store) Add(files []models.RawFile) []models.StagedFile {
	s.mu.Lock()

	room := s.maxFiles - len(s.files)
	if len(files) == 0 || room <= 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	if len(files) > room {
		s.log.Warn(context.Background(), "selection truncated", "offered", len(files), "kept", room)
		files = files[:room]
	}

	for _, raw := range files {
		id := s.newID()
		kind := filekind.Resolve(raw.Name, raw.MimeType)

		ref, err := s.previews.Create(id, raw, kind)
		if err != nil {
			s.log.Warn(context.Background(), "preview not created", "file", raw.Name, "err", err)
			ref = ""
		}

		s.files = append(s.files, models.StagedFile{
			ID:         id,
			Raw:        raw,
			Kind:       kind,
			PreviewRef: ref,
			Status:     models.StatusPending,
		})
	}

	return s.commitLocked()
}

// Remove drops the entry with id and releases its preview. An unknown id
// leaves the session untouched. Removal is refused while an upload is in
// flight.
func (s *Store) Remove(id string) ([]models.StagedFile, error) {
	s.mu.Lock()

	if s.uploadingLocked() {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrUploadInFlight
	}

	removed, idx, ok := lo.FindIndexOf(s.files, func(f models.StagedFile) bool { return f.ID == id })
	if !ok {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}

	s.files = append(s.files[:idx:idx], s.files[idx+1:]...)
	s.releaseLocked(removed)

	return s.commitLocked(), nil
}

// Snapshot returns a copy of the session in staging order.
func (s *Store) Snapshot() []models.StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Pending returns the entries waiting to be uploaded.
func (s *Store) Pending() []models.StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.files, func(f models.StagedFile, _ int) bool {
		return f.Status == models.StatusPending
	})
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Remaining is the number of entries that can still be added.
func (s *Store) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return max(s.maxFiles-len(s.files), 0)
}

// Uploading reports whether any entry is currently uploading.
func (s *Store) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadingLocked()
}

// MarkUploading moves the given pending entries to uploading and returns
// the ids it moved. Entries in any other state are left alone.
func (s *Store) MarkUploading(ids []string) []string {
	return s.update(ids, func(f *models.StagedFile) bool {
		if f.Status != models.StatusPending {
			return false
		}
		f.Status = models.StatusUploading
		f.Err = ""
		return true
	})
}

// MarkCompleted reconciles uploading entries with their server references,
// keyed by local id.
func (s *Store) MarkCompleted(refs map[string]models.AttachmentReference) {
	s.update(lo.Keys(refs), func(f *models.StagedFile) bool {
		if f.Status != models.StatusUploading {
			return false
		}
		ref := refs[f.ID]
		f.Status = models.StatusCompleted
		f.RemoteID = ref.ID
		f.RemoteURL = ref.URL
		f.Err = ""
		return true
	})
}

// MarkFailed moves the given uploading entries to error with reason.
func (s *Store) MarkFailed(ids []string, reason string) {
	s.update(ids, func(f *models.StagedFile) bool {
		if f.Status != models.StatusUploading {
			return false
		}
		f.Status = models.StatusError
		f.RemoteID = ""
		f.RemoteURL = ""
		f.Err = reason
		return true
	})
}

// ResetFailed moves every errored entry back to pending and returns how many
// were reset.
func (s *Store) ResetFailed() int {
	s.mu.Lock()

	n := 0
	for i := range s.files {
		if s.files[i].Status == models.StatusError {
			s.files[i].Status = models.StatusPending
			s.files[i].Err = ""
			n++
		}
	}
	if n == 0 {
		s.mu.Unlock()
		return 0
	}

	s.commitLocked()
	return n
}

// Close ends the session, releasing every remaining preview. The session is
// empty afterwards. Closing an empty session does not notify.
func (s *Store) Close() {
	s.mu.Lock()

	if len(s.files) == 0 {
		s.mu.Unlock()
		return
	}

	for _, f := range s.files {
		s.releaseLocked(f)
	}
	s.files = nil

	s.commitLocked()
}

func (s *Store) update(ids []string, fn func(f *models.StagedFile) bool) []string {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()

	var changed []string
	for i := range s.files {
		if lo.Contains(ids, s.files[i].ID) && fn(&s.files[i]) {
			changed = append(changed, s.files[i].ID)
		}
	}
	if len(changed) == 0 {
		s.mu.Unlock()
		return nil
	}

	s.commitLocked()
	return changed
}

func (s *Store) releaseLocked(f models.StagedFile) {
	if f.PreviewRef == "" {
		return
	}
	if err := s.previews.Release(f.PreviewRef); err != nil {
		s.log.Error(context.Background(), "preview release failed", "id", f.ID, "err", err)
	}
}

func (s *Store) uploadingLocked() bool {
	return lo.ContainsBy(s.files, func(f models.StagedFile) bool {
		return f.Status == models.StatusUploading
	})
}

func (s *Store) snapshotLocked() []models.StagedFile {
	out := make([]models.StagedFile, len(s.files))
	copy(out, s.files)
	return out
}

// commitLocked takes a snapshot, unlocks and notifies the host.
func (s *Store) commitLocked() []models.StagedFile {
	snap := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return snap
}
