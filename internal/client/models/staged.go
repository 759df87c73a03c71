package models

import "github.com/dmitrijs2005/clubattach/internal/client/filekind"

// Status is the lifecycle state of a staged file.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// StagedFile is one entry of a staging session.
//
// RemoteID and RemoteURL stay empty until Status is StatusCompleted.
type StagedFile struct {
	ID         string
	Raw        RawFile
	Kind       filekind.Kind
	PreviewRef string
	Status     Status
	RemoteID   string
	RemoteURL  string
	Err        string
}

// Persisted reports whether the entry has been reconciled with the server.
func (f StagedFile) Persisted() bool {
	return f.Status == StatusCompleted && f.RemoteID != ""
}

// Reference builds the persisted reference of a completed entry.
func (f StagedFile) Reference() AttachmentReference {
	return AttachmentReference{
		ID:           f.RemoteID,
		OriginalName: f.Raw.Name,
		Size:         f.Raw.Size,
		MimeType:     f.Raw.MimeType,
		URL:          f.RemoteURL,
	}
}
