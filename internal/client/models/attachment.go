package models

import "time"

// AttachmentReference is the persisted form of an uploaded file as returned
// by the file-serving backend and cached by the host.
type AttachmentReference struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// RecordID and CreatedAt are host-side and never sent by the server.
	RecordID  string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}
