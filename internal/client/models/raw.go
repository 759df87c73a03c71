// Package models defines the client-side data models of the attachment
// pipeline: raw local files, staged entries and persisted references.
package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// RawFile is a user-provided local file before staging.
type RawFile struct {
	Name     string
	Size     int64
	MimeType string

	open func() (io.ReadCloser, error)
}

// Open returns a fresh reader over the payload. Callers must close it.
func (f RawFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("open %s: no payload", f.Name)
	}
	return f.open()
}

// NewRawFileFromPath stats path and sniffs its MIME type from content.
func NewRawFileFromPath(path string) (RawFile, error) {
	st, err := os.Stat(path)
	if err != nil {
		return RawFile{}, err
	}
	if st.IsDir() {
		return RawFile{}, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return RawFile{}, fmt.Errorf("detect mime type: %w", err)
	}

	return RawFile{
		Name:     filepath.Base(path),
		Size:     st.Size(),
		MimeType: mt.String(),
		open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// NewRawFileFromBytes wraps an in-memory payload. An empty mime is sniffed
// from data.
func NewRawFileFromBytes(name, mime string, data []byte) RawFile {
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	return RawFile{
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mime,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
