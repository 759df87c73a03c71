package models

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestNewRawFileFromPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(p, pngHeader, 0o600))

	f, err := NewRawFileFromPath(p)
	require.NoError(t, err)
	assert.Equal(t, "logo.png", f.Name)
	assert.Equal(t, int64(len(pngHeader)), f.Size)
	assert.Equal(t, "image/png", f.MimeType)

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, b)
}

func TestNewRawFileFromPath_Errors(t *testing.T) {
	_, err := NewRawFileFromPath(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = NewRawFileFromPath(t.TempDir())
	require.Error(t, err)
}

func TestNewRawFileFromBytes(t *testing.T) {
	f := NewRawFileFromBytes("notes.txt", "", []byte("hello"))
	assert.Equal(t, int64(5), f.Size)
	assert.Contains(t, f.MimeType, "text/plain")

	g := NewRawFileFromBytes("x.bin", "application/zip", []byte("PK"))
	assert.Equal(t, "application/zip", g.MimeType)

	for i := 0; i < 2; i++ {
		rc, err := g.Open()
		require.NoError(t, err)
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "PK", string(b))
		require.NoError(t, rc.Close())
	}
}

func TestRawFile_OpenWithoutPayload(t *testing.T) {
	_, err := RawFile{Name: "empty"}.Open()
	require.Error(t, err)
}

func TestStagedFile_Reference(t *testing.T) {
	f := StagedFile{
		ID:        "local",
		Raw:       RawFile{Name: "a.pdf", Size: 10, MimeType: "application/pdf"},
		Status:    StatusCompleted,
		RemoteID:  "srv-1",
		RemoteURL: "https://portal/files/srv-1",
	}
	require.True(t, f.Persisted())

	ref := f.Reference()
	assert.Equal(t, AttachmentReference{
		ID: "srv-1", OriginalName: "a.pdf", Size: 10,
		MimeType: "application/pdf", URL: "https://portal/files/srv-1",
	}, ref)

	f.Status = StatusPending
	assert.False(t, f.Persisted())
}
