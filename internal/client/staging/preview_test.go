package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirPreviews_CreateAndRelease(t *testing.T) {
	p, err := NewDirPreviews(filepath.Join(t.TempDir(), "previews"))
	require.NoError(t, err)

	f := models.NewRawFileFromBytes("../../logo.png", "image/png", []byte("png-bytes"))
	ref, err := p.Create("id-1", f, filekind.KindImage)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Dir, "id-1.png"), ref)

	b, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
	assert.Equal(t, 1, p.Live())

	require.NoError(t, p.Release(ref))
	_, err = os.Stat(ref)
	assert.True(t, os.IsNotExist(err))

	require.ErrorIs(t, p.Release(ref), ErrPreviewReleased)
	assert.Equal(t, 0, p.Live())
}

func TestDirPreviews_SkipsNonImages(t *testing.T) {
	p, err := NewDirPreviews(t.TempDir())
	require.NoError(t, err)

	ref, err := p.Create("id", models.NewRawFileFromBytes("a.pdf", "application/pdf", []byte("%PDF")), filekind.KindDocument)
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestDirPreviews_WithStoreLeavesNothingBehind(t *testing.T) {
	p, err := NewDirPreviews(t.TempDir())
	require.NoError(t, err)
	s := New(2, WithPreviews(p))

	staged := s.Add([]models.RawFile{
		models.NewRawFileFromBytes("a.png", "image/png", []byte("a")),
		models.NewRawFileFromBytes("b.gif", "image/gif", []byte("b")),
		models.NewRawFileFromBytes("c.png", "image/png", []byte("c")),
	})
	require.Len(t, staged, 2)
	assert.Equal(t, 2, p.Live())

	_, err = s.Remove(staged[0].ID)
	require.NoError(t, err)
	s.Close()

	assert.Equal(t, 0, p.Live())
	entries, err := os.ReadDir(p.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
