package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type receivedPart struct {
	name, filename, contentType, body string
}

// fakePortal is a minimal file-serving API.
type fakePortal struct {
	mu       sync.Mutex
	parts    []receivedPart
	auth     []string
	deleted  []string
	dropLast bool
	status   int
}

func (p *fakePortal) router() http.Handler {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p.mu.Lock()
			p.auth = append(p.auth, r.Header.Get("Authorization"))
			status := p.status
			p.mu.Unlock()
			if status != 0 {
				http.Error(w, "forced", status)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var out uploadResponse
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			b, _ := io.ReadAll(part)
			rp := receivedPart{part.FormName(), part.FileName(), part.Header.Get("Content-Type"), string(b)}

			p.mu.Lock()
			p.parts = append(p.parts, rp)
			p.mu.Unlock()

			id := fmt.Sprintf("f%d", len(out.Files)+1)
			out.Files = append(out.Files, models.AttachmentReference{
				ID: id, URL: "/api/files/" + id, OriginalName: rp.filename,
				Size: int64(len(b)), MimeType: rp.contentType,
			})
		}
		if p.dropLast && len(out.Files) > 0 {
			out.Files = out.Files[:len(out.Files)-1]
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	r.Get("/api/files/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "f1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("club charter"))
	})

	r.Delete("/api/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.deleted = append(p.deleted, chi.URLParam(r, "id"))
		p.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func newTestClient(t *testing.T, p *fakePortal, opts ...Option) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(p.router())
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL+"/api/", opts...)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.org")
	require.Error(t, err)
	_, err = NewHTTPClient("://bad")
	require.Error(t, err)
}

func TestURLs_AreDeterministic(t *testing.T) {
	c, err := NewHTTPClient("https://portal.example.edu/api/")
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example.edu/api/files/abc", c.ServeURL("abc"))
	assert.Equal(t, "https://portal.example.edu/api/files/abc/thumbnail?width=64&height=48", c.ThumbnailURL("abc", 64, 48))
	assert.Equal(t, c.ServeURL("abc"), c.ServeURL("abc"))
}

func TestUploadBatch_SendsOnePartPerFileInOrder(t *testing.T) {
	p := &fakePortal{}
	c := newTestClient(t, p)

	files := []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("hello")),
		models.NewRawFileFromBytes("../b.png", "image/png", []byte("PNGDATA")),
		models.NewRawFileFromBytes("c.bin", "", []byte{0, 1, 2}),
	}

	var mu sync.Mutex
	var seen [][2]int64
	refs, err := c.UploadBatch(context.Background(), files, func(sent, total int64) {
		mu.Lock()
		seen = append(seen, [2]int64{sent, total})
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, refs, 3)

	require.Len(t, p.parts, 3)
	assert.Equal(t, receivedPart{"files", "a.txt", "text/plain", "hello"}, p.parts[0])
	assert.Equal(t, receivedPart{"files", "b.png", "image/png", "PNGDATA"}, p.parts[1])
	assert.Equal(t, "files", p.parts[2].name)

	assert.Equal(t, "f1", refs[0].ID)
	assert.Equal(t, "a.txt", refs[0].OriginalName)
	assert.Equal(t, int64(5), refs[0].Size)
	assert.Equal(t, "b.png", refs[1].OriginalName)

	require.NotEmpty(t, seen)
	last := seen[len(seen)-1]
	assert.Equal(t, [2]int64{15, 15}, last)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i][0], seen[i-1][0])
	}
}

func TestUploadBatch_ShortResponseIsReturnedAsIs(t *testing.T) {
	p := &fakePortal{dropLast: true}
	c := newTestClient(t, p)

	refs, err := c.UploadBatch(context.Background(), []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("a")),
		models.NewRawFileFromBytes("b.txt", "text/plain", []byte("b")),
	}, nil)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

func TestUploadBatch_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusServiceUnavailable, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, &fakePortal{status: tt.status})
			_, err := c.UploadBatch(context.Background(), []models.RawFile{
				models.NewRawFileFromBytes("a.txt", "text/plain", []byte("a")),
			}, nil)
			require.ErrorIs(t, err, tt.want)
		})
	}

	c := newTestClient(t, &fakePortal{status: http.StatusRequestEntityTooLarge})
	_, err := c.UploadBatch(context.Background(), []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("a")),
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http error: 413")
}

func TestUploadBatch_ServerDown(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewHTTPClient(url)
	require.NoError(t, err)
	_, err = c.UploadBatch(context.Background(), []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("a")),
	}, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUploadBatch_Cancelled(t *testing.T) {
	c := newTestClient(t, &fakePortal{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.UploadBatch(ctx, []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte("a")),
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, &fakePortal{})
	dir := t.TempDir()

	path, err := c.Download(context.Background(), "f1", "../charter.txt", dir)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "club charter", string(b))
	assert.Equal(t, dir+"/charter.txt", path)

	_, err = c.Download(context.Background(), "missing", "x.txt", dir)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndPing(t *testing.T) {
	p := &fakePortal{}
	c := newTestClient(t, p)

	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Delete(context.Background(), "f7"))
	assert.Equal(t, []string{"f7"}, p.deleted)

	p.status = http.StatusBadGateway
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestMapError_PassesThroughUnknown(t *testing.T) {
	c := &HTTPClient{}
	boom := errors.New("boom")
	assert.Nil(t, c.mapError(nil))
	assert.Equal(t, boom, c.mapError(boom))
}
