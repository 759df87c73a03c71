// Package preview computes display and thumbnail URLs for staged and
// persisted attachments. It performs no I/O.
package preview

import (
	"net/url"
	"path/filepath"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
)

const (
	DefaultWidth  = 200
	DefaultHeight = 200
)

// URLs builds server-side URLs for persisted files.
type URLs interface {
	ServeURL(id string) string
	ThumbnailURL(id string, width, height int) string
}

// Resolution is the outcome of resolving one attachment.
type Resolution struct {
	Kind         filekind.Kind
	DisplayURL   string
	ThumbnailURL string
	// Local is true when the URLs point at a local preview handle.
	Local bool
}

// Available reports whether anything can be displayed.
func (r Resolution) Available() bool {
	return r.DisplayURL != ""
}

type Resolver struct {
	urls URLs
}

func NewResolver(urls URLs) *Resolver {
	return &Resolver{urls: urls}
}

// ForStaged resolves a staged entry. Completed entries resolve as persisted
// files; the others use their local preview, if any.
func (r *Resolver) ForStaged(f models.StagedFile, width, height int) Resolution {
	if f.Persisted() {
		return r.persisted(f.RemoteID, f.Kind, width, height)
	}

	res := Resolution{Kind: f.Kind}
	if f.PreviewRef == "" {
		return res
	}

	res.DisplayURL = LocalURL(f.PreviewRef)
	res.ThumbnailURL = res.DisplayURL
	res.Local = true
	return res
}

// ForReference resolves a persisted reference.
func (r *Resolver) ForReference(ref models.AttachmentReference, width, height int) Resolution {
	kind := filekind.Resolve(ref.OriginalName, ref.MimeType)
	return r.persisted(ref.ID, kind, width, height)
}

func (r *Resolver) persisted(id string, kind filekind.Kind, width, height int) Resolution {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	display := r.urls.ServeURL(id)
	res := Resolution{Kind: kind, DisplayURL: display, ThumbnailURL: display}
	if kind == filekind.KindImage {
		res.ThumbnailURL = r.urls.ThumbnailURL(id, width, height)
	}
	return res
}

// LocalURL turns a local preview path into a file:// URL.
func LocalURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
