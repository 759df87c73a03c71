package widget

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/clubattach/internal/client/filekind"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/preview"
)

// Downloader saves a persisted file locally and returns the path.
type Downloader interface {
	Download(ctx context.Context, id, name, dir string) (string, error)
}

type ViewMode string

const (
	ViewImage       ViewMode = "image"
	ViewVideo       ViewMode = "video"
	ViewUnavailable ViewMode = "unavailable"
)

// View is what the panel shows for its attachment.
type View struct {
	Mode         ViewMode
	Name         string
	Size         string
	MimeType     string
	URL          string
	ThumbnailURL string
	Message      string
}

// DeleteIntent is reported to the host when the user asks to delete.
type DeleteIntent struct {
	// ID is the persisted id, or the local staging id for entries not yet
	// uploaded.
	ID        string
	Name      string
	Persisted bool
}

// PreviewPanel presents a single attachment.
type PreviewPanel struct {
	name     string
	size     int64
	mime     string
	remoteID string
	localID  string
	res      preview.Resolution

	downloader Downloader
	onDelete   func(DeleteIntent)
}

// NewReferencePanel builds a panel for a persisted attachment.
func NewReferencePanel(ref models.AttachmentReference, r *preview.Resolver, d Downloader, onDelete func(DeleteIntent)) *PreviewPanel {
	return &PreviewPanel{
		name:       ref.OriginalName,
		size:       ref.Size,
		mime:       ref.MimeType,
		remoteID:   ref.ID,
		res:        r.ForReference(ref, preview.DefaultWidth, preview.DefaultHeight),
		downloader: d,
		onDelete:   onDelete,
	}
}

// NewStagedPanel builds a panel for a staged entry.
func NewStagedPanel(f models.StagedFile, r *preview.Resolver, d Downloader, onDelete func(DeleteIntent)) *PreviewPanel {
	p := &PreviewPanel{
		name:       f.Raw.Name,
		size:       f.Raw.Size,
		mime:       f.Raw.MimeType,
		localID:    f.ID,
		res:        r.ForStaged(f, preview.DefaultWidth, preview.DefaultHeight),
		downloader: d,
		onDelete:   onDelete,
	}
	if f.Persisted() {
		p.remoteID = f.RemoteID
	}
	return p
}

func (p *PreviewPanel) View() View {
	v := View{
		Name:     p.name,
		Size:     filekind.FormatSize(p.size),
		MimeType: p.mime,
	}

	if !p.res.Available() {
		v.Mode = ViewUnavailable
		v.Message = "preview not available"
		return v
	}

	switch p.res.Kind {
	case filekind.KindImage:
		v.Mode = ViewImage
	case filekind.KindVideo:
		v.Mode = ViewVideo
	default:
		v.Mode = ViewUnavailable
		v.Message = "preview not available"
		return v
	}

	v.URL = p.res.DisplayURL
	v.ThumbnailURL = p.res.ThumbnailURL
	return v
}

func (p *PreviewPanel) Render(w io.Writer) error {
	v := p.View()
	kind := p.res.Kind

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", filekind.Icon(kind), v.Name)
	fmt.Fprintf(&b, "  size: %s\n", v.Size)
	if v.MimeType != "" {
		fmt.Fprintf(&b, "  type: %s\n", v.MimeType)
	}

	switch v.Mode {
	case ViewImage:
		fmt.Fprintf(&b, "  image: %s\n  thumbnail: %s\n", v.URL, v.ThumbnailURL)
	case ViewVideo:
		fmt.Fprintf(&b, "  video: %s\n", v.URL)
	default:
		fmt.Fprintf(&b, "  %s\n", v.Message)
	}

	if p.remoteID != "" {
		fmt.Fprintf(&b, "  id: %s\n", p.remoteID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Download saves the persisted file into destDir. Entries that were never
// uploaded cannot be downloaded.
func (p *PreviewPanel) Download(ctx context.Context, destDir string) (string, error) {
	if p.remoteID == "" {
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, ErrNotPersisted)
	}

	path, err := p.downloader.Download(ctx, p.remoteID, p.name, destDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return path, nil
}

// Delete reports the delete intent to the host. The panel deletes nothing.
func (p *PreviewPanel) Delete() {
	if p.onDelete == nil {
		return
	}

	intent := DeleteIntent{ID: p.remoteID, Name: p.name, Persisted: true}
	if p.remoteID == "" {
		intent = DeleteIntent{ID: p.localID, Name: p.name}
	}
	p.onDelete(intent)
}
