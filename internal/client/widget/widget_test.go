package widget

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/preview"
	"github.com/dmitrijs2005/clubattach/internal/client/upload"
)

type fakeURLs struct{}

func (fakeURLs) ServeURL(id string) string { return "https://portal/files/" + id }
func (fakeURLs) ThumbnailURL(id string, w, h int) string {
	return fmt.Sprintf("https://portal/files/%s/thumbnail?width=%d&height=%d", id, w, h)
}

func resolver() *preview.Resolver { return preview.NewResolver(fakeURLs{}) }

type fakeTransport struct {
	calls int
	err   error
	short bool
	// during runs while the batch is in flight.
	during func()
}

func (f *fakeTransport) UploadBatch(ctx context.Context, files []models.RawFile, progress upload.ProgressFunc) ([]models.AttachmentReference, error) {
	f.calls++
	progress(1, 2)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.AttachmentReference, 0, len(files))
	for i, file := range files {
		id := fmt.Sprintf("srv-%d-%d", f.calls, i)
		out = append(out, models.AttachmentReference{
			ID: id, OriginalName: file.Name, Size: file.Size, MimeType: file.MimeType,
			URL: "https://portal/files/" + id,
		})
	}
	if f.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func file(name, mime string, size int) models.RawFile {
	return models.NewRawFileFromBytes(name, mime, make([]byte, size))
}
