package client

import (
	"context"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/upload"
)

// Client is the file-serving collaborator of the attachment pipeline.
type Client interface {
	// UploadBatch sends files in one call; references come back in request
	// order.
	UploadBatch(ctx context.Context, files []models.RawFile, progress upload.ProgressFunc) ([]models.AttachmentReference, error)

	// ServeURL and ThumbnailURL are deterministic and make no calls.
	ServeURL(id string) string
	ThumbnailURL(id string, width, height int) string

	// Download saves the file with the given id as dir/name and returns the
	// final path.
	Download(ctx context.Context, id, name, dir string) (string, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
