package attachments

import (
	"context"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
)

// Repository stores the attachment references of host records.
type Repository interface {
	// Upsert inserts the reference or replaces the row with the same id.
	Upsert(ctx context.Context, ref models.AttachmentReference) error

	// GetByID returns common.ErrNotFound when no row matches.
	GetByID(ctx context.Context, id string) (*models.AttachmentReference, error)

	// ListByRecord returns the references of one record, oldest first.
	ListByRecord(ctx context.Context, recordID string) ([]models.AttachmentReference, error)

	// List returns every cached reference, oldest first.
	List(ctx context.Context) ([]models.AttachmentReference, error)

	DeleteByID(ctx context.Context, id string) error
}
