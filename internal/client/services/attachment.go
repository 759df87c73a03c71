package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/client/client"
	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/client/repositories/attachments"
	"github.com/dmitrijs2005/clubattach/internal/dbx"
	"github.com/dmitrijs2005/clubattach/internal/logging"
)

// Remover deletes persisted files on the server.
type Remover interface {
	Delete(ctx context.Context, id string) error
}

// AttachmentService keeps the attachment references owned by host records.
type AttachmentService interface {
	// Attach stores refs under recordID in one transaction.
	Attach(ctx context.Context, recordID string, refs []models.AttachmentReference) error
	// List returns the references of recordID, or of every record when
	// recordID is empty.
	List(ctx context.Context, recordID string) ([]models.AttachmentReference, error)
	Get(ctx context.Context, id string) (*models.AttachmentReference, error)
	// Delete removes the file on the server and then the local reference.
	// A file the server no longer knows is still removed locally.
	Delete(ctx context.Context, id string) error
}

type attachmentService struct {
	db     *sql.DB
	repo   attachments.Repository
	remote Remover
	log    logging.Logger
}

func NewAttachmentService(db *sql.DB, remote Remover, log logging.Logger) AttachmentService {
	if log == nil {
		log = logging.Discard()
	}
	return &attachmentService{
		db:     db,
		repo:   attachments.NewSQLiteRepository(db),
		remote: remote,
		log:    log,
	}
}

func (s *attachmentService) Attach(ctx context.Context, recordID string, refs []models.AttachmentReference) error {
	if len(refs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := attachments.NewSQLiteRepository(tx)
		for _, ref := range refs {
			ref.RecordID = recordID
			if ref.CreatedAt.IsZero() {
				ref.CreatedAt = now
			}
			if err := repo.Upsert(ctx, ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving attachments: %w", err)
	}

	s.log.Info(ctx, "attachments saved", "record", recordID, "count", len(refs))
	return nil
}

func (s *attachmentService) List(ctx context.Context, recordID string) ([]models.AttachmentReference, error) {
	var (
		refs []models.AttachmentReference
		err  error
	)
	if recordID == "" {
		refs, err = s.repo.List(ctx)
	} else {
		refs, err = s.repo.ListByRecord(ctx, recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving attachments: %w", err)
	}
	return refs, nil
}

func (s *attachmentService) Get(ctx context.Context, id string) (*models.AttachmentReference, error) {
	ref, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving attachment: %w", err)
	}
	return ref, nil
}

func (s *attachmentService) Delete(ctx context.Context, id string) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		if !errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("error deleting file: %w", err)
		}
		s.log.Warn(ctx, "file already gone on server", "id", id)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting attachment: %w", err)
	}
	return nil
}
