package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/common"
	"github.com/dmitrijs2005/clubattach/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, record_id, original_name, size, mime_type, url, thumbnail_url, created_at`

func (r *SQLiteRepository) Upsert(ctx context.Context, a models.AttachmentReference) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO attachments (` + columns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET record_id = excluded.record_id,
				original_name = excluded.original_name,
				size = excluded.size,
				mime_type = excluded.mime_type,
				url = excluded.url,
				thumbnail_url = excluded.thumbnail_url`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.RecordID, a.OriginalName, a.Size, a.MimeType, a.URL, a.ThumbnailURL, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert attachment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.AttachmentReference, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM attachments WHERE id = ?`, id)

	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select attachment: %w", err)
	}
	return &a, nil
}

func (r *SQLiteRepository) ListByRecord(ctx context.Context, recordID string) ([]models.AttachmentReference, error) {
	return r.query(ctx, `SELECT `+columns+` FROM attachments WHERE record_id = ? ORDER BY created_at, rowid`, recordID)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.AttachmentReference, error) {
	return r.query(ctx, `SELECT `+columns+` FROM attachments ORDER BY created_at, rowid`)
}

// DeleteByID expects exactly one row to be removed.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]models.AttachmentReference, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	result := []models.AttachmentReference{}
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (models.AttachmentReference, error) {
	var a models.AttachmentReference
	err := s.Scan(&a.ID, &a.RecordID, &a.OriginalName, &a.Size, &a.MimeType, &a.URL, &a.ThumbnailURL, &a.CreatedAt)
	return a, err
}
