package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/db"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

var uploadColumns = []string{
	"id", "original_name", "stored_name", "mime_type", "size", "uploader_id",
	"submission_id", "homework_id", "post_id", "created_at",
}

// UploadRepository handles upload metadata
type UploadRepository struct {
	db *db.PostgresDB
}

// NewUploadRepository creates a new UploadRepository
func NewUploadRepository(database *db.PostgresDB) *UploadRepository {
	return &UploadRepository{db: database}
}

func scanUpload(row pgx.Row) (models.Upload, error) {
	var u models.Upload
	err := row.Scan(
		&u.ID, &u.OriginalName, &u.StoredName, &u.MimeType, &u.Size, &u.UploaderID,
		&u.SubmissionID, &u.HomeworkID, &u.PostID, &u.CreatedAt,
	)
	return u, err
}

// insertUploads writes upload rows in one statement
func insertUploads(ctx context.Context, q db.Querier, uploads []models.Upload) error {
	if len(uploads) == 0 {
		return nil
	}
	b := psql.Insert("uploads").Columns(uploadColumns...)
	for _, u := range uploads {
		b = b.Values(
			u.ID, u.OriginalName, u.StoredName, u.MimeType, u.Size, u.UploaderID,
			u.SubmissionID, u.HomeworkID, u.PostID, u.CreatedAt,
		)
	}
	if _, err := execAffected(ctx, q, b); err != nil {
		return fmt.Errorf("error inserting uploads: %w", err)
	}
	return nil
}

// listUploadsByOwner returns the active uploads whose ownerColumn is in ids, grouped by owner id
func listUploadsByOwner(ctx context.Context, q db.Querier, ownerColumn string, ids []int64) (map[int64][]models.Upload, error) {
	grouped := make(map[int64][]models.Upload, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}

	sqlStr, args, err := toSQL(psql.Select(uploadColumns...).
		From("uploads").
		Where(squirrel.Eq{ownerColumn: ids}).
		Where("deleted_at IS NULL").
		OrderBy("created_at", "original_name"))
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing uploads: %w", err)
	}
	uploads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Upload, error) {
		return scanUpload(row)
	})
	if err != nil {
		return nil, err
	}

	for _, u := range uploads {
		var owner *int64
		switch ownerColumn {
		case "submission_id":
			owner = u.SubmissionID
		case "homework_id":
			owner = u.HomeworkID
		case "post_id":
			owner = u.PostID
		}
		if owner != nil {
			grouped[*owner] = append(grouped[*owner], u)
		}
	}
	return grouped, nil
}

// Create inserts standalone uploads
func (r *UploadRepository) Create(ctx context.Context, uploads []models.Upload) error {
	return insertUploads(ctx, r.db.Pool, uploads)
}

// GetByID returns an active upload
func (r *UploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Upload, error) {
	sqlStr, args, err := toSQL(psql.Select(uploadColumns...).
		From("uploads").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return nil, err
	}
	u, err := scanUpload(r.db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error loading upload: %w", err)
	}
	return &u, nil
}

// SoftDelete marks the uploads as deleted
func (r *UploadRepository) SoftDelete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := execAffected(ctx, r.db.Pool, psql.Update("uploads").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return fmt.Errorf("error deleting uploads: %w", err)
	}
	return nil
}

func setUploadOwner(uploads []models.Upload, set func(u *models.Upload)) []models.Upload {
	out := make([]models.Upload, len(uploads))
	for i := range uploads {
		out[i] = uploads[i]
		set(&out[i])
	}
	return out
}
