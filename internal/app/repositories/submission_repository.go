package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/db"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/dberrors"
)

var submissionColumns = []string{
	"s.id", "s.homework_id", "s.student_id", "s.submission_date", "s.grade", "s.feedback",
}

// SubmissionRepository handles homework submission database operations
type SubmissionRepository struct {
	db *db.PostgresDB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(database *db.PostgresDB) *SubmissionRepository {
	return &SubmissionRepository{db: database}
}

func scanSubmission(row pgx.Row) (models.Submission, error) {
	var s models.Submission
	err := row.Scan(&s.ID, &s.HomeworkID, &s.StudentID, &s.SubmissionDate, &s.Grade, &s.Feedback)
	return s, err
}

func (r *SubmissionRepository) selectActive() squirrel.SelectBuilder {
	return psql.Select(submissionColumns...).From("submissions s").Where("s.deleted_at IS NULL")
}

// Create inserts the submission and its uploads in one transaction
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission, uploads []models.Upload) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sqlStr, args, err := toSQL(psql.Insert("submissions").
			Columns("homework_id", "student_id", "submission_date").
			Values(submission.HomeworkID, submission.StudentID, submission.SubmissionDate).
			Suffix("RETURNING id"))
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&submission.ID); err != nil {
			return err
		}

		submission.Uploads = setUploadOwner(uploads, func(u *models.Upload) { u.SubmissionID = &submission.ID })
		return insertUploads(ctx, tx, submission.Uploads)
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintSubmissionStudent) {
			return fmt.Errorf("%w: active submission exists", apperrors.ErrConflict)
		}
		return fmt.Errorf("error creating submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) getOne(ctx context.Context, b squirrel.SelectBuilder) (*models.Submission, error) {
	list, err := r.list(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperrors.ErrResourceNotFound
	}
	return &list[0], nil
}

// GetActive returns the student's active submission for the homework
func (r *SubmissionRepository) GetActive(ctx context.Context, homeworkID int64, studentID uuid.UUID) (*models.Submission, error) {
	return r.getOne(ctx, r.selectActive().Where(squirrel.Eq{"s.homework_id": homeworkID, "s.student_id": studentID}))
}

// GetByID returns an active submission
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	return r.getOne(ctx, r.selectActive().Where(squirrel.Eq{"s.id": id}))
}

// Exists reports whether the student has an active submission for the homework
func (r *SubmissionRepository) Exists(ctx context.Context, homeworkID int64, studentID uuid.UUID) (bool, error) {
	found, err := exists(ctx, r.db.Pool, psql.Select("1").From("submissions").
		Where(squirrel.Eq{"homework_id": homeworkID, "student_id": studentID}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return false, fmt.Errorf("error checking submission: %w", err)
	}
	return found, nil
}

// SoftDelete marks the submission and its uploads as deleted
func (r *SubmissionRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		n, err := execAffected(ctx, tx, psql.Update("submissions").
			Set("deleted_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			Where("deleted_at IS NULL"))
		if err != nil {
			return fmt.Errorf("error deleting submission: %w", err)
		}
		if n == 0 {
			return apperrors.ErrResourceNotFound
		}

		_, err = execAffected(ctx, tx, psql.Update("uploads").
			Set("deleted_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"submission_id": id}).
			Where("deleted_at IS NULL"))
		if err != nil {
			return fmt.Errorf("error deleting submission uploads: %w", err)
		}
		return nil
	})
}

// Grade sets grade and feedback, replacing earlier values
func (r *SubmissionRepository) Grade(ctx context.Context, id int64, grade int, feedback *string) error {
	n, err := execAffected(ctx, r.db.Pool, psql.Update("submissions").
		Set("grade", grade).
		Set("feedback", feedback).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return fmt.Errorf("error grading submission: %w", err)
	}
	if n == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// ListByHomework returns the active submissions of a homework
func (r *SubmissionRepository) ListByHomework(ctx context.Context, homeworkID int64) ([]models.Submission, error) {
	return r.list(ctx, r.selectActive().Where(squirrel.Eq{"s.homework_id": homeworkID}).OrderBy("s.submission_date"))
}

func (r *SubmissionRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.Submission, error) {
	sqlStr, args, err := toSQL(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Submission, error) {
		return scanSubmission(row)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	uploads, err := listUploadsByOwner(ctx, r.db.Pool, "submission_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Uploads = uploads[list[i].ID]
	}
	return list, nil
}
