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

var homeworkColumns = []string{
	"h.id", "h.title", "h.description", "h.deadline", "h.course_id", "h.teacher_id", "h.created_at", "h.updated_at",
}

// HomeworkRepository handles homework database operations
type HomeworkRepository struct {
	db *db.PostgresDB
}

// NewHomeworkRepository creates a new HomeworkRepository
func NewHomeworkRepository(database *db.PostgresDB) *HomeworkRepository {
	return &HomeworkRepository{db: database}
}

func scanHomework(row pgx.Row) (models.Homework, error) {
	var h models.Homework
	err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Deadline, &h.CourseID, &h.TeacherID, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *HomeworkRepository) selectHomework() squirrel.SelectBuilder {
	return psql.Select(homeworkColumns...).
		From("homework h").
		Join("courses c ON c.id = h.course_id AND c.deleted_at IS NULL").
		Where("h.deleted_at IS NULL")
}

// Create inserts the homework and its attachments in one transaction
func (r *HomeworkRepository) Create(ctx context.Context, homework *models.Homework, attachments []models.Upload) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sqlStr, args, err := toSQL(psql.Insert("homework").
			Columns("title", "description", "deadline", "course_id", "teacher_id").
			Values(homework.Title, homework.Description, homework.Deadline, homework.CourseID, homework.TeacherID).
			Suffix("RETURNING id, created_at, updated_at"))
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&homework.ID, &homework.CreatedAt, &homework.UpdatedAt); err != nil {
			return err
		}

		homework.Attachments = setUploadOwner(attachments, func(u *models.Upload) { u.HomeworkID = &homework.ID })
		return insertUploads(ctx, tx, homework.Attachments)
	})
	if err != nil {
		return fmt.Errorf("error creating homework: %w", err)
	}
	return nil
}

// GetByID returns an active homework of an active course with its attachments
func (r *HomeworkRepository) GetByID(ctx context.Context, id int64) (*models.Homework, error) {
	list, err := r.list(ctx, r.selectHomework().Where(squirrel.Eq{"h.id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperrors.ErrResourceNotFound
	}
	return &list[0], nil
}

// Update writes title, description and deadline
func (r *HomeworkRepository) Update(ctx context.Context, homework *models.Homework) error {
	sqlStr, args, err := toSQL(psql.Update("homework").
		Set("title", homework.Title).
		Set("description", homework.Description).
		Set("deadline", homework.Deadline).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": homework.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	if err := r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&homework.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrResourceNotFound
		}
		return fmt.Errorf("error updating homework: %w", err)
	}
	return nil
}

// SoftDelete marks the homework as deleted
func (r *HomeworkRepository) SoftDelete(ctx context.Context, id int64) error {
	n, err := execAffected(ctx, r.db.Pool, psql.Update("homework").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return fmt.Errorf("error deleting homework: %w", err)
	}
	if n == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// ListByTeacher returns the homework issued by the teacher
func (r *HomeworkRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Homework, error) {
	return r.list(ctx, r.selectHomework().Where(squirrel.Eq{"h.teacher_id": teacherID}).OrderBy("h.deadline", "h.id"))
}

// ListByCourse returns the homework of one course
func (r *HomeworkRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Homework, error) {
	return r.list(ctx, r.selectHomework().Where(squirrel.Eq{"h.course_id": courseID}).OrderBy("h.deadline", "h.id"))
}

// ListForStudent returns the homework of every course the student is enrolled in
func (r *HomeworkRepository) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]models.Homework, error) {
	return r.list(ctx, r.selectHomework().
		Join("course_students cs ON cs.course_id = h.course_id").
		Where(squirrel.Eq{"cs.student_id": studentID}).
		OrderBy("h.deadline", "h.id"))
}

func (r *HomeworkRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.Homework, error) {
	sqlStr, args, err := toSQL(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing homework: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Homework, error) {
		return scanHomework(row)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	attachments, err := listUploadsByOwner(ctx, r.db.Pool, "homework_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Attachments = attachments[list[i].ID]
	}
	return list, nil
}
