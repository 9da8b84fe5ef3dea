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
	"github.com/yigit/classroom/internal/pkg/dberrors"
)

var courseColumns = []string{
	"c.id", "c.title", "c.description", "c.type", "c.start_date", "c.course_code",
	"c.teacher_id", "c.created_at", "c.updated_at",
}

// CourseRepository handles course and enrollment database operations
type CourseRepository struct {
	db *db.PostgresDB
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(database *db.PostgresDB) *CourseRepository {
	return &CourseRepository{db: database}
}

func scanCourse(row pgx.Row) (models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Type, &c.StartDate, &c.CourseCode,
		&c.TeacherID, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return psql.Select(courseColumns...).From("courses c").Where("c.deleted_at IS NULL")
}

// Create inserts a course. A code already used by an active course yields ErrCourseCodeTaken.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sqlStr, args, err := toSQL(psql.Insert("courses").
		Columns("title", "description", "type", "start_date", "course_code", "teacher_id").
		Values(course.Title, course.Description, course.Type, course.StartDate, course.CourseCode, course.TeacherID).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}

	err = r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintCourseCode) {
			return ErrCourseCodeTaken
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

func (r *CourseRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Course, error) {
	sqlStr, args, err := toSQL(r.selectCourses().Where(where))
	if err != nil {
		return nil, err
	}
	course, err := scanCourse(r.db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error loading course: %w", err)
	}
	return &course, nil
}

// GetByID returns an active course
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.getOne(ctx, squirrel.Eq{"c.id": id})
}

// GetByCode returns the active course holding code
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	return r.getOne(ctx, squirrel.Eq{"c.course_code": code})
}

// CodeExists reports whether an active course uses code
func (r *CourseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	found, err := exists(ctx, r.db.Pool, psql.Select("1").From("courses").
		Where(squirrel.Eq{"course_code": code}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return false, fmt.Errorf("error checking course code: %w", err)
	}
	return found, nil
}

func (r *CourseRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.Course, error) {
	sqlStr, args, err := toSQL(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Course, error) {
		return scanCourse(row)
	})
}

// ListByTeacher returns the teacher's active courses, latest start first
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Course, error) {
	return r.list(ctx, r.selectCourses().
		Where(squirrel.Eq{"c.teacher_id": teacherID}).
		OrderBy("c.start_date DESC", "c.id DESC"))
}

// ListByStudent returns the active courses the student is enrolled in
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Course, error) {
	return r.list(ctx, r.selectCourses().
		Join("course_students cs ON cs.course_id = c.id").
		Where(squirrel.Eq{"cs.student_id": studentID}).
		OrderBy("c.start_date DESC", "c.id DESC"))
}

// Archive soft-deletes the course when owned by teacherID
func (r *CourseRepository) Archive(ctx context.Context, id int64, teacherID uuid.UUID) (bool, error) {
	n, err := execAffected(ctx, r.db.Pool, psql.Update("courses").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "teacher_id": teacherID}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return false, fmt.Errorf("error archiving course: %w", err)
	}
	return n > 0, nil
}

// IsStudentEnrolled reports whether the student belongs to the course
func (r *CourseRepository) IsStudentEnrolled(ctx context.Context, courseID int64, studentID uuid.UUID) (bool, error) {
	found, err := exists(ctx, r.db.Pool, psql.Select("1").From("course_students").
		Where(squirrel.Eq{"course_id": courseID, "student_id": studentID}))
	if err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return found, nil
}

// EnrollStudent adds the student to an active course. The course row is share-locked so
// an archive cannot interleave; the primary key makes concurrent joins idempotent.
func (r *CourseRepository) EnrollStudent(ctx context.Context, courseID int64, studentID uuid.UUID) (bool, error) {
	var inserted bool
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockSQL, lockArgs, err := toSQL(psql.Select("id").From("courses").
			Where(squirrel.Eq{"id": courseID}).
			Where("deleted_at IS NULL").
			Suffix("FOR SHARE"))
		if err != nil {
			return err
		}
		var id int64
		if err := tx.QueryRow(ctx, lockSQL, lockArgs...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrResourceNotFound
			}
			return err
		}

		n, err := execAffected(ctx, tx, psql.Insert("course_students").
			Columns("course_id", "student_id").
			Values(courseID, studentID).
			Suffix("ON CONFLICT (course_id, student_id) DO NOTHING"))
		if err != nil {
			return err
		}
		inserted = n == 1
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, err
		}
		return false, fmt.Errorf("error enrolling student: %w", err)
	}
	return inserted, nil
}

// ListStudents returns the active students enrolled in the course
func (r *CourseRepository) ListStudents(ctx context.Context, courseID int64) ([]models.User, error) {
	sqlStr, args, err := toSQL(psql.Select(userColumns...).
		From("users u").
		Join("course_students cs ON cs.student_id = u.id").
		Where(squirrel.Eq{"cs.course_id": courseID}).
		Where("u.deleted_at IS NULL").
		OrderBy("u.last_name", "u.first_name"))
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing course students: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		u, err := scanUser(row)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
}
