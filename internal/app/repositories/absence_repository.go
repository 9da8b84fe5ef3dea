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

// AbsenceRepository handles absence database operations
type AbsenceRepository struct {
	db *db.PostgresDB
}

// NewAbsenceRepository creates a new AbsenceRepository
func NewAbsenceRepository(database *db.PostgresDB) *AbsenceRepository {
	return &AbsenceRepository{db: database}
}

// Create inserts an absence
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	sqlStr, args, err := toSQL(psql.Insert("absences").
		Columns("student_id", "course_id", "date", "justified", "justification").
		Values(absence.StudentID, absence.CourseID, absence.Date, absence.Justified, absence.Justification).
		Suffix("RETURNING id, created_at"))
	if err != nil {
		return err
	}
	if err := r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&absence.ID, &absence.CreatedAt); err != nil {
		return fmt.Errorf("error creating absence: %w", err)
	}
	return nil
}

// GetByIDWithDeleted loads an absence including soft-deleted ones
func (r *AbsenceRepository) GetByIDWithDeleted(ctx context.Context, id int64) (*models.Absence, error) {
	sqlStr, args, err := toSQL(psql.Select(
		"id", "student_id", "course_id", "date", "justified", "justification", "created_at", "deleted_at",
	).From("absences").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	var a models.Absence
	err = r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(
		&a.ID, &a.StudentID, &a.CourseID, &a.Date, &a.Justified, &a.Justification, &a.CreatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error loading absence: %w", err)
	}
	return &a, nil
}

// absenceStateCond is the SQL form of models.Absence.State
func absenceStateCond(state models.AbsenceState) (squirrel.Sqlizer, error) {
	switch state {
	case models.AbsenceUnjustified:
		return squirrel.Expr("NOT justified AND (justification IS NULL OR justification = '')"), nil
	case models.AbsencePending:
		return squirrel.Expr("NOT justified AND justification IS NOT NULL AND justification <> ''"), nil
	case models.AbsenceValidated:
		return squirrel.Expr("justified"), nil
	}
	return nil, fmt.Errorf("unknown absence state %q", state)
}

// Transition writes the justification state of an active absence that is still in state from
func (r *AbsenceRepository) Transition(ctx context.Context, absence *models.Absence, from models.AbsenceState) (bool, error) {
	cond, err := absenceStateCond(from)
	if err != nil {
		return false, err
	}
	n, err := execAffected(ctx, r.db.Pool, psql.Update("absences").
		Set("justified", absence.Justified).
		Set("justification", absence.Justification).
		Where(squirrel.Eq{"id": absence.ID}).
		Where("deleted_at IS NULL").
		Where(cond))
	if err != nil {
		return false, fmt.Errorf("error updating absence: %w", err)
	}
	return n == 1, nil
}

// SoftDelete marks a non-deleted absence as deleted
func (r *AbsenceRepository) SoftDelete(ctx context.Context, id int64) error {
	n, err := execAffected(ctx, r.db.Pool, psql.Update("absences").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return fmt.Errorf("error deleting absence: %w", err)
	}
	if n == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// List returns active absences of active courses matching filter, latest first
func (r *AbsenceRepository) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, error) {
	b := psql.Select(
		"a.id", "a.student_id", "a.course_id", "a.date", "a.justified", "a.justification", "a.created_at",
		"u.first_name", "u.last_name", "u.email", "u.student_group",
	).
		From("absences a").
		Join("users u ON u.id = a.student_id").
		Join("courses c ON c.id = a.course_id AND c.deleted_at IS NULL").
		Where("a.deleted_at IS NULL").
		OrderBy("a.date DESC", "a.id DESC")

	if filter.StudentID != nil {
		b = b.Where(squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if filter.CourseID != nil {
		b = b.Where(squirrel.Eq{"a.course_id": *filter.CourseID})
	}
	if filter.TeacherID != nil {
		b = b.Where(squirrel.Eq{"c.teacher_id": *filter.TeacherID})
	}
	if filter.From != nil {
		b = b.Where(squirrel.GtOrEq{"a.date": *filter.From})
	}
	if filter.To != nil {
		b = b.Where(squirrel.LtOrEq{"a.date": *filter.To})
	}

	sqlStr, args, err := toSQL(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing absences: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Absence, error) {
		var a models.Absence
		s := models.UserSummary{}
		err := row.Scan(
			&a.ID, &a.StudentID, &a.CourseID, &a.Date, &a.Justified, &a.Justification, &a.CreatedAt,
			&s.FirstName, &s.LastName, &s.Email, &s.Group,
		)
		s.ID = a.StudentID
		a.Student = &s
		return a, err
	})
}

// CountByCourseStudent returns every enrolled student of the course with their counts,
// including students without absences
func (r *AbsenceRepository) CountByCourseStudent(ctx context.Context, courseID int64) ([]models.StudentAbsenceCount, error) {
	sqlStr, args, err := toSQL(psql.Select(
		"u.id", "u.first_name", "u.last_name", "u.email", "u.student_group",
		"COUNT(a.id)", "COUNT(a.id) FILTER (WHERE a.justified)",
	).
		From("course_students cs").
		Join("users u ON u.id = cs.student_id AND u.deleted_at IS NULL").
		LeftJoin("absences a ON a.student_id = cs.student_id AND a.course_id = cs.course_id AND a.deleted_at IS NULL").
		Where(squirrel.Eq{"cs.course_id": courseID}).
		GroupBy("u.id", "u.first_name", "u.last_name", "u.email", "u.student_group").
		OrderBy("u.last_name", "u.first_name"))
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting course absences: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StudentAbsenceCount, error) {
		var c models.StudentAbsenceCount
		err := row.Scan(
			&c.Student.ID, &c.Student.FirstName, &c.Student.LastName, &c.Student.Email, &c.Student.Group,
			&c.Total, &c.Justified,
		)
		c.Unjustified = c.Total - c.Justified
		return c, err
	})
}

// CountByStudent returns every active course of the student with their counts,
// including courses without absences
func (r *AbsenceRepository) CountByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseAbsenceCount, error) {
	sqlStr, args, err := toSQL(psql.Select(
		"c.id", "c.title", "COUNT(a.id)", "COUNT(a.id) FILTER (WHERE a.justified)",
	).
		From("course_students cs").
		Join("courses c ON c.id = cs.course_id AND c.deleted_at IS NULL").
		LeftJoin("absences a ON a.student_id = cs.student_id AND a.course_id = cs.course_id AND a.deleted_at IS NULL").
		Where(squirrel.Eq{"cs.student_id": studentID}).
		GroupBy("c.id", "c.title").
		OrderBy("c.title"))
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting student absences: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CourseAbsenceCount, error) {
		var c models.CourseAbsenceCount
		err := row.Scan(&c.CourseID, &c.CourseTitle, &c.Total, &c.Justified)
		c.Unjustified = c.Total - c.Justified
		return c, err
	})
}

// CountForStudentInCourse counts the student's active absences in one course
func (r *AbsenceRepository) CountForStudentInCourse(ctx context.Context, studentID uuid.UUID, courseID int64) (models.AbsenceCount, error) {
	var count models.AbsenceCount
	sqlStr, args, err := toSQL(psql.Select("COUNT(*)", "COUNT(*) FILTER (WHERE justified)").
		From("absences").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return count, err
	}
	if err := r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count.Total, &count.Justified); err != nil {
		return count, fmt.Errorf("error counting absences: %w", err)
	}
	count.Unjustified = count.Total - count.Justified
	return count, nil
}

// CountUnjustified counts the student's active unjustified absences across courses
func (r *AbsenceRepository) CountUnjustified(ctx context.Context, studentID uuid.UUID) (int64, error) {
	sqlStr, args, err := toSQL(psql.Select("COUNT(*)").
		From("absences").
		Where(squirrel.Eq{"student_id": studentID, "justified": false}).
		Where("deleted_at IS NULL"))
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unjustified absences: %w", err)
	}
	return n, nil
}
