package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/db"
)

// ErrCourseCodeTaken is returned by ICourseRepository.Create when the code index rejects the insert
var ErrCourseCodeTaken = errors.New("course code already taken")

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ICourseRepository covers courses and their enrollments
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Course, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Course, error)
	// Archive soft-deletes the course if teacherID owns it and reports whether it did
	Archive(ctx context.Context, id int64, teacherID uuid.UUID) (bool, error)

	IsStudentEnrolled(ctx context.Context, courseID int64, studentID uuid.UUID) (bool, error)
	// EnrollStudent reports false when the student was already enrolled
	EnrollStudent(ctx context.Context, courseID int64, studentID uuid.UUID) (bool, error)
	ListStudents(ctx context.Context, courseID int64) ([]models.User, error)
}

// IAbsenceRepository defines absence persistence and aggregation
type IAbsenceRepository interface {
	Create(ctx context.Context, absence *models.Absence) error
	GetByIDWithDeleted(ctx context.Context, id int64) (*models.Absence, error)
	// Update writes justified and justification of a non-deleted absence
	// Transition writes the justification fields only while the stored absence is active and in
	// state from. It reports false when no row matched.
	Transition(ctx context.Context, absence *models.Absence, from models.AbsenceState) (bool, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, error)

	CountByCourseStudent(ctx context.Context, courseID int64) ([]models.StudentAbsenceCount, error)
	CountByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseAbsenceCount, error)
	CountForStudentInCourse(ctx context.Context, studentID uuid.UUID, courseID int64) (models.AbsenceCount, error)
	CountUnjustified(ctx context.Context, studentID uuid.UUID) (int64, error)
}

// IHomeworkRepository defines homework persistence
type IHomeworkRepository interface {
	Create(ctx context.Context, homework *models.Homework, attachments []models.Upload) error
	GetByID(ctx context.Context, id int64) (*models.Homework, error)
	Update(ctx context.Context, homework *models.Homework) error
	SoftDelete(ctx context.Context, id int64) error
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Homework, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Homework, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]models.Homework, error)
}

// ISubmissionRepository defines submission persistence
type ISubmissionRepository interface {
	// Create inserts the submission and its uploads atomically.
	// A second active submission for the same pair fails with apperrors.ErrConflict.
	Create(ctx context.Context, submission *models.Submission, uploads []models.Upload) error
	GetActive(ctx context.Context, homeworkID int64, studentID uuid.UUID) (*models.Submission, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	Exists(ctx context.Context, homeworkID int64, studentID uuid.UUID) (bool, error)
	// SoftDelete removes the submission together with its upload rows
	SoftDelete(ctx context.Context, id int64) error
	Grade(ctx context.Context, id int64, grade int, feedback *string) error
	ListByHomework(ctx context.Context, homeworkID int64) ([]models.Submission, error)
}

// IUploadRepository defines upload metadata persistence
type IUploadRepository interface {
	Create(ctx context.Context, uploads []models.Upload) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Upload, error)
	SoftDelete(ctx context.Context, ids []uuid.UUID) error
}

// IPostRepository defines post persistence
type IPostRepository interface {
	Create(ctx context.Context, post *models.Post, attachments []models.Upload) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Post, error)
	SoftDelete(ctx context.Context, id int64) error
}

// ICommentRepository defines comment persistence
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]models.Comment, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Users       IUserRepository
	Courses     ICourseRepository
	Absences    IAbsenceRepository
	Homework    IHomeworkRepository
	Submissions ISubmissionRepository
	Uploads     IUploadRepository
	Posts       IPostRepository
	Comments    ICommentRepository
}

// NewRepositories initializes the postgres repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Courses:     NewCourseRepository(database),
		Absences:    NewAbsenceRepository(database),
		Homework:    NewHomeworkRepository(database),
		Submissions: NewSubmissionRepository(database),
		Uploads:     NewUploadRepository(database),
		Posts:       NewPostRepository(database),
		Comments:    NewCommentRepository(database),
	}
}

var (
	_ IUserRepository       = (*UserRepository)(nil)
	_ ICourseRepository     = (*CourseRepository)(nil)
	_ IAbsenceRepository    = (*AbsenceRepository)(nil)
	_ IHomeworkRepository   = (*HomeworkRepository)(nil)
	_ ISubmissionRepository = (*SubmissionRepository)(nil)
	_ IUploadRepository     = (*UploadRepository)(nil)
	_ IPostRepository       = (*PostRepository)(nil)
	_ ICommentRepository    = (*CommentRepository)(nil)
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func toSQL(b squirrel.Sqlizer) (string, []interface{}, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}
	return sqlStr, args, nil
}

// execAffected runs b and returns the number of affected rows
func execAffected(ctx context.Context, q db.Querier, b squirrel.Sqlizer) (int64, error) {
	sqlStr, args, err := toSQL(b)
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func exists(ctx context.Context, q db.Querier, b squirrel.SelectBuilder) (bool, error) {
	sqlStr, args, err := toSQL(b.Prefix("SELECT EXISTS (").Suffix(")"))
	if err != nil {
		return false, err
	}
	var found bool
	if err := q.QueryRow(ctx, sqlStr, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}
