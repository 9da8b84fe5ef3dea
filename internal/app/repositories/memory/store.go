// Package memory is an in-process implementation of the repository interfaces.
// It enforces the same uniqueness and soft-delete rules as the postgres schema.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
)

var (
	_ repositories.IUserRepository       = (*UserRepository)(nil)
	_ repositories.ICourseRepository     = (*CourseRepository)(nil)
	_ repositories.IAbsenceRepository    = (*AbsenceRepository)(nil)
	_ repositories.IHomeworkRepository   = (*HomeworkRepository)(nil)
	_ repositories.ISubmissionRepository = (*SubmissionRepository)(nil)
	_ repositories.IUploadRepository     = (*UploadRepository)(nil)
	_ repositories.IPostRepository       = (*PostRepository)(nil)
	_ repositories.ICommentRepository    = (*CommentRepository)(nil)
)

// Store holds every table behind one lock
type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users       map[uuid.UUID]models.User
	courses     map[int64]models.Course
	enrollments map[int64]map[uuid.UUID]time.Time
	absences    map[int64]models.Absence
	homework    map[int64]models.Homework
	submissions map[int64]models.Submission
	uploads     map[uuid.UUID]models.Upload
	posts       map[int64]models.Post
	comments    map[int64]models.Comment
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[uuid.UUID]models.User),
		courses:     make(map[int64]models.Course),
		enrollments: make(map[int64]map[uuid.UUID]time.Time),
		absences:    make(map[int64]models.Absence),
		homework:    make(map[int64]models.Homework),
		submissions: make(map[int64]models.Submission),
		uploads:     make(map[uuid.UUID]models.Upload),
		posts:       make(map[int64]models.Post),
		comments:    make(map[int64]models.Comment),
	}
}

// NewRepositories returns repositories backed by a fresh store
func NewRepositories() *repositories.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:       &UserRepository{s: s},
		Courses:     &CourseRepository{s: s},
		Absences:    &AbsenceRepository{s: s},
		Homework:    &HomeworkRepository{s: s},
		Submissions: &SubmissionRepository{s: s},
		Uploads:     &UploadRepository{s: s},
		Posts:       &PostRepository{s: s},
		Comments:    &CommentRepository{s: s},
	}
}

// nextID must be called with mu held
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) timestamp() *time.Time {
	t := s.now()
	return &t
}

// activeCourse must be called with mu held
func (s *Store) activeCourse(id int64) (models.Course, bool) {
	c, ok := s.courses[id]
	return c, ok && c.DeletedAt == nil
}

// uploadsOf returns the active uploads matching owner, must be called with mu held
func (s *Store) uploadsOf(owner func(models.Upload) *int64, id int64) []models.Upload {
	var out []models.Upload
	for _, u := range s.uploads {
		if o := owner(u); u.DeletedAt == nil && o != nil && *o == id {
			out = append(out, u)
		}
	}
	sortUploads(out)
	return out
}

// insertUploads must be called with mu held
func (s *Store) insertUploads(uploads []models.Upload, setOwner func(*models.Upload)) []models.Upload {
	out := make([]models.Upload, len(uploads))
	for i, u := range uploads {
		if setOwner != nil {
			setOwner(&u)
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
		}
		s.uploads[u.ID] = u
		out[i] = u
	}
	return out
}

func submissionOwner(u models.Upload) *int64 { return u.SubmissionID }
func homeworkOwner(u models.Upload) *int64   { return u.HomeworkID }
func postOwner(u models.Upload) *int64       { return u.PostID }
