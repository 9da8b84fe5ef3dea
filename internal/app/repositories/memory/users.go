package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// UserRepository implements repositories.IUserRepository
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// CourseRepository implements repositories.ICourseRepository
type CourseRepository struct {
	s *Store
}

func (r *CourseRepository) Create(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if course.CourseCode != nil && r.codeExists(*course.CourseCode) {
		return repositories.ErrCourseCodeTaken
	}
	course.ID = r.s.nextID()
	course.CreatedAt = r.s.now()
	course.UpdatedAt = course.CreatedAt
	r.s.courses[course.ID] = *course
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.activeCourse(id)
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return &c, nil
}

func (r *CourseRepository) GetByCode(_ context.Context, code string) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.courses {
		if c.DeletedAt == nil && c.CourseCode != nil && *c.CourseCode == code {
			return &c, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (r *CourseRepository) CodeExists(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.codeExists(code), nil
}

func (r *CourseRepository) codeExists(code string) bool {
	for _, c := range r.s.courses {
		if c.DeletedAt == nil && c.CourseCode != nil && *c.CourseCode == code {
			return true
		}
	}
	return false
}

func (r *CourseRepository) list(match func(models.Course) bool) []models.Course {
	var out []models.Course
	for _, c := range r.s.courses {
		if c.DeletedAt == nil && match(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Course) int {
		if c := b.StartDate.Compare(a.StartDate); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out
}

func (r *CourseRepository) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(c models.Course) bool { return c.TeacherID == teacherID }), nil
}

func (r *CourseRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(c models.Course) bool {
		_, ok := r.s.enrollments[c.ID][studentID]
		return ok
	}), nil
}

func (r *CourseRepository) Archive(_ context.Context, id int64, teacherID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.activeCourse(id)
	if !ok || c.TeacherID != teacherID {
		return false, nil
	}
	c.DeletedAt = r.s.timestamp()
	c.UpdatedAt = *c.DeletedAt
	r.s.courses[id] = c
	return true, nil
}

func (r *CourseRepository) IsStudentEnrolled(_ context.Context, courseID int64, studentID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.enrollments[courseID][studentID]
	return ok, nil
}

func (r *CourseRepository) EnrollStudent(_ context.Context, courseID int64, studentID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.activeCourse(courseID); !ok {
		return false, apperrors.ErrResourceNotFound
	}
	students, ok := r.s.enrollments[courseID]
	if !ok {
		students = make(map[uuid.UUID]time.Time)
		r.s.enrollments[courseID] = students
	}
	if _, enrolled := students[studentID]; enrolled {
		return false, nil
	}
	students[studentID] = r.s.now()
	return true, nil
}

func (r *CourseRepository) ListStudents(_ context.Context, courseID int64) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.User
	for id := range r.s.enrollments[courseID] {
		if u, ok := r.s.users[id]; ok && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return byName(a.Summary(), b.Summary()) })
	return out, nil
}
