package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// AbsenceRepository implements repositories.IAbsenceRepository
type AbsenceRepository struct {
	s *Store
}

func (r *AbsenceRepository) Create(_ context.Context, absence *models.Absence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	absence.ID = r.s.nextID()
	absence.CreatedAt = r.s.now()
	stored := *absence
	stored.Student = nil
	r.s.absences[absence.ID] = stored
	return nil
}

func (r *AbsenceRepository) GetByIDWithDeleted(_ context.Context, id int64) (*models.Absence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.absences[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return &a, nil
}

func (r *AbsenceRepository) Transition(_ context.Context, absence *models.Absence, from models.AbsenceState) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.absences[absence.ID]
	if !ok || a.DeletedAt != nil || a.State() != from {
		return false, nil
	}
	a.Justified = absence.Justified
	a.Justification = absence.Justification
	r.s.absences[a.ID] = a
	return true, nil
}

func (r *AbsenceRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.absences[id]
	if !ok || a.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	a.DeletedAt = r.s.timestamp()
	r.s.absences[id] = a
	return nil
}

func (r *AbsenceRepository) List(_ context.Context, filter models.AbsenceFilter) ([]models.Absence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Absence
	for _, a := range r.s.absences {
		if a.DeletedAt != nil {
			continue
		}
		course, ok := r.s.activeCourse(a.CourseID)
		if !ok {
			continue
		}
		switch {
		case filter.StudentID != nil && a.StudentID != *filter.StudentID,
			filter.CourseID != nil && a.CourseID != *filter.CourseID,
			filter.TeacherID != nil && course.TeacherID != *filter.TeacherID,
			filter.From != nil && a.Date.Before(*filter.From),
			filter.To != nil && a.Date.After(*filter.To):
			continue
		}
		if u, ok := r.s.users[a.StudentID]; ok {
			summary := u.Summary()
			a.Student = &summary
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b models.Absence) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// countLocked must be called with mu held
func (r *AbsenceRepository) countLocked(studentID uuid.UUID, courseID int64) models.AbsenceCount {
	var count models.AbsenceCount
	for _, a := range r.s.absences {
		if a.DeletedAt == nil && a.StudentID == studentID && a.CourseID == courseID {
			count.Add(a.Justified)
		}
	}
	return count
}

func (r *AbsenceRepository) CountByCourseStudent(_ context.Context, courseID int64) ([]models.StudentAbsenceCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.StudentAbsenceCount{}
	for studentID := range r.s.enrollments[courseID] {
		u, ok := r.s.users[studentID]
		if !ok || u.DeletedAt != nil {
			continue
		}
		out = append(out, models.StudentAbsenceCount{
			Student:      u.Summary(),
			AbsenceCount: r.countLocked(studentID, courseID),
		})
	}
	slices.SortFunc(out, func(a, b models.StudentAbsenceCount) int { return byName(a.Student, b.Student) })
	return out, nil
}

func (r *AbsenceRepository) CountByStudent(_ context.Context, studentID uuid.UUID) ([]models.CourseAbsenceCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.CourseAbsenceCount{}
	for courseID, students := range r.s.enrollments {
		if _, enrolled := students[studentID]; !enrolled {
			continue
		}
		course, ok := r.s.activeCourse(courseID)
		if !ok {
			continue
		}
		out = append(out, models.CourseAbsenceCount{
			CourseID:     course.ID,
			CourseTitle:  course.Title,
			AbsenceCount: r.countLocked(studentID, courseID),
		})
	}
	slices.SortFunc(out, func(a, b models.CourseAbsenceCount) int { return cmp.Compare(a.CourseTitle, b.CourseTitle) })
	return out, nil
}

func (r *AbsenceRepository) CountForStudentInCourse(_ context.Context, studentID uuid.UUID, courseID int64) (models.AbsenceCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.countLocked(studentID, courseID), nil
}

func (r *AbsenceRepository) CountUnjustified(_ context.Context, studentID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, a := range r.s.absences {
		if a.DeletedAt == nil && a.StudentID == studentID && !a.Justified {
			n++
		}
	}
	return n, nil
}
