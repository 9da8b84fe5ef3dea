package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// HomeworkRepository implements repositories.IHomeworkRepository
type HomeworkRepository struct {
	s *Store
}

func (r *HomeworkRepository) Create(_ context.Context, homework *models.Homework, attachments []models.Upload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	homework.ID = r.s.nextID()
	homework.CreatedAt = r.s.now()
	homework.UpdatedAt = homework.CreatedAt
	id := homework.ID
	homework.Attachments = r.s.insertUploads(attachments, func(u *models.Upload) { u.HomeworkID = &id })

	stored := *homework
	stored.Attachments = nil
	r.s.homework[homework.ID] = stored
	return nil
}

// activeHomework must be called with mu held
func (r *HomeworkRepository) activeHomework(id int64) (models.Homework, bool) {
	h, ok := r.s.homework[id]
	if !ok || h.DeletedAt != nil {
		return h, false
	}
	if _, ok := r.s.activeCourse(h.CourseID); !ok {
		return h, false
	}
	h.Attachments = r.s.uploadsOf(homeworkOwner, h.ID)
	return h, true
}

func (r *HomeworkRepository) GetByID(_ context.Context, id int64) (*models.Homework, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.activeHomework(id)
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return &h, nil
}

func (r *HomeworkRepository) Update(_ context.Context, homework *models.Homework) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.homework[homework.ID]
	if !ok || h.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	h.Title = homework.Title
	h.Description = homework.Description
	h.Deadline = homework.Deadline
	h.UpdatedAt = r.s.now()
	r.s.homework[h.ID] = h
	homework.UpdatedAt = h.UpdatedAt
	return nil
}

func (r *HomeworkRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.homework[id]
	if !ok || h.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	h.DeletedAt = r.s.timestamp()
	r.s.homework[id] = h
	return nil
}

func (r *HomeworkRepository) list(match func(models.Homework) bool) []models.Homework {
	var out []models.Homework
	for id := range r.s.homework {
		if h, ok := r.activeHomework(id); ok && match(h) {
			out = append(out, h)
		}
	}
	slices.SortFunc(out, func(a, b models.Homework) int {
		if c := a.Deadline.Compare(b.Deadline); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (r *HomeworkRepository) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]models.Homework, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(h models.Homework) bool { return h.TeacherID == teacherID }), nil
}

func (r *HomeworkRepository) ListByCourse(_ context.Context, courseID int64) ([]models.Homework, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(h models.Homework) bool { return h.CourseID == courseID }), nil
}

func (r *HomeworkRepository) ListForStudent(_ context.Context, studentID uuid.UUID) ([]models.Homework, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(h models.Homework) bool {
		_, ok := r.s.enrollments[h.CourseID][studentID]
		return ok
	}), nil
}

// SubmissionRepository implements repositories.ISubmissionRepository
type SubmissionRepository struct {
	s *Store
}

func (r *SubmissionRepository) Create(_ context.Context, submission *models.Submission, uploads []models.Upload) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.findActive(submission.HomeworkID, submission.StudentID); ok {
		return fmt.Errorf("%w: active submission exists", apperrors.ErrConflict)
	}
	submission.ID = r.s.nextID()
	id := submission.ID
	submission.Uploads = r.s.insertUploads(uploads, func(u *models.Upload) { u.SubmissionID = &id })

	stored := *submission
	stored.Uploads = nil
	r.s.submissions[submission.ID] = stored
	return nil
}

// findActive must be called with mu held
func (r *SubmissionRepository) findActive(homeworkID int64, studentID uuid.UUID) (models.Submission, bool) {
	for _, s := range r.s.submissions {
		if s.DeletedAt == nil && s.HomeworkID == homeworkID && s.StudentID == studentID {
			return r.withUploads(s), true
		}
	}
	return models.Submission{}, false
}

func (r *SubmissionRepository) withUploads(s models.Submission) models.Submission {
	s.Uploads = r.s.uploadsOf(submissionOwner, s.ID)
	return s
}

func (r *SubmissionRepository) GetActive(_ context.Context, homeworkID int64, studentID uuid.UUID) (*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.findActive(homeworkID, studentID)
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return &s, nil
}

func (r *SubmissionRepository) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.submissions[id]
	if !ok || s.DeletedAt != nil {
		return nil, apperrors.ErrResourceNotFound
	}
	s = r.withUploads(s)
	return &s, nil
}

func (r *SubmissionRepository) Exists(_ context.Context, homeworkID int64, studentID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.findActive(homeworkID, studentID)
	return ok, nil
}

func (r *SubmissionRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.submissions[id]
	if !ok || s.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	s.DeletedAt = r.s.timestamp()
	r.s.submissions[id] = s

	for uid, u := range r.s.uploads {
		if u.DeletedAt == nil && u.SubmissionID != nil && *u.SubmissionID == id {
			u.DeletedAt = s.DeletedAt
			r.s.uploads[uid] = u
		}
	}
	return nil
}

func (r *SubmissionRepository) Grade(_ context.Context, id int64, grade int, feedback *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.submissions[id]
	if !ok || s.DeletedAt != nil {
		return apperrors.ErrResourceNotFound
	}
	s.Grade = &grade
	s.Feedback = feedback
	r.s.submissions[id] = s
	return nil
}

func (r *SubmissionRepository) ListByHomework(_ context.Context, homeworkID int64) ([]models.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Submission
	for _, s := range r.s.submissions {
		if s.DeletedAt == nil && s.HomeworkID == homeworkID {
			out = append(out, r.withUploads(s))
		}
	}
	slices.SortFunc(out, func(a, b models.Submission) int { return a.SubmissionDate.Compare(b.SubmissionDate) })
	return out, nil
}
