package models

import (
	"time"

	"github.com/google/uuid"
)

// Homework is issued by the course teacher with a submission deadline
type Homework struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Deadline    time.Time  `json:"deadline" db:"deadline"`
	CourseID    int64      `json:"courseId" db:"course_id"`
	TeacherID   uuid.UUID  `json:"teacherId" db:"teacher_id"`
	Attachments []Upload   `json:"attachments"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// DeadlinePassed reports whether now is strictly after the deadline
func (h *Homework) DeadlinePassed(now time.Time) bool {
	return now.After(h.Deadline)
}
