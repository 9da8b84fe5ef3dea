package models

import (
	"time"

	"github.com/google/uuid"
)

// Absence of one student from one course on a date.
// Justification holds a pending explanation; Justified is the settled outcome.
type Absence struct {
	ID            int64      `json:"id" db:"id"`
	StudentID     uuid.UUID  `json:"studentId" db:"student_id"`
	CourseID      int64      `json:"courseId" db:"course_id"`
	Date          time.Time  `json:"date" db:"date"`
	Justified     bool       `json:"justified" db:"justified"`
	Justification *string    `json:"justification" db:"justification"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	DeletedAt     *time.Time `json:"-" db:"deleted_at"`

	Student *UserSummary `json:"student,omitempty"`
}

// IsDeleted reports whether the absence was soft-deleted
func (a *Absence) IsDeleted() bool {
	return a.DeletedAt != nil
}

// HasPendingJustification reports whether a justification awaits review
func (a *Absence) HasPendingJustification() bool {
	return a.Justification != nil && *a.Justification != ""
}

// AbsenceState is the justification stage of an absence
type AbsenceState string

const (
	// AbsenceUnjustified has no justification text and is not justified
	AbsenceUnjustified AbsenceState = "unjustified"
	// AbsencePending carries a justification awaiting the teacher
	AbsencePending AbsenceState = "pending"
	// AbsenceValidated was accepted by the teacher
	AbsenceValidated AbsenceState = "validated"
)

// State derives the justification stage
func (a *Absence) State() AbsenceState {
	switch {
	case a.Justified:
		return AbsenceValidated
	case a.HasPendingJustification():
		return AbsencePending
	default:
		return AbsenceUnjustified
	}
}

// AbsenceFilter narrows absence listings. Zero values mean no filter.
type AbsenceFilter struct {
	StudentID *uuid.UUID
	CourseID  *int64
	TeacherID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// AbsenceCount aggregates non-deleted absences
type AbsenceCount struct {
	Total       int64 `json:"total"`
	Justified   int64 `json:"justified"`
	Unjustified int64 `json:"unjustified"`
}

// Add counts one absence
func (c *AbsenceCount) Add(justified bool) {
	c.Total++
	if justified {
		c.Justified++
	} else {
		c.Unjustified++
	}
}

// StudentAbsenceCount is one enrolled student of a course with their counts
type StudentAbsenceCount struct {
	Student UserSummary `json:"student"`
	AbsenceCount
}

// CourseAbsenceCount is one enrolled course of a student with their counts
type CourseAbsenceCount struct {
	CourseID    int64  `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
	AbsenceCount
}
