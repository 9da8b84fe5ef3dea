package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionDeleteWindow is how long after submitting a student may withdraw
const SubmissionDeleteWindow = time.Hour

// Submission is at most one per (homework, student) among active rows
type Submission struct {
	ID             int64      `json:"id" db:"id"`
	HomeworkID     int64      `json:"homeworkId" db:"homework_id"`
	StudentID      uuid.UUID  `json:"studentId" db:"student_id"`
	SubmissionDate time.Time  `json:"submissionDate" db:"submission_date"`
	Grade          *int       `json:"grade" db:"grade"`
	Feedback       *string    `json:"feedback" db:"feedback"`
	Uploads        []Upload   `json:"uploads"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
}

// Deletable reports whether the withdrawal window is still open at now
func (s *Submission) Deletable(now time.Time) bool {
	return now.Sub(s.SubmissionDate) <= SubmissionDeleteWindow
}

// SubmissionStatus is the roster state of a student for a homework
type SubmissionStatus string

const (
	SubmissionStatusNotSubmitted SubmissionStatus = "NOT_SUBMITTED"
	SubmissionStatusSubmitted    SubmissionStatus = "SUBMITTED"
	SubmissionStatusGraded       SubmissionStatus = "GRADED"
)

// StatusOf derives the roster status of s, which may be nil
func StatusOf(s *Submission) SubmissionStatus {
	switch {
	case s == nil:
		return SubmissionStatusNotSubmitted
	case s.Grade != nil:
		return SubmissionStatusGraded
	default:
		return SubmissionStatusSubmitted
	}
}

// RosterEntry pairs an enrolled student with their submission, if any
type RosterEntry struct {
	Student    UserSummary      `json:"student"`
	Status     SubmissionStatus `json:"status"`
	Submission *Submission      `json:"submission"`
}
