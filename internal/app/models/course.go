package models

import (
	"time"

	"github.com/google/uuid"
)

// InvitationType selects how students are invited at course creation
type InvitationType string

const (
	InvitationTypeCode  InvitationType = "code"
	InvitationTypeEmail InvitationType = "email"
)

// Course is owned by exactly one teacher; CourseCode is unique among active courses.
type Course struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Type        string     `json:"type" db:"type"`
	StartDate   time.Time  `json:"startDate" db:"start_date"`
	CourseCode  *string    `json:"courseCode,omitempty" db:"course_code"`
	TeacherID   uuid.UUID  `json:"teacherId" db:"teacher_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// Membership is the relation of a user to a course
type Membership string

const (
	MembershipNone    Membership = "none"
	MembershipStudent Membership = "student"
	MembershipTeacher Membership = "teacher"
)

// IsMember reports whether m is teacher or student
func (m Membership) IsMember() bool {
	return m == MembershipStudent || m == MembershipTeacher
}
