package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserType is the discriminator stored in users.type
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
)

// Valid reports whether t is a known user type
func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeTeacher
}

// User is the shared record behind students and teachers ('users' table)
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	FirstName    string     `json:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" db:"last_name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password"`
	Type         UserType   `json:"type" db:"type"`
	Group        *string    `json:"group,omitempty" db:"student_group"` // students only
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// FullName returns "First Last"
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Member is either a Student or a Teacher.
type Member interface {
	Base() User
	member()
}

// Student is a user enrolled in courses
type Student struct {
	User
}

// Teacher is a user owning courses and homework
type Teacher struct {
	User
}

func (s Student) Base() User { return s.User }
func (Student) member()      {}

func (t Teacher) Base() User { return t.User }
func (Teacher) member()      {}

// NewMember resolves the variant of u from its discriminator
func NewMember(u User) (Member, error) {
	switch u.Type {
	case UserTypeStudent:
		return Student{User: u}, nil
	case UserTypeTeacher:
		return Teacher{User: u}, nil
	default:
		return nil, fmt.Errorf("unknown user type %q", u.Type)
	}
}

// Principal is the authenticated caller, passed explicitly into every service call
type Principal struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Type      UserType
}

// PrincipalFromUser builds the principal for u
func PrincipalFromUser(u User) Principal {
	return Principal{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Type:      u.Type,
	}
}

// UserSummary is the public projection of a user embedded in other responses
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Group     *string   `json:"group,omitempty"`
}

// Summary returns the public projection of u
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Group:     u.Group,
	}
}
