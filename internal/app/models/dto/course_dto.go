package dto

import (
	"time"

	"github.com/yigit/classroom/internal/app/models"
)

// CreateCourseRequest creates a course and invites students by code or by email
type CreateCourseRequest struct {
	Title          string   `json:"title" binding:"required,max=255"`
	Description    string   `json:"description"`
	Type           string   `json:"type" binding:"max=100"`
	StartDate      string   `json:"startDate" binding:"required,dateortime" example:"2026-09-01"`
	InvitationType string   `json:"invitationType" binding:"required" example:"code"`
	StudentEmails  []string `json:"studentEmails" binding:"omitempty,dive,email"`
}

// CreateCourseResponse carries the code for code invitations, a message otherwise
type CreateCourseResponse struct {
	CourseID   int64  `json:"courseId"`
	CourseCode string `json:"courseCode,omitempty" example:"K7Q2ZD"`
	Message    string `json:"message,omitempty"`
}

// JoinCourseRequest enrolls the caller using a course code
type JoinCourseRequest struct {
	CourseCode string `json:"courseCode" binding:"required,coursecode"`
}

// CourseResponse is the public view of a course
type CourseResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	StartDate   time.Time `json:"startDate"`
	CourseCode  *string   `json:"courseCode,omitempty"`
	TeacherID   string    `json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCourseResponse maps a course. The code is shown to its teacher only.
func NewCourseResponse(c models.Course, showCode bool) CourseResponse {
	resp := CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Type:        c.Type,
		StartDate:   c.StartDate,
		TeacherID:   c.TeacherID.String(),
		CreatedAt:   c.CreatedAt,
	}
	if showCode {
		resp.CourseCode = c.CourseCode
	}
	return resp
}

// CourseStudentsResponse is the roster of a course
type CourseStudentsResponse struct {
	CourseID int64                `json:"courseId"`
	Title    string               `json:"title"`
	Students []models.UserSummary `json:"students"`
	Count    int                  `json:"count"`
}
