package dto

import "github.com/yigit/classroom/internal/app/models"

// CreateAbsenceRequest records an absence of a student in a course
type CreateAbsenceRequest struct {
	StudentID string `json:"studentId" binding:"required,uuid"`
	CourseID  int64  `json:"courseId" binding:"required,min=1"`
	Date      string `json:"date" binding:"required,dateortime" example:"2026-10-15"`
}

// JustifyAbsenceRequest attaches a student's explanation
type JustifyAbsenceRequest struct {
	Justification string `json:"justification" binding:"required,max=2000" example:"doctor"`
}

// AbsenceQuery filters absence listings
type AbsenceQuery struct {
	StudentID string `form:"studentId" binding:"omitempty,uuid"`
	CourseID  int64  `form:"courseId" binding:"omitempty,min=1"`
	From      string `form:"from" binding:"omitempty,dateortime"`
	To        string `form:"to" binding:"omitempty,dateortime"`
}

// CourseAbsenceCountQuery selects the course of a student count
type CourseAbsenceCountQuery struct {
	CourseID int64 `form:"courseId" binding:"required,min=1"`
}

// AbsenceCountResponse holds the counts of one student in one course
type AbsenceCountResponse struct {
	CourseID int64 `json:"courseId"`
	models.AbsenceCount
}

// CourseAbsencesResponse lists every enrolled student of a course with counts
type CourseAbsencesResponse struct {
	CourseID int64                        `json:"courseId"`
	Students []models.StudentAbsenceCount `json:"students"`
}

// UnjustifiedCountResponse is the number of absences still counting against a student
type UnjustifiedCountResponse struct {
	Unjustified int64 `json:"unjustified"`
}
