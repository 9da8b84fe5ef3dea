package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/middleware"
	"github.com/yigit/classroom/internal/pkg/helpers"
)

// AbsenceController exposes the absence workflow to teachers and students
type AbsenceController struct {
	absenceService services.AbsenceService
}

// NewAbsenceController creates a new AbsenceController
func NewAbsenceController(absenceService services.AbsenceService) *AbsenceController {
	return &AbsenceController{absenceService: absenceService}
}

// paginate slices a full listing into the page requested by ?page= and ?size=
func paginate(ctx *gin.Context, absences []models.Absence) dto.PaginatedResponse {
	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.PageBounds(page, size, len(absences))
	return dto.PaginatedResponse{
		Items:      absences[start:end],
		Pagination: helpers.NewPaginationInfo(int64(len(absences)), page, size),
	}
}

// absenceAction runs a state transition on the absence named by the :id path parameter
func (c *AbsenceController) absenceAction(ctx *gin.Context, action func(p models.Principal, id int64) (*models.Absence, error)) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	absence, err := action(p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(absence))
}

// CreateAbsence godoc
// @Summary Record an absence
// @Tags absences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAbsenceRequest true "Absence"
// @Success 201 {object} dto.APIResponse{data=models.Absence}
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Not the course owner or student not enrolled"
// @Router /absences/teacher [post]
func (c *AbsenceController) CreateAbsence(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateAbsenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	absence, err := c.absenceService.CreateAbsence(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(absence))
}

// JustifyAbsence godoc
// @Summary Justify an absence
// @Tags absences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Absence ID"
// @Param request body dto.JustifyAbsenceRequest true "Justification"
// @Success 200 {object} dto.APIResponse{data=models.Absence}
// @Failure 403 {object} dto.ErrorResponse "Not your absence"
// @Failure 409 {object} dto.ErrorResponse "Already justified or deleted"
// @Router /absences/student/{id}/justify [patch]
func (c *AbsenceController) JustifyAbsence(ctx *gin.Context) {
	var req dto.JustifyAbsenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	c.absenceAction(ctx, func(p models.Principal, id int64) (*models.Absence, error) {
		return c.absenceService.JustifyAbsence(ctx.Request.Context(), p, id, req.Justification)
	})
}

// ValidateAbsence godoc
// @Summary Accept a justification
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param id path int true "Absence ID"
// @Success 200 {object} dto.APIResponse{data=models.Absence}
// @Failure 409 {object} dto.ErrorResponse "Already validated or nothing to validate"
// @Router /absences/teacher/{id}/validate [patch]
func (c *AbsenceController) ValidateAbsence(ctx *gin.Context) {
	c.absenceAction(ctx, func(p models.Principal, id int64) (*models.Absence, error) {
		return c.absenceService.ValidateAbsence(ctx.Request.Context(), p, id)
	})
}

// RejectAbsence godoc
// @Summary Reject a justification
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param id path int true "Absence ID"
// @Success 200 {object} dto.APIResponse{data=models.Absence}
// @Failure 409 {object} dto.ErrorResponse "Already validated or nothing to reject"
// @Router /absences/teacher/{id}/reject [patch]
func (c *AbsenceController) RejectAbsence(ctx *gin.Context) {
	c.absenceAction(ctx, func(p models.Principal, id int64) (*models.Absence, error) {
		return c.absenceService.RejectAbsence(ctx.Request.Context(), p, id)
	})
}

// DeleteAbsence godoc
// @Summary Delete an absence
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param id path int true "Absence ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Absence not found"
// @Router /absences/teacher/{id} [delete]
func (c *AbsenceController) DeleteAbsence(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.absenceService.DeleteAbsence(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Absence deleted successfully"}))
}

// ListTeacherAbsences godoc
// @Summary List absences in the teacher's courses
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID"
// @Param courseId query int false "Course ID"
// @Param from query string false "From date (YYYY-MM-DD or RFC3339)"
// @Param to query string false "To date (YYYY-MM-DD or RFC3339)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /absences/teacher [get]
func (c *AbsenceController) ListTeacherAbsences(ctx *gin.Context) {
	c.list(ctx, c.absenceService.ListForTeacher)
}

// ListStudentAbsences godoc
// @Summary List the student's absences
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Course ID"
// @Param from query string false "From date"
// @Param to query string false "To date"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /absences/student [get]
func (c *AbsenceController) ListStudentAbsences(ctx *gin.Context) {
	c.list(ctx, c.absenceService.ListForStudent)
}

type absenceLister func(ctx context.Context, p models.Principal, query dto.AbsenceQuery) ([]models.Absence, error)

func (c *AbsenceController) list(ctx *gin.Context, fetch absenceLister) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var query dto.AbsenceQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	absences, err := fetch(ctx.Request.Context(), p, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paginate(ctx, absences)))
}

// CountForCourse godoc
// @Summary Absence counts of the student in one course
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param courseId query int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.AbsenceCountResponse}
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in the course"
// @Router /absences/student/absence-count-course [get]
func (c *AbsenceController) CountForCourse(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var query dto.CourseAbsenceCountQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.absenceService.CountForStudentCourse(ctx.Request.Context(), p, query.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// StudentSummary godoc
// @Summary Absence counts of the student per enrolled course
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.CourseAbsenceCount}
// @Router /absences/student/summary [get]
func (c *AbsenceController) StudentSummary(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	summary, err := c.absenceService.SummaryForStudent(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
}

// UnjustifiedCount godoc
// @Summary Number of unjustified absences of the student
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnjustifiedCountResponse}
// @Router /absences/student/unjustified-count [get]
func (c *AbsenceController) UnjustifiedCount(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	count, err := c.absenceService.UnjustifiedCount(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnjustifiedCountResponse{Unjustified: count}))
}

// CourseStudentCounts godoc
// @Summary Absence counts of every student of a course
// @Tags absences
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseAbsencesResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the teacher of the course"
// @Router /absences/teacher/courses/{courseId}/counts [get]
func (c *AbsenceController) CourseStudentCounts(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.absenceService.CourseStudentCounts(ctx.Request.Context(), p, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
