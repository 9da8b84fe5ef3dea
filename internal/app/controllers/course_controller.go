package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/middleware"
)

// CourseController handles course and enrollment endpoints
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

func courseResponses(courses []models.Course, showCode bool) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, dto.NewCourseResponse(course, showCode))
	}
	return out
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a course and invites students by code or by email
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCourseResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Only teachers can create courses"
// @Failure 409 {object} dto.ErrorResponse "Invalid invitation type"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.courseService.CreateCourse(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ArchiveCourse godoc
// @Summary Archive a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found or not owned"
// @Router /courses/{id} [delete]
func (c *CourseController) ArchiveCourse(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.courseService.ArchiveCourse(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Course archived successfully"}))
}

// ListMyCourses godoc
// @Summary List the teacher's courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Router /courses/my-courses [get]
func (c *CourseController) ListMyCourses(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	courses, err := c.courseService.ListTeacherCourses(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courseResponses(courses, true)))
}

// ListEnrolledCourses godoc
// @Summary List the student's courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse}
// @Router /courses/my-enrolled-courses [get]
func (c *CourseController) ListEnrolledCourses(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	courses, err := c.courseService.ListEnrolledCourses(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courseResponses(courses, false)))
}

// JoinByCode godoc
// @Summary Join a course with its code
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JoinCourseRequest true "Course code"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /courses/join [post]
func (c *CourseController) JoinByCode(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.JoinCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	if err := c.courseService.JoinByCode(ctx.Request.Context(), p, req.CourseCode); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Successfully joined"}))
}

// JoinByInvitation godoc
// @Summary Join a course from an invitation link
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Router /courses/{id}/join [post]
func (c *CourseController) JoinByInvitation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.courseService.JoinByInvitation(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Successfully joined"}))
}

// ListStudents godoc
// @Summary List the students of a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseStudentsResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a member of the course"
// @Router /courses/{id}/students [get]
func (c *CourseController) ListStudents(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.courseService.ListStudents(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
