package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/middleware"
)

// HomeworkController handles homework endpoints
type HomeworkController struct {
	homeworkService services.HomeworkService
}

// NewHomeworkController creates a new HomeworkController
func NewHomeworkController(homeworkService services.HomeworkService) *HomeworkController {
	return &HomeworkController{homeworkService: homeworkService}
}

// CreateHomework godoc
// @Summary Create homework
// @Description Creates homework for a course with optional attachments
// @Tags homework
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId formData int true "Course ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param deadline formData string true "Deadline (RFC3339)"
// @Param files formData file false "Attachments"
// @Success 201 {object} dto.APIResponse{data=models.Homework}
// @Failure 403 {object} dto.ErrorResponse "Not the teacher of the course"
// @Router /homework [post]
func (c *HomeworkController) CreateHomework(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateHomeworkRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	files, err := formFiles(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	homework, err := c.homeworkService.CreateHomework(ctx.Request.Context(), p, &req, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(homework))
}

// UpdateHomework godoc
// @Summary Update homework
// @Tags homework
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Homework ID"
// @Param request body dto.UpdateHomeworkRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=models.Homework}
// @Router /homework/{id} [patch]
func (c *HomeworkController) UpdateHomework(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.UpdateHomeworkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	homework, err := c.homeworkService.UpdateHomework(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(homework))
}

// DeleteHomework godoc
// @Summary Delete homework
// @Tags homework
// @Produce json
// @Security BearerAuth
// @Param id path int true "Homework ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Router /homework/{id} [delete]
func (c *HomeworkController) DeleteHomework(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.homeworkService.DeleteHomework(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Homework deleted successfully"}))
}

// GetHomework godoc
// @Summary Get homework
// @Tags homework
// @Produce json
// @Security BearerAuth
// @Param id path int true "Homework ID"
// @Success 200 {object} dto.APIResponse{data=models.Homework}
// @Failure 404 {object} dto.ErrorResponse "Homework not found"
// @Router /homework/{id} [get]
func (c *HomeworkController) GetHomework(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	homework, err := c.homeworkService.GetHomework(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(homework))
}

// ListMyHomework godoc
// @Summary List the caller's homework
// @Description Teachers get the homework they issued, students the homework of their courses
// @Tags homework
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Homework}
// @Router /homework [get]
func (c *HomeworkController) ListMyHomework(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	list, err := c.homeworkService.ListMine(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// ListCourseHomework godoc
// @Summary List the homework of a course
// @Tags homework
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Homework}
// @Router /homework/course/{courseId} [get]
func (c *HomeworkController) ListCourseHomework(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	courseID, err := parseIDParam(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	list, err := c.homeworkService.ListByCourse(ctx.Request.Context(), p, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}
