package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/middleware"
)

// SubmissionController handles homework submissions and grading
type SubmissionController struct {
	submissionService services.SubmissionService
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(submissionService services.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// Submit godoc
// @Summary Submit homework
// @Tags homework-submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param homeworkId formData int true "Homework ID"
// @Param files formData file true "Submitted files"
// @Success 201 {object} dto.APIResponse{data=models.Submission}
// @Failure 403 {object} dto.ErrorResponse "Deadline passed or not enrolled"
// @Failure 409 {object} dto.ErrorResponse "Already submitted"
// @Router /homework-submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.SubmitHomeworkRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	files, err := formFiles(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	submission, err := c.submissionService.Submit(ctx.Request.Context(), p, req.HomeworkID, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(submission))
}

// GetMine godoc
// @Summary Get the caller's submission for a homework
// @Tags homework-submissions
// @Produce json
// @Security BearerAuth
// @Param homeworkId path int true "Homework ID"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /homework-submissions/homework/{homeworkId}/mine [get]
func (c *SubmissionController) GetMine(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	homeworkID, err := parseIDParam(ctx, "homeworkId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	submission, err := c.submissionService.GetMine(ctx.Request.Context(), p, homeworkID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(submission))
}

// Delete godoc
// @Summary Withdraw a submission
// @Description Allowed within one hour of submitting
// @Tags homework-submissions
// @Produce json
// @Security BearerAuth
// @Param homeworkId path int true "Homework ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Deletion window elapsed"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /homework-submissions/homework/{homeworkId} [delete]
func (c *SubmissionController) Delete(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	homeworkID, err := parseIDParam(ctx, "homeworkId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.submissionService.Delete(ctx.Request.Context(), p, homeworkID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Submission deleted successfully"}))
}

// Grade godoc
// @Summary Grade a submission
// @Tags homework-submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body dto.GradeSubmissionRequest true "Grade"
// @Success 200 {object} dto.APIResponse{data=models.Submission}
// @Failure 400 {object} dto.ErrorResponse "Grade out of range"
// @Failure 401 {object} dto.ErrorResponse "Not authorized to grade"
// @Router /homework-submissions/{id}/grade [patch]
func (c *SubmissionController) Grade(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.GradeSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	submission, err := c.submissionService.Grade(ctx.Request.Context(), p, id, *req.Grade, req.Feedback)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(submission))
}

// Roster godoc
// @Summary Submission status of every student for a homework
// @Tags homework-submissions
// @Produce json
// @Security BearerAuth
// @Param homeworkId path int true "Homework ID"
// @Success 200 {object} dto.APIResponse{data=[]models.RosterEntry}
// @Failure 403 {object} dto.ErrorResponse "Not the teacher of the course"
// @Router /homework-submissions/homework/{homeworkId} [get]
func (c *SubmissionController) Roster(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	homeworkID, err := parseIDParam(ctx, "homeworkId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	roster, err := c.submissionService.Roster(ctx.Request.Context(), p, homeworkID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(roster))
}
