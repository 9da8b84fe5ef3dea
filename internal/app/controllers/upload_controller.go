package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/services"
	"github.com/yigit/classroom/internal/middleware"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// UploadController stores and serves files
type UploadController struct {
	uploadService services.UploadService
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService services.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// Upload godoc
// @Summary Upload files
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files (at most 10)"
// @Success 201 {object} dto.APIResponse{data=[]dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "No files or too many files"
// @Router /files/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	files, err := formFiles(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	uploads, err := c.uploadService.Upload(ctx.Request.Context(), p, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewUploadResponses(uploads)))
}

// Download godoc
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param fileId path string true "File ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files/{fileId} [get]
func (c *UploadController) Download(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("fileId"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewInvalidArgumentError("Invalid file ID"))
		return
	}

	upload, path, err := c.uploadService.Open(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Type", upload.MimeType)
	ctx.FileAttachment(path, upload.OriginalName)
}
