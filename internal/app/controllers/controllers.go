// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/middleware"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// filesField is the multipart field every upload endpoint reads
const filesField = "files"

// parseIDParam parses a positive integer ID from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidArgumentError("Invalid " + paramName)
	}
	return id, nil
}

// principal returns the authenticated caller or answers 401
func principal(ctx *gin.Context) (models.Principal, bool) {
	p, ok := middleware.GetPrincipal(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Authentication required"))
	}
	return p, ok
}

// formFiles returns the uploaded files. A request without a multipart body has none.
func formFiles(ctx *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.NewInvalidArgumentError("Invalid multipart form")
	}
	return form.File[filesField], nil
}
