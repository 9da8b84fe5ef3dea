package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/logger"
)

// HandleAPIError maps an application error to its status and error envelope.
// The message carried by a CustomError is surfaced verbatim.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	msg, hasMsg := apperrors.Message(err)
	detail := func(code dto.ErrorCode, fallback string) *dto.ErrorDetail {
		if hasMsg {
			return dto.NewErrorDetail(code, msg)
		}
		return dto.NewErrorDetail(code, fallback)
	}

	switch {
	case errors.Is(err, apperrors.ErrInternal):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	case errors.Is(err, apperrors.ErrResourceNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, detail(dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, detail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, detail(dto.ErrorCodeConflict, "Conflict")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, detail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, detail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, detail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, detail(dto.ErrorCodeInvalidArgument, "Invalid argument")
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, detail(dto.ErrorCodeValidationFailed, "Validation failed")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
