package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/auth"
)

const principalKey = "principal"

// AccessTokenValidator validates access tokens
type AccessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens AccessTokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens AccessTokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// SetPrincipal stores the authenticated caller on the request context
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the caller stored by JWTAuth
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// JWTAuth middleware for JWT token validation.
// Browsers cannot set headers on WebSocket upgrades, so a "token" query parameter is accepted too.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		var err error

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString, err = auth.ExtractBearerToken(authHeader)
			if err != nil {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
				return
			}
		} else {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		claims, err := m.tokens.ValidateAccessToken(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				code = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			case errors.Is(err, apperrors.ErrInvalidFormat):
				details = "Invalid token format"
			}
			abortUnauthorized(c, code, details)
			return
		}

		principal, err := claims.Principal()
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// RoleRequired rejects callers whose type differs from the required one
func (m *AuthMiddleware) RoleRequired(required models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}
		if principal.Type != required {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("This operation requires a " + string(required) + " account")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
