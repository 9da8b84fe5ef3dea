package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 2 * time.Hour,
		TokenIssuer:     "classroom-test",
	})
}

func protectedRouter(m *AuthMiddleware, role models.UserType) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if role != "" {
		handlers = append(handlers, m.RoleRequired(role))
	}
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.String(http.StatusOK, p.ID.String())
	})
	r.GET("/me", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtSvc := newJWT()
	user := &models.User{ID: uuid.New(), Email: "t@example.com", FirstName: "T", LastName: "T", Type: models.UserTypeTeacher}
	pair, err := jwtSvc.GenerateTokenPair(user)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		role   models.UserType
		status int
	}{
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "refresh token rejected", header: "Bearer " + pair.RefreshToken, status: http.StatusUnauthorized},
		{name: "bearer header", header: "Bearer " + pair.AccessToken, status: http.StatusOK},
		{name: "query token", query: pair.AccessToken, status: http.StatusOK},
		{name: "role matches", header: "Bearer " + pair.AccessToken, role: models.UserTypeTeacher, status: http.StatusOK},
		{name: "role mismatch", header: "Bearer " + pair.AccessToken, role: models.UserTypeStudent, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(NewAuthMiddleware(jwtSvc), tt.role)
			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, user.ID.String(), w.Body.String())
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found", apperrors.NewResourceNotFoundError("Course not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
		{"conflict", apperrors.NewConflictError("Already enrolled"), http.StatusConflict, dto.ErrorCodeConflict, "Already enrolled"},
		{"forbidden", apperrors.NewForbiddenError("You are not the teacher of this course"), http.StatusForbidden, dto.ErrorCodeForbidden, "You are not the teacher of this course"},
		{"invalid argument", apperrors.NewInvalidArgumentError("Invalid invitation type"), http.StatusBadRequest, dto.ErrorCodeInvalidArgument, "Invalid invitation type"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
		{"internal hides cause", apperrors.NewInternalError("db down", errors.New("dial tcp")), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}
