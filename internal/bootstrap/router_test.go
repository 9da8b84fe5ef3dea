package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/repositories/memory"
	"github.com/yigit/classroom/internal/config"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.JWT.Secret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "classroom-test"
	cfg.Storage.Path = t.TempDir()
	cfg.Storage.MaxFiles = 5
	cfg.Storage.MaxUploadSize = 1 << 20
	cfg.Mail.Driver = "log"
	cfg.Mail.Timeout = "1s"

	deps, err := BuildDependencies(cfg, memory.NewRepositories(), zerolog.Nop())
	require.NoError(t, err)

	return &testAPI{t: t, router: SetupRouter(cfg, deps, zerolog.Nop())}
}

func (a *testAPI) do(method, path, token string, body []byte, contentType string) (int, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *testAPI) send(method, path, token string, payload any) (int, envelope) {
	a.t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(a.t, err)
	}
	return a.do(method, path, token, body, "application/json")
}

func (a *testAPI) multipart(path, token string, fields map[string]string, files map[string]string) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(a.t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())
	return a.do(http.MethodPost, path, token, buf.Bytes(), mw.FormDataContentType())
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (a *testAPI) signUp(first, email, userType string) (token, id string) {
	a.t.Helper()
	status, env := a.send(http.MethodPost, "/auth/signup", "", dto.SignUpRequest{
		FirstName: first,
		LastName:  "Tester",
		Email:     email,
		Password:  "password123",
		Type:      userType,
	})
	require.Equal(a.t, http.StatusCreated, status, env.Error)
	resp := decode[dto.AuthResponse](a.t, env)
	return resp.Token.AccessToken, resp.User.ID.String()
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.send(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRouter_AuthGuards(t *testing.T) {
	api := newTestAPI(t)
	studentToken, _ := api.signUp("Sam", "sam@example.com", "student")

	status, env := api.send(http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, env = api.send(http.MethodPost, "/courses", studentToken, dto.CreateCourseRequest{
		Title: "Algebra", StartDate: "2026-09-01", InvitationType: "code",
	})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrorCodeForbidden, env.Error.Code)

	status, env = api.send(http.MethodGet, "/users/me", studentToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "sam@example.com", decode[dto.UserResponse](t, env).Email)
}

func TestRouter_CourseAbsenceAndSubmissionFlow(t *testing.T) {
	api := newTestAPI(t)
	teacherToken, _ := api.signUp("Tina", "tina@example.com", "teacher")
	studentToken, studentID := api.signUp("Sam", "sam@example.com", "student")

	// course creation returns a join code
	status, env := api.send(http.MethodPost, "/courses", teacherToken, dto.CreateCourseRequest{
		Title: "Algebra", StartDate: "2026-09-01", InvitationType: "code",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	course := decode[dto.CreateCourseResponse](t, env)
	require.NotEmpty(t, course.CourseCode)

	status, env = api.send(http.MethodPost, "/courses/join", studentToken, dto.JoinCourseRequest{CourseCode: course.CourseCode})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = api.send(http.MethodPost, "/courses/join", studentToken, dto.JoinCourseRequest{CourseCode: course.CourseCode})
	assert.Equal(t, http.StatusConflict, status)

	// absence: create, justify, validate, validate again
	status, env = api.send(http.MethodPost, "/absences/teacher", teacherToken, dto.CreateAbsenceRequest{
		StudentID: studentID, CourseID: course.CourseID, Date: "2026-10-14",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	absence := decode[struct {
		ID        int64 `json:"id"`
		Justified bool  `json:"justified"`
	}](t, env)
	assert.False(t, absence.Justified)

	absencePath := "/absences/%s/" + strconv.FormatInt(absence.ID, 10)
	status, env = api.send(http.MethodPatch, fmt.Sprintf(absencePath, "student")+"/justify", studentToken,
		dto.JustifyAbsenceRequest{Justification: "doctor"})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = api.send(http.MethodPatch, fmt.Sprintf(absencePath, "teacher")+"/validate", teacherToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	validated := decode[struct {
		Justified     bool    `json:"justified"`
		Justification *string `json:"justification"`
	}](t, env)
	assert.True(t, validated.Justified)
	assert.Nil(t, validated.Justification)

	status, env = api.send(http.MethodPatch, fmt.Sprintf(absencePath, "teacher")+"/validate", teacherToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Absence has already been validated", env.Error.Message)

	status, env = api.send(http.MethodGet, "/absences/student/unjustified-count", studentToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, int64(0), decode[dto.UnjustifiedCountResponse](t, env).Unjustified)

	// homework with a deadline tomorrow, then a multipart submission
	status, env = api.multipart("/homework", teacherToken, map[string]string{
		"courseId": strconv.FormatInt(course.CourseID, 10),
		"title":    "Exercises 1-10",
		"deadline": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}, nil)
	require.Equal(t, http.StatusCreated, status, env.Error)
	homework := decode[struct {
		ID int64 `json:"id"`
	}](t, env)

	submitFields := map[string]string{"homeworkId": strconv.FormatInt(homework.ID, 10)}
	status, env = api.multipart("/homework-submissions", studentToken, submitFields, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = api.multipart("/homework-submissions", studentToken, submitFields, map[string]string{"answers.txt": "42"})
	require.Equal(t, http.StatusCreated, status, env.Error)
	submission := decode[struct {
		ID      int64      `json:"id"`
		Uploads []struct{} `json:"uploads"`
		Grade   *int       `json:"grade"`
	}](t, env)
	assert.Len(t, submission.Uploads, 1)
	assert.Nil(t, submission.Grade)

	status, env = api.multipart("/homework-submissions", studentToken, submitFields, map[string]string{"again.txt": "43"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = api.send(http.MethodPatch, "/homework-submissions/"+strconv.FormatInt(submission.ID, 10)+"/grade",
		teacherToken, map[string]any{"grade": 90})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = api.send(http.MethodPatch, "/homework-submissions/"+strconv.FormatInt(submission.ID, 10)+"/grade",
		studentToken, map[string]any{"grade": 100})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = api.send(http.MethodGet, "/homework-submissions/homework/"+strconv.FormatInt(homework.ID, 10), teacherToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	roster := decode[[]struct {
		Status string `json:"status"`
	}](t, env)
	require.Len(t, roster, 1)
	assert.Equal(t, "GRADED", roster[0].Status)
}
