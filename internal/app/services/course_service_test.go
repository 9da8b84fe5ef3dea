package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/coursecode"
)

func courseRequest(invitation string, emails ...string) *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		Title:          "Algebra",
		Description:    "Linear algebra",
		Type:           "lecture",
		StartDate:      "2026-09-01",
		InvitationType: invitation,
		StudentEmails:  emails,
	}
}

func TestCourseService_CreateWithCodeAndJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)

	resp, err := f.courses.CreateCourse(ctx, teacher, courseRequest("code"))
	require.NoError(t, err)
	require.Len(t, resp.CourseCode, coursecode.DefaultLength)
	assert.Empty(t, f.mailer.messages())

	require.NoError(t, f.courses.JoinByCode(ctx, student, " "+strings.ToLower(resp.CourseCode)+" "))

	err = f.courses.JoinByCode(ctx, student, resp.CourseCode)
	assertAppError(t, err, apperrors.ErrConflict, "Already enrolled")

	err = f.courses.JoinByCode(ctx, student, "ZZZZZZ")
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Course not found")

	err = f.courses.JoinByCode(ctx, teacher, resp.CourseCode)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	enrolled, err := f.courses.ListEnrolledCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, resp.CourseID, enrolled[0].ID)

	students, err := f.courses.ListStudents(ctx, teacher, resp.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 1, students.Count)
	assert.Equal(t, "Algebra", students.Title)
}

func TestCourseService_CreateWithEmailInvitations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)

	resp, err := f.courses.CreateCourse(ctx, teacher, courseRequest("email", "a@example.com", "b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Invitation emails sent successfully", resp.Message)
	assert.Empty(t, resp.CourseCode)

	assert.Eventually(t, func() bool { return len(f.mailer.messages()) == 2 }, time.Second, 10*time.Millisecond)

	course, err := f.repos.Courses.GetByID(ctx, resp.CourseID)
	require.NoError(t, err)
	for _, msg := range f.mailer.messages() {
		assert.Equal(t, "Course Invitation", msg.Subject)
		assert.Equal(t, "You've been invited to join a course. Use this code to join: "+*course.CourseCode, msg.Text)
	}
}

func TestCourseService_CreateValidationPersistsNothing(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.CreateCourseRequest
		message string
	}{
		{name: "unknown invitation type", req: courseRequest("carrier-pigeon"), message: "Invalid invitation type"},
		{name: "email without recipients", req: courseRequest("email"), message: "Student emails are required for email invitations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			teacher := f.user(t, "tina", models.UserTypeTeacher)

			_, err := f.courses.CreateCourse(ctx, teacher, tt.req)
			assertAppError(t, err, apperrors.ErrConflict, tt.message)

			courses, err := f.courses.ListTeacherCourses(ctx, teacher)
			require.NoError(t, err)
			assert.Empty(t, courses)
		})
	}
}

func TestCourseService_Archive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	other := f.user(t, "otto", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	courseID := f.course(t, teacher, student)

	err := f.courses.ArchiveCourse(ctx, other, courseID)
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Course not found or you do not have permission to archive it")

	require.NoError(t, f.courses.ArchiveCourse(ctx, teacher, courseID))

	courses, err := f.courses.ListEnrolledCourses(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, courses)

	err = f.courses.JoinByInvitation(ctx, f.user(t, "newbie", models.UserTypeStudent), courseID)
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Course not found")

	_, err = f.courses.ListStudents(ctx, teacher, courseID)
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Course not found")
}

func TestCourseService_ListStudentsRequiresMembership(t *testing.T) {
	f := newFixture(t)
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	outsider := f.user(t, "olga", models.UserTypeStudent)
	courseID := f.course(t, teacher)

	_, err := f.courses.ListStudents(context.Background(), outsider, courseID)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "You are not a member of this course")
}
