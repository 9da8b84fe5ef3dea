package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories/memory"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

func TestMembershipService_IsMember(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()

	teacher := models.User{FirstName: "T", LastName: "T", Email: "t@example.com", Type: models.UserTypeTeacher}
	student := models.User{FirstName: "S", LastName: "S", Email: "s@example.com", Type: models.UserTypeStudent}
	outsider := models.User{FirstName: "O", LastName: "O", Email: "o@example.com", Type: models.UserTypeStudent}
	for _, u := range []*models.User{&teacher, &student, &outsider} {
		require.NoError(t, repos.Users.Create(ctx, u))
	}

	course := models.Course{Title: "Biology", TeacherID: teacher.ID}
	require.NoError(t, repos.Courses.Create(ctx, &course))
	_, err := repos.Courses.EnrollStudent(ctx, course.ID, student.ID)
	require.NoError(t, err)

	svc := NewMembershipService(repos.Courses)

	tests := []struct {
		name     string
		userID   uuid.UUID
		courseID int64
		want     models.Membership
		wantErr  error
	}{
		{name: "teacher", userID: teacher.ID, courseID: course.ID, want: models.MembershipTeacher},
		{name: "student", userID: student.ID, courseID: course.ID, want: models.MembershipStudent},
		{name: "outsider", userID: outsider.ID, courseID: course.ID, want: models.MembershipNone},
		{name: "nil user", userID: uuid.Nil, courseID: course.ID, want: models.MembershipNone, wantErr: apperrors.ErrInvalidArgument},
		{name: "zero course", userID: student.ID, courseID: 0, want: models.MembershipNone, wantErr: apperrors.ErrInvalidArgument},
		{name: "missing course", userID: student.ID, courseID: 999, want: models.MembershipNone, wantErr: apperrors.ErrResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsMember(ctx, tt.userID, tt.courseID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("archived course is not found", func(t *testing.T) {
		archived, err := repos.Courses.Archive(ctx, course.ID, teacher.ID)
		require.NoError(t, err)
		require.True(t, archived)

		_, err = svc.IsMember(ctx, student.ID, course.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestMembershipService_RequireMembership(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()

	teacher := models.User{FirstName: "T", LastName: "T", Email: "t@example.com", Type: models.UserTypeTeacher}
	student := models.User{FirstName: "S", LastName: "S", Email: "s@example.com", Type: models.UserTypeStudent}
	require.NoError(t, repos.Users.Create(ctx, &teacher))
	require.NoError(t, repos.Users.Create(ctx, &student))
	course := models.Course{Title: "Chemistry", TeacherID: teacher.ID}
	require.NoError(t, repos.Courses.Create(ctx, &course))

	svc := NewMembershipService(repos.Courses)
	studentPrincipal := models.PrincipalFromUser(student)

	_, err := svc.RequireMembership(ctx, studentPrincipal, course.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	msg, _ := apperrors.Message(err)
	assert.Equal(t, "You are not a member of this course", msg)

	_, err = repos.Courses.EnrollStudent(ctx, course.ID, student.ID)
	require.NoError(t, err)

	m, err := svc.RequireMembership(ctx, studentPrincipal, course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStudent, m)

	_, err = svc.RequireMembership(ctx, studentPrincipal, course.ID, models.MembershipTeacher)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	msg, _ = apperrors.Message(err)
	assert.Equal(t, "You are not the teacher of this course", msg)
}

func TestRequireRole(t *testing.T) {
	p := models.Principal{ID: uuid.New(), Type: models.UserTypeStudent}
	assert.NoError(t, RequireRole(p, models.UserTypeStudent))
	assert.ErrorIs(t, RequireRole(p, models.UserTypeTeacher), apperrors.ErrPermissionDenied)
}
