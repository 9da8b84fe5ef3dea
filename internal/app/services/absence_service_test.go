package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

func assertAppError(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	if message != "" {
		msg, ok := apperrors.Message(err)
		require.True(t, ok, "error carries no message: %v", err)
		assert.Equal(t, message, msg)
	}
}

func absenceRequest(student models.Principal, courseID int64) *dto.CreateAbsenceRequest {
	return &dto.CreateAbsenceRequest{StudentID: student.ID.String(), CourseID: courseID, Date: "2026-10-01"}
}

func TestAbsenceService_Workflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	courseID := f.course(t, teacher, student)

	absence, err := f.absences.CreateAbsence(ctx, teacher, absenceRequest(student, courseID))
	require.NoError(t, err)
	assert.False(t, absence.Justified)
	assert.Nil(t, absence.Justification)
	assert.Contains(t, f.publisher.types(), models.EventAbsenceCreated)

	_, err = f.absences.ValidateAbsence(ctx, teacher, absence.ID)
	assertAppError(t, err, apperrors.ErrConflict, "No justification to validate")

	justified, err := f.absences.JustifyAbsence(ctx, student, absence.ID, "doctor")
	require.NoError(t, err)
	require.NotNil(t, justified.Justification)
	assert.Equal(t, "doctor", *justified.Justification)
	assert.False(t, justified.Justified)

	_, err = f.absences.JustifyAbsence(ctx, student, absence.ID, "again")
	assertAppError(t, err, apperrors.ErrConflict, "Absence has already been justified")

	rejected, err := f.absences.RejectAbsence(ctx, teacher, absence.ID)
	require.NoError(t, err)
	assert.False(t, rejected.Justified)
	assert.Nil(t, rejected.Justification)

	_, err = f.absences.JustifyAbsence(ctx, student, absence.ID, "doctor note")
	require.NoError(t, err)

	validated, err := f.absences.ValidateAbsence(ctx, teacher, absence.ID)
	require.NoError(t, err)
	assert.True(t, validated.Justified)
	assert.Nil(t, validated.Justification)

	_, err = f.absences.ValidateAbsence(ctx, teacher, absence.ID)
	assertAppError(t, err, apperrors.ErrConflict, "Absence has already been validated")
	_, err = f.absences.JustifyAbsence(ctx, student, absence.ID, "late")
	assertAppError(t, err, apperrors.ErrConflict, "Absence has already been justified")

	count, err := f.absences.CountForStudentCourse(ctx, student, courseID)
	require.NoError(t, err)
	assert.Equal(t, models.AbsenceCount{Total: 1, Justified: 1}, count.AbsenceCount)

	require.NoError(t, f.absences.DeleteAbsence(ctx, teacher, absence.ID))
	_, err = f.absences.JustifyAbsence(ctx, student, absence.ID, "x")
	assertAppError(t, err, apperrors.ErrConflict, "Absence has been deleted")
	_, err = f.absences.RejectAbsence(ctx, teacher, absence.ID)
	assertAppError(t, err, apperrors.ErrConflict, "Absence has been deleted")
	err = f.absences.DeleteAbsence(ctx, teacher, absence.ID)
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Absence not found")
}

func TestAbsenceService_CreatePreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	other := f.user(t, "otto", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	outsider := f.user(t, "olga", models.UserTypeStudent)
	courseID := f.course(t, teacher, student)

	tests := []struct {
		name    string
		actor   models.Principal
		req     *dto.CreateAbsenceRequest
		kind    error
		message string
	}{
		{
			name:    "missing student",
			actor:   teacher,
			req:     &dto.CreateAbsenceRequest{StudentID: uuid.NewString(), CourseID: courseID, Date: "2026-10-01"},
			kind:    apperrors.ErrResourceNotFound,
			message: "Student not found",
		},
		{
			name:    "missing course",
			actor:   teacher,
			req:     absenceRequest(student, 9999),
			kind:    apperrors.ErrResourceNotFound,
			message: "Course not found",
		},
		{
			name:    "teacher does not own course",
			actor:   other,
			req:     absenceRequest(student, courseID),
			kind:    apperrors.ErrConflict,
			message: "Teacher is not the owner of this course",
		},
		{
			name:    "student not enrolled",
			actor:   teacher,
			req:     absenceRequest(outsider, courseID),
			kind:    apperrors.ErrConflict,
			message: "Student is not enrolled in this course",
		},
		{
			name:  "student actor",
			actor: student,
			req:   absenceRequest(student, courseID),
			kind:  apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.absences.CreateAbsence(ctx, tt.actor, tt.req)
			assertAppError(t, err, tt.kind, tt.message)
		})
	}
}

func TestAbsenceService_OwnershipChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	other := f.user(t, "otto", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	classmate := f.user(t, "cleo", models.UserTypeStudent)
	courseID := f.course(t, teacher, student, classmate)

	absence, err := f.absences.CreateAbsence(ctx, teacher, absenceRequest(student, courseID))
	require.NoError(t, err)

	_, err = f.absences.JustifyAbsence(ctx, classmate, absence.ID, "not mine")
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	_, err = f.absences.JustifyAbsence(ctx, student, 4242, "missing")
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Absence not found")

	_, err = f.absences.JustifyAbsence(ctx, student, absence.ID, "sick")
	require.NoError(t, err)

	_, err = f.absences.ValidateAbsence(ctx, other, absence.ID)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "You are not the teacher of this course")

	err = f.absences.DeleteAbsence(ctx, other, absence.ID)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")
}

func TestAbsenceService_Reads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	other := f.user(t, "otto", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	classmate := f.user(t, "cleo", models.UserTypeStudent)
	courseID := f.course(t, teacher, student, classmate)
	otherCourse := f.course(t, other, student)

	_, err := f.absences.CreateAbsence(ctx, teacher, absenceRequest(student, courseID))
	require.NoError(t, err)
	_, err = f.absences.CreateAbsence(ctx, teacher, &dto.CreateAbsenceRequest{StudentID: student.ID.String(), CourseID: courseID, Date: "2026-10-08"})
	require.NoError(t, err)
	_, err = f.absences.CreateAbsence(ctx, other, absenceRequest(student, otherCourse))
	require.NoError(t, err)

	mine, err := f.absences.ListForTeacher(ctx, teacher, dto.AbsenceQuery{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	ranged, err := f.absences.ListForTeacher(ctx, teacher, dto.AbsenceQuery{From: "2026-10-05"})
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	_, err = f.absences.ListForTeacher(ctx, teacher, dto.AbsenceQuery{StudentID: "nope"})
	assertAppError(t, err, apperrors.ErrInvalidArgument, "Invalid student ID")

	own, err := f.absences.ListForStudent(ctx, student, dto.AbsenceQuery{})
	require.NoError(t, err)
	assert.Len(t, own, 3)

	unjustified, err := f.absences.UnjustifiedCount(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unjustified)

	summary, err := f.absences.SummaryForStudent(ctx, student)
	require.NoError(t, err)
	assert.Len(t, summary, 2)

	perStudent, err := f.absences.CourseStudentCounts(ctx, teacher, courseID)
	require.NoError(t, err)
	require.Len(t, perStudent.Students, 2)
	totals := map[string]int64{}
	for _, s := range perStudent.Students {
		totals[s.Student.FirstName] = s.Total
	}
	assert.Equal(t, map[string]int64{"sam": 2, "cleo": 0}, totals)

	_, err = f.absences.CourseStudentCounts(ctx, other, courseID)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	_, err = f.absences.CountForStudentCourse(ctx, classmate, otherCourse)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "You are not enrolled in this course")
}

func TestAbsenceService_ConcurrentTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	courseID := f.course(t, teacher, student)

	absence, err := f.absences.CreateAbsence(ctx, teacher, absenceRequest(student, courseID))
	require.NoError(t, err)

	const justifiers = 8
	errs := make([]error, justifiers)
	var wg sync.WaitGroup
	for i := range justifiers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.absences.JustifyAbsence(ctx, student, absence.ID, "doctor")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertAppError(t, err, apperrors.ErrConflict, "Absence has already been justified")
	}
	assert.Equal(t, 1, succeeded)

	reviews := []func(context.Context, models.Principal, int64) (*models.Absence, error){
		f.absences.ValidateAbsence,
		f.absences.RejectAbsence,
	}
	errs = make([]error, len(reviews))
	for i, review := range reviews {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = review(ctx, teacher, absence.ID)
		}()
	}
	wg.Wait()

	succeeded = 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertAppError(t, err, apperrors.ErrConflict, "")
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.repos.Absences.GetByIDWithDeleted(ctx, absence.ID)
	require.NoError(t, err)
	assert.NotEqual(t, models.AbsencePending, stored.State())
	assert.Nil(t, stored.Justification)
}
