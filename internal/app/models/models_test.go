package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	u := User{ID: uuid.New(), Type: UserTypeStudent}
	m, err := NewMember(u)
	require.NoError(t, err)

	switch v := m.(type) {
	case Student:
		assert.Equal(t, u.ID, v.ID)
	default:
		t.Fatalf("expected Student, got %T", m)
	}

	u.Type = UserTypeTeacher
	m, err = NewMember(u)
	require.NoError(t, err)
	assert.IsType(t, Teacher{}, m)
	assert.Equal(t, u.ID, m.Base().ID)

	u.Type = "admin"
	_, err = NewMember(u)
	assert.Error(t, err)
}

func TestHomework_DeadlinePassed(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hw := &Homework{Deadline: deadline}

	assert.False(t, hw.DeadlinePassed(deadline.Add(-time.Second)))
	assert.False(t, hw.DeadlinePassed(deadline), "submitting exactly at the deadline is allowed")
	assert.True(t, hw.DeadlinePassed(deadline.Add(time.Nanosecond)))
}

func TestSubmission_Deletable(t *testing.T) {
	submitted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Submission{SubmissionDate: submitted}

	tests := []struct {
		after time.Duration
		want  bool
	}{
		{0, true},
		{59 * time.Minute, true},
		{time.Hour, true},
		{61 * time.Minute, false},
		{48 * time.Hour, false},
	}
	for _, tc := range tests {
		t.Run(tc.after.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, s.Deletable(submitted.Add(tc.after)))
		})
	}
}

func TestStatusOf(t *testing.T) {
	grade := 90
	assert.Equal(t, SubmissionStatusNotSubmitted, StatusOf(nil))
	assert.Equal(t, SubmissionStatusSubmitted, StatusOf(&Submission{}))
	assert.Equal(t, SubmissionStatusGraded, StatusOf(&Submission{Grade: &grade}))
}

func TestAbsenceCount_Add(t *testing.T) {
	var c AbsenceCount
	c.Add(true)
	c.Add(false)
	c.Add(false)
	assert.Equal(t, AbsenceCount{Total: 3, Justified: 1, Unjustified: 2}, c)
}

func TestAbsence_HasPendingJustification(t *testing.T) {
	empty := ""
	text := "doctor"
	assert.False(t, (&Absence{}).HasPendingJustification())
	assert.False(t, (&Absence{Justification: &empty}).HasPendingJustification())
	assert.True(t, (&Absence{Justification: &text}).HasPendingJustification())
}
