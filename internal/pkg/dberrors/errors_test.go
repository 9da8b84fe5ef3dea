package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: ConstraintSubmissionStudent})

	assert.True(t, IsDuplicateConstraintError(dup, ConstraintSubmissionStudent))
	assert.False(t, IsDuplicateConstraintError(dup, ConstraintCourseCode))
	assert.True(t, IsUniqueViolation(dup))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: ConstraintSubmissionStudent}
	assert.False(t, IsDuplicateConstraintError(fk, ConstraintSubmissionStudent))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}
