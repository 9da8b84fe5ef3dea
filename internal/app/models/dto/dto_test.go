package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(struct {
		Email string `validate:"required,email"`
		Title string `validate:"required"`
	}{Email: "nope"})
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)

	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	assert.Equal(t, []FieldError{
		{Field: "email", Message: "email must be a valid email address"},
		{Field: "title", Message: "title is required"},
	}, fields)
	assert.Empty(t, detail.Field)
}

func TestHandleValidationError_NonValidation(t *testing.T) {
	detail := HandleValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request format", detail.Message)
	assert.Equal(t, "unexpected EOF", detail.Details)
}
