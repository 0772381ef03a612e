package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/validator"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kinds []error
		not   []error
	}{
		{"validation", NewValidationError("email", "user not found"), []error{ErrValidation}, []error{ErrConflict, ErrNotFound}},
		{"authentication", NewAuthenticationError("invalid credentials"), []error{ErrAuthentication}, []error{ErrValidation}},
		{"permission", NewPermissionError("u1", "course", "update", "not owner"), []error{ErrAuthorization}, []error{ErrAuthentication}},
		{"not found", NewNotFoundError("course", 7), []error{ErrNotFound}, []error{ErrAuthorization}},
		{"conflict", NewConflictError("already enrolled in this course"), []error{ErrConflict, ErrValidation}, []error{ErrNotFound}},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFoundError("enrollment", 1)), []error{ErrNotFound}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, kind := range tt.kinds {
				assert.True(t, errors.Is(tt.err, kind), "expected %v", kind)
			}
			for _, kind := range tt.not {
				assert.False(t, errors.Is(tt.err, kind), "unexpected %v", kind)
			}
		})
	}
}

func TestInvalidKeepsFieldErrors(t *testing.T) {
	err := invalid(validator.ValidationErrors{{Field: "role", Message: "cannot register as admin"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var fields ValidationErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "role", fields[0].Field)

	assert.NoError(t, invalid(nil))
}
