package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

func TestValidateRegister(t *testing.T) {
	bv := New().GetBusinessValidator()

	tests := []struct {
		name      string
		req       RegisterRequest
		wantField string
		wantMsg   string
	}{
		{
			name: "valid student",
			req:  RegisterRequest{Email: "s@example.com", Password: "password1", Role: models.RoleStudent},
		},
		{
			name: "empty role allowed",
			req:  RegisterRequest{Email: "s@example.com", Password: "password1"},
		},
		{
			name:      "admin with valid fields",
			req:       RegisterRequest{Email: "a@example.com", Password: "password1", Role: models.RoleAdmin},
			wantField: "role",
			wantMsg:   "cannot register as admin",
		},
		{
			name:      "admin with broken fields",
			req:       RegisterRequest{Email: "nope", Password: "x", Role: models.RoleAdmin},
			wantField: "role",
			wantMsg:   "cannot register as admin",
		},
		{
			name:      "short password",
			req:       RegisterRequest{Email: "s@example.com", Password: "short"},
			wantField: "password",
			wantMsg:   "must be at least 8 characters",
		},
		{
			name:      "bad email",
			req:       RegisterRequest{Email: "not-an-email", Password: "password1"},
			wantField: "email",
			wantMsg:   "must be a valid email address",
		},
		{
			name:      "unknown theme",
			req:       RegisterRequest{Email: "s@example.com", Password: "password1", Theme: "neon"},
			wantField: "theme",
			wantMsg:   "must be light or dark",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateRegister(&tt.req)
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantMsg, errs[0].Message)
		})
	}
}

func TestValidate_HidesSecrets(t *testing.T) {
	err := New().Validate(&ResetPasswordRequest{Token: "abc", Password: "short"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].Field)
	assert.Nil(t, errs[0].Value)
}

func TestValidateProgress(t *testing.T) {
	bv := New().GetBusinessValidator()
	hundred, fifty, over := 100.0, 50.0, 120.0
	yes, no := true, false

	assert.Empty(t, bv.ValidateProgress(&EnrollmentUpdateRequest{Progress: &fifty, Completed: &no}))
	assert.Empty(t, bv.ValidateProgress(&EnrollmentUpdateRequest{Progress: &hundred, Completed: &yes}))
	assert.NotEmpty(t, bv.ValidateProgress(&EnrollmentUpdateRequest{Progress: &hundred, Completed: &no}))
	assert.NotEmpty(t, bv.ValidateProgress(&EnrollmentUpdateRequest{Progress: &over}))
}

func TestValidateNameLengths(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     interface{}
		field   string
		message string
	}{
		{"category name over 100", &CategoryRequest{Name: strings.Repeat("c", 101)}, "name", "must be between 1 and 100 characters"},
		{"blank category name", &CategoryRequest{Name: "   "}, "name", "must be between 1 and 100 characters"},
		{"course title over 200", &CourseCreateRequest{Title: strings.Repeat("t", 201)}, "title", "must be between 1 and 200 characters"},
		{"category name at limit", &CategoryRequest{Name: strings.Repeat("c", 100)}, "", ""},
		{"course title at limit", &CourseCreateRequest{Title: strings.Repeat("t", 200)}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			errs, ok := err.(ValidationErrors)
			require.True(t, ok)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}
