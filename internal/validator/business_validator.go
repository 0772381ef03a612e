package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/security"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRegister checks a registration payload. An admin role is reported
// on its own so the caller always sees the same message for it.
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	if req.Role == models.RoleAdmin {
		return ValidationErrors{{Field: "role", Message: "cannot register as admin", Value: req.Role, Rule: "not_admin_role"}}
	}
	return bv.Validate(req)
}

// ValidateProgress checks a progress update; 100 implies completion
func (bv *BusinessValidator) ValidateProgress(req *EnrollmentUpdateRequest) ValidationErrors {
	errs := bv.Validate(req)
	if req.Progress != nil && req.Completed != nil && *req.Progress >= 100 && !*req.Completed {
		errs = append(errs, ValidationError{
			Field:   "completed",
			Message: "cannot be false when progress is 100",
			Value:   *req.Completed,
			Rule:    "business_logic",
		})
	}
	return errs
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= security.MinPasswordLength
	})

	bv.validate.RegisterValidation("not_admin_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()) != models.RoleAdmin
	})

	// Self-service roles
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		return role == models.RoleInstructor || role == models.RoleStudent
	})

	bv.validate.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		theme := models.Theme(fl.Field().String())
		return theme == models.ThemeLight || theme == models.ThemeDark
	})

	bv.validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return n >= 1 && n <= 200
	})

	bv.validate.RegisterValidation("category_name", func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return n >= 1 && n <= 100
	})
}
