package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/schoolpulse/homework-service/internal/models"
)

// Validator handles request and business rule validation
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// New creates a validator with the portal's custom rules registered
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerBusinessRules()

	return v
}

// Validate validates a struct against its tags
func (v *Validator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: v.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// ValidateHomeworkCreate validates homework creation business rules
func (v *Validator) ValidateHomeworkCreate(req *CreateHomeworkRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, v.Validate(req)...)

	if req.DueDate != nil && req.DueDate.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "due_date",
			Message: "must be in the future",
			Value:   req.DueDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateSubmission validates answer submission business rules
func (v *Validator) ValidateSubmission(req *SubmitAnswerRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, v.Validate(req)...)

	if strings.TrimSpace(req.AnswerText) == "" {
		errors = append(errors, ValidationError{
			Field:   "answer_text",
			Message: "cannot be blank",
			Value:   req.AnswerText,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom validators for the portal's
// fixed class and subject catalogues.
func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("class_level", func(fl validator.FieldLevel) bool {
		return models.ValidClassLevel(fl.Field().String())
	})

	v.validate.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		return models.ValidSubject(fl.Field().String())
	})

	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		switch models.UserRole(fl.Field().String()) {
		case models.RoleStudent, models.RoleTeacher, models.RolePrincipal, models.RoleAdmin:
			return true
		}
		return false
	})
}

// getErrorMessage returns user-friendly error messages
func (v *Validator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "class_level":
		return "must be a valid class level"
	case "subject":
		return "must be a valid subject"
	case "user_role":
		return "must be a valid user role"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
