package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._@-]{3,100}$`)

// ValidationError describes one failed field rule
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

// Validator runs struct tag rules plus the domain rules registered below
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the domain rules registered
func New() *Validator {
	validate := validator.New()

	// Report json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v := &Validator{validate: validate}
	v.registerBusinessRules()
	return v
}

// Validate returns nil or ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return ToValidationErrors(err)
}

// ToValidationErrors converts go-playground errors to ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "", Message: err.Error(), Rule: "invalid"}}
	}

	result := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		ve := ValidationError{
			Field:   fe.Field(),
			Message: getErrorMessage(fe),
			Rule:    fe.Tag(),
		}
		// Never echo secrets back to the caller
		if !strings.Contains(strings.ToLower(fe.Field()), "password") {
			ve.Value = fe.Value()
		}
		result = append(result, ve)
	}
	return result
}

// registerBusinessRules registers custom business rule validators
func (v *Validator) registerBusinessRules() {
	// Login handle: 3-100 chars of letters, digits and ._@-
	v.validate.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})

	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("day_of_week", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDayOfWeek(fl.Field().String())
		return ok
	})

	v.validate.RegisterValidation("time_of_day", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "email":
		return "must be a valid email address"
	case "handle":
		return "must be 3-100 characters of letters, digits, '.', '_', '@' or '-'"
	case "user_role":
		return "must be one of SUPER_ADMIN, ADMIN, TEACHER"
	case "day_of_week":
		return "must be a weekday name such as MONDAY"
	case "time_of_day":
		return "must be a time of day in HH:MM or HH:MM:SS format"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
