package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	// ErrValidation wraps every field-level validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownMember is returned when an expense or settlement names someone
	// who is not on the trip.
	ErrUnknownMember = errors.New("not a trip member")
	// ErrDuplicateMember is returned when a trip lists the same name twice.
	ErrDuplicateMember = errors.New("duplicate member")
	// ErrInvalidAmount is returned for amounts that are not positive numbers.
	ErrInvalidAmount = errors.New("invalid amount")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	if err := vld.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'finite': %w", err)
	}

	return vld, nil
}

// Validate checks v against its validate struct tags and returns the first
// failure as an error wrapping ErrValidation.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return fmt.Errorf("%w: %w", ErrValidation, errValidate)
	}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return formatFieldError(fieldErrs[0])
		}
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func formatFieldError(fe validator.FieldError) error {
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: '%s' is required", ErrValidation, field)
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s characters", ErrValidation, field, fe.Param())
	case "gt", "gte", "finite":
		return fmt.Errorf("%w: %w: '%s'", ErrValidation, ErrInvalidAmount, field)
	case "email":
		return fmt.Errorf("%w: '%s' must be a valid email", ErrValidation, field)
	case "oneof":
		return fmt.Errorf("%w: '%s' must be one of [%s]", ErrValidation, field, fe.Param())
	case "datetime":
		return fmt.Errorf("%w: '%s' must be a date like %s", ErrValidation, field, fe.Param())
	case "nefield":
		return fmt.Errorf("%w: '%s' must differ from '%s'", ErrValidation, field, toSnakeCase(fe.Param()))
	default:
		return fmt.Errorf("%w: '%s' failed '%s' check", ErrValidation, field, fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
