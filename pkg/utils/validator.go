package utils

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turtacn/compliance/pkg/errors"
)

var defaultValidator *validator.Validate

func init() {
	defaultValidator = validator.New()
	defaultValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = defaultValidator.RegisterValidation("uuid", validateUUID)
	_ = defaultValidator.RegisterValidation("percent", validatePercent)
}

// ValidateStruct validates a struct using the default validator.
// It returns an invalid_request AppError listing every failing field.
func ValidateStruct(s interface{}) errors.AppError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		name := toSnakeCase(fe.Field())
		details[name] = formatValidationError(fe)
		fields = append(fields, name)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+details[f])
	}
	appErr := errors.ErrInvalidRequest(strings.Join(parts, "; "))
	for k, v := range details {
		appErr = appErr.WithMetadata(k, v)
	}
	return appErr
}

func validateUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

func validatePercent(fl validator.FieldLevel) bool {
	return IsFinitePercent(fl.Field().Float())
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "percent":
		return "must be between 0 and 100"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

var (
	wordStart  = regexp.MustCompile("(.)([A-Z][a-z]+)")
	lowerUpper = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// toSnakeCase maps Go field names to the json keys clients send; json tag names pass through.
func toSnakeCase(name string) string {
	name = wordStart.ReplaceAllString(name, "${1}_${2}")
	return strings.ToLower(lowerUpper.ReplaceAllString(name, "${1}_${2}"))
}

// IsFinitePercent reports whether v is a finite number within [0, 100].
func IsFinitePercent(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 100
}
