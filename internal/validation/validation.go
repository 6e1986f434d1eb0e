// Package validation checks the shape of service commands before any
// persistence access, using go-playground/validator struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/go-playground/validator/v10"
)

// MaxWorkoutAge is how far in the past a new workout's date may lie,
// counted from the start of today.
const MaxWorkoutAge = 30 * 24 * time.Hour

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a command fails one or more rules.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator runs the registered rules. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used by date rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New builds a Validator with the custom rules registered.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	// Report json field names rather than Go ones.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Weight is compared as a number so gte/lte apply to it.
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if w, ok := field.Interface().(domain.Weight); ok {
			f, _ := w.Float64()
			return f
		}
		return nil
	}, domain.Weight{})

	// Registration only fails for empty tags or nil funcs.
	_ = v.validate.RegisterValidation("notpast30d", v.notPast30Days)
	_ = v.validate.RegisterValidation("musclegroup", isMuscleGroup)

	return v
}

// Struct validates s and returns *Error when any rule fails.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

func (v *Validator) notPast30Days(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	now := v.now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !t.Before(startOfToday.Add(-MaxWorkoutAge))
}

func isMuscleGroup(fl validator.FieldLevel) bool {
	return domain.MuscleGroup(fl.Field().String()).Valid()
}

// fieldPath drops the command type name from the namespace, so
// "CreateWorkoutCommand.exercises[0].sets" becomes "exercises[0].sets".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "musclegroup":
		names := make([]string, 0, len(domain.MuscleGroups()))
		for _, g := range domain.MuscleGroups() {
			names = append(names, string(g))
		}
		return "must be one of " + strings.Join(names, ", ")
	case "notpast30d":
		return "must not be more than 30 days in the past"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}
