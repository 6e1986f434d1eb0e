package service

import (
	"errors"
	"fmt"

	"alcyxob/workout-tracker/internal/validation"
)

// Failure categories. Every error a service returns on purpose wraps exactly
// one of these; anything else is unexpected.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a categorised service failure with a caller-facing message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func notFoundf(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, fmt.Sprintf(format, args...))
}

// --- Error Definitions ---
var (
	ErrUserNotFound            = newError(ErrNotFound, "user not found")
	ErrAthleteNotFound         = newError(ErrNotFound, "athlete not found")
	ErrExerciseNotFound        = newError(ErrNotFound, "exercise not found")
	ErrWorkoutNotFound         = newError(ErrNotFound, "workout not found")
	ErrWorkoutExerciseNotFound = newError(ErrNotFound, "workout exercise not found")
	ErrMediaNotFound           = newError(ErrNotFound, "exercise has no media")

	ErrUsernameTaken          = newError(ErrConflict, "username already exists")
	ErrWorkoutAlreadyAssigned = newError(ErrConflict, "workout is already assigned to an athlete")
	ErrWorkoutNotAssigned     = newError(ErrConflict, "workout has no assigned athlete")
	ErrExerciseInUse          = newError(ErrConflict, "exercise is used by one or more workouts")

	ErrNotCoach = newError(ErrForbidden, "only coaches can perform this action")

	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid username or password")

	ErrInvalidMediaType = newError(ErrValidation, "content type must be a video or image")
	ErrInvalidMediaKey  = newError(ErrValidation, "media key does not belong to this exercise")

	// Returned by media operations when no bucket is configured; surfaces as a 500.
	ErrStorageNotConfigured = errors.New("media storage not configured")
)

// ValidationError wraps rule failures so callers can match ErrValidation and
// still reach the per-field details.
type ValidationError struct {
	Details *validation.Error
}

func (e *ValidationError) Error() string { return e.Details.Error() }

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Details}
}

// validate runs the rules and categorises the outcome.
func validate(v *validation.Validator, cmd interface{}) error {
	err := v.Struct(cmd)
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		return &ValidationError{Details: verr}
	}
	return err
}
