package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/namesmith/internal/domain"
)

// Error represents a failed pipeline stage with enough context for the
// orchestrator to record on the job and for callers to classify.
type Error struct {
	// Type indicates the failure category.
	Type ErrorType

	// Stage names the pipeline stage that failed.
	Stage string

	// Message provides a human-readable description.
	Message string

	// Cause contains the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s stage failed [%s]: %s: %v", e.Stage, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s stage failed [%s]: %s", e.Stage, e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// ErrorType categorizes stage failures.
type ErrorType string

// Stage error types.
const (
	// ErrorValidation indicates inputs that can never succeed.
	ErrorValidation ErrorType = "validation"

	// ErrorConfiguration indicates an unusable provider or model setup.
	ErrorConfiguration ErrorType = "configuration"

	// ErrorTimeout indicates a stage that ran past its time budget.
	ErrorTimeout ErrorType = "timeout"

	// ErrorProvider indicates a transport failure in a provider.
	ErrorProvider ErrorType = "provider"

	// ErrorParse indicates provider content that could not be decoded.
	ErrorParse ErrorType = "parse"

	// ErrorPersistence indicates a failed database write.
	ErrorPersistence ErrorType = "persistence"
)

// Classify wraps err as a stage *Error, inferring its type from the chain.
// An err that already is a stage *Error is returned unchanged.
func Classify(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	t := TypeOf(err)
	return &Error{Type: t, Stage: stage, Message: messageFor(t), Cause: err}
}

// TypeOf reports the error type of err, looking through wrapped stage errors.
func TypeOf(err error) ErrorType {
	var se *Error
	switch {
	case errors.As(err, &se):
		return se.Type
	case errors.Is(err, domain.ErrTimeBudgetExceeded), errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	case errors.Is(err, domain.ErrInvalidContent):
		return ErrorParse
	case errors.Is(err, domain.ErrInvalidInputs):
		return ErrorValidation
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrMissingCredential),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrModelNotAllowed):
		return ErrorConfiguration
	default:
		return ErrorProvider
	}
}

func messageFor(t ErrorType) string {
	switch t {
	case ErrorTimeout:
		return "time budget exceeded"
	case ErrorParse:
		return "provider returned invalid content"
	case ErrorValidation:
		return "invalid inputs"
	case ErrorConfiguration:
		return "provider misconfigured"
	case ErrorPersistence:
		return "persisting results failed"
	default:
		return "provider call failed"
	}
}
