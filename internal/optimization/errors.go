package optimization

import (
	"errors"
	"fmt"
)

// Validation failures. Every error returned by NewProblem, FromWire or
// ParseDocument wraps exactly one of these.
var (
	// ErrObjectiveSpaceHasCategoricalDimension is returned when an objective
	// dimension is not an ordered quantity.
	ErrObjectiveSpaceHasCategoricalDimension = errors.New("objective space has a categorical dimension")

	// ErrObjectiveNotInObjectiveSpace is returned when an objective names a
	// dimension the objective space does not have.
	ErrObjectiveNotInObjectiveSpace = errors.New("objective not in objective space")

	// ErrParameterContextNameCollision is returned when parameter and context
	// spaces share a dimension name.
	ErrParameterContextNameCollision = errors.New("parameter and context spaces share a dimension name")

	// ErrMalformedSpaceEncoding is returned when a serialized space cannot be decoded.
	ErrMalformedSpaceEncoding = errors.New("malformed space encoding")

	// ErrNilSpace is returned when a required space is missing.
	ErrNilSpace = errors.New("space is required")
)

const component = "optimization_problem"

// Error represents an optimization problem error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newError builds an Error for op wrapping cause.
func newError(op string, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Message:   fmt.Sprintf(format, args...),
		Op:        op,
		Component: component,
		Err:       cause,
	}
}

// IsOptimizationError checks if an error is of type Error.
// If the error is an optimization error, it returns the error and true.
// Otherwise, it returns nil and false.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Rejection reasons reported by ReasonOf.
const (
	ReasonCategoricalObjective = "categorical_objective"
	ReasonUnknownObjective     = "unknown_objective"
	ReasonNameCollision        = "name_collision"
	ReasonMalformedSpace       = "malformed_space"
	ReasonMissingSpace         = "missing_space"
	ReasonOther                = "other"
)

// ReasonOf maps err to a stable label suitable for metrics and API payloads.
func ReasonOf(err error) string {
	switch {
	case errors.Is(err, ErrObjectiveSpaceHasCategoricalDimension):
		return ReasonCategoricalObjective
	case errors.Is(err, ErrObjectiveNotInObjectiveSpace):
		return ReasonUnknownObjective
	case errors.Is(err, ErrParameterContextNameCollision):
		return ReasonNameCollision
	case errors.Is(err, ErrMalformedSpaceEncoding):
		return ReasonMalformedSpace
	case errors.Is(err, ErrNilSpace):
		return ReasonMissingSpace
	default:
		return ReasonOther
	}
}

// IsInvalidProblem reports whether err rejects a problem definition, as
// opposed to an infrastructure failure.
func IsInvalidProblem(err error) bool {
	return err != nil && ReasonOf(err) != ReasonOther
}
