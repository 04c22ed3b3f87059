package sumsquares

import (
	"errors"
	"fmt"
)

// ErrorCode represents a sum-squares error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidInput represents a number outside the natural numbers
	ErrInvalidInput

	// ErrInvalidArity represents an arity other than 2, 3 or 4
	ErrInvalidArity

	// ErrFactorization represents a failure of the factorization oracle
	ErrFactorization

	// ErrIncomplete represents a four-square set that disagrees with
	// Jacobi's count
	ErrIncomplete
)

// String returns a short name for the code
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidConfig:
		return "invalid_config"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrInvalidArity:
		return "invalid_arity"
	case ErrFactorization:
		return "factorization"
	case ErrIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// SquaresError represents a sum-squares error
type SquaresError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *SquaresError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sum-squares error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("sum-squares error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *SquaresError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *SquaresError) Is(target error) bool {
	t, ok := target.(*SquaresError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the code of the first SquaresError in err's chain, or
// ErrUnknown
func CodeOf(err error) ErrorCode {
	var se *SquaresError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}
