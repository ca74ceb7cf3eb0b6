package gridsheet

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrInvalidAddress is returned when a label does not match [A-Z]+[0-9]+
	// with a row of at least 1.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrOutOfBounds is returned when a coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrInvalidRange is returned for malformed range text.
	ErrInvalidRange = errors.New("invalid range")
)

// AppError represents errors at the application level (not formula
// errors, which are absorbed into cells). codes follow gRPC conventions so a
// host serving the grid over RPC can return them unchanged.
type AppError struct {
	Code    codes.Code
	Message string
	err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// GRPCStatus lets status.FromError recover the code.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}

// NewApplicationError creates a new application error wrapping a sentinel.
func NewApplicationError(code codes.Code, sentinel error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		err:     sentinel,
	}
}

// ErrorKind distinguishes evaluation failures. every kind displays as
// ErrorDisplay; the kind is for diagnostics.
type ErrorKind uint8

const (
	DivisionByZero      ErrorKind = 1
	UnresolvedReference ErrorKind = 2
	TypeMismatch        ErrorKind = 3
	SyntaxError         ErrorKind = 4
	CircularReference   ErrorKind = 5
)

var errorKindNames = map[ErrorKind]string{
	DivisionByZero:      "division by zero",
	UnresolvedReference: "unresolved reference",
	TypeMismatch:        "type mismatch",
	SyntaxError:         "syntax error",
	CircularReference:   "circular reference",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// EvaluationError is a formula failure
type EvaluationError struct {
	Kind    ErrorKind
	Message string
}

func (e *EvaluationError) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String()
}

func NewEvaluationError(kind ErrorKind, message string) *EvaluationError {
	return &EvaluationError{
		Kind:    kind,
		Message: message,
	}
}

// AsEvaluationError converts any error into an EvaluationError, treating
// foreign errors as syntax errors.
func AsEvaluationError(err error) *EvaluationError {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return evalErr
	}
	return NewEvaluationError(SyntaxError, err.Error())
}
