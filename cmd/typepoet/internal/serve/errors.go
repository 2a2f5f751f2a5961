package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/broady/typepoet/poet"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeTooLarge         ErrorCode = "too_large"
	CodeCanceled         ErrorCode = "canceled"
	CodeInternal         ErrorCode = "internal"
)

var statusByCode = map[ErrorCode]int{
	CodeInvalidArgument:  http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeTooLarge:         http.StatusRequestEntityTooLarge,
	CodeCanceled:         499, // nginx "client closed request"
	CodeInternal:         http.StatusInternalServerError,
}

// HTTPStatus returns the response status for c.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the body of every failed response. Details maps request
// fields to their validation messages.
type Error struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Errorf returns an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// toError classifies err for the client. Anything unrecognized is
// internal.
func toError(err error) *Error {
	var (
		svcErr  *Error
		valErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.As(err, &valErrs):
		return fromValidation(valErrs)
	case errors.Is(err, poet.ErrInvariant), errors.Is(err, poet.ErrUnsupported):
		return &Error{Code: CodeInvalidArgument, Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return &Error{Code: CodeCanceled, Message: "context canceled"}
	default:
		return &Error{Code: CodeInternal, Message: err.Error()}
	}
}

func fromValidation(errs validator.ValidationErrors) *Error {
	e := &Error{Code: CodeInvalidArgument, Details: make(map[string]string, len(errs))}
	parts := make([]string, len(errs))
	for i, fe := range errs {
		msg := describe(fe)
		e.Details[fe.Field()] = msg
		parts[i] = fe.Field() + ": " + msg
	}
	e.Message = strings.Join(parts, "; ")
	return e
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must have at most " + fe.Param() + " items"
	}
	if fe.Param() == "" {
		return "failed " + fe.Tag() + " validation"
	}
	return "failed " + fe.Tag() + "=" + fe.Param() + " validation"
}

func writeError(w http.ResponseWriter, e *Error, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code.HTTPStatus())
	if err := json.NewEncoder(w).Encode(e); err != nil {
		logger.Error("failed to encode error response",
			slog.String("code", string(e.Code)),
			slog.Any("error", err))
	}
}
