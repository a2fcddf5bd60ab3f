// Package errors provides the error type shared by every hercap layer.  An
// AppError carries a typed code that maps onto HTTP status, gRPC status and
// metric labels, so handlers never inspect message text.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const stackDepth = 32

// captureStack formats the caller's stack, skipping runtime frames.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the structured error returned across package boundaries.
//
//	return errors.New(errors.ErrCodeSessionNotFound, "session not found").WithDetail(id)
//	return errors.Wrap(err, errors.ErrCodeFeedFetchFailed, "portfolio feed request failed")
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail is safe to show to clients for 4xx codes.
	Detail string
	Cause  error
	// Stack is captured at construction and never part of Error().
	Stack string
}

// Error formats as "[code] message: detail: cause", omitting empty parts.
func (e *AppError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code.String(), e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of e with Detail set.  A nil receiver stays nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy of e with Cause set.  A nil receiver stays nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

func newError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause, Stack: captureStack(2)}
}

// New constructs an AppError with no cause.
func New(code ErrorCode, message string) *AppError {
	return newError(code, message, nil)
}

// Wrap constructs an AppError around err and returns nil when err is nil.
// CodeUnknown keeps the code of the first AppError in err's chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return newError(code, message, err)
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any AppError in err's chain carries one of the
// not-found codes.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case CodeNotFound, ErrCodeSessionNotFound, ErrCodeCompanyNotFound, ErrCodeGeometryNotFound:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode returns the code of the first AppError in err's chain, CodeOK for
// nil and CodeUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

func NotFound(message string) *AppError     { return newError(CodeNotFound, message, nil) }
func InvalidParam(message string) *AppError { return newError(CodeInvalidParam, message, nil) }
func Internal(message string) *AppError     { return newError(CodeInternal, message, nil) }
func RateLimit(message string) *AppError    { return newError(CodeRateLimit, message, nil) }

// ErrInvalidConfig is returned by constructors given an unusable configuration.
var ErrInvalidConfig = New(ErrCodeValidation, "invalid configuration")

//Personal.AI order the ending
