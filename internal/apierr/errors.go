// Package apierr defines the error taxonomy surfaced by the Sheets client.
//
// Every public operation either succeeds or fails with exactly one *Error whose
// Kind tells the caller what happened and whether retrying could help.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindRangeSyntax
	KindSchemaValidation
	KindInvalidCellValue
	KindUnsupportedOperation
	KindInvalidRequest
	KindAuthentication
	KindPermission
	KindNotFound
	KindRateLimitExceeded
	KindTransientServer
	KindNetwork
	KindRetriesExhausted
	KindRateLimitTimeout
	KindCancelled
	KindDeadlineExceeded
)

var kindNames = map[Kind]string{
	KindUnknown:              "Unknown",
	KindRangeSyntax:          "RangeSyntaxError",
	KindSchemaValidation:     "SchemaValidationError",
	KindInvalidCellValue:     "InvalidCellValueError",
	KindUnsupportedOperation: "UnsupportedOperationError",
	KindInvalidRequest:       "InvalidRequestError",
	KindAuthentication:       "AuthenticationError",
	KindPermission:           "PermissionError",
	KindNotFound:             "NotFoundError",
	KindRateLimitExceeded:    "RateLimitExceeded",
	KindTransientServer:      "TransientServerError",
	KindNetwork:              "NetworkError",
	KindRetriesExhausted:     "RetriesExhaustedError",
	KindRateLimitTimeout:     "RateLimitTimeoutError",
	KindCancelled:            "OperationCancelledError",
	KindDeadlineExceeded:     "DeadlineExceededError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Retryable reports whether the backoff controller may retry a failure of this kind.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimitExceeded, KindTransientServer, KindNetwork:
		return true
	default:
		return false
	}
}

// Error is the single concrete error type returned by the client.
type Error struct {
	Kind       Kind
	Op         string        // logical operation or codec step, e.g. "values.update"
	StatusCode int           // HTTP status when the failure came from the server
	Reason     string        // first Google error reason, e.g. "rateLimitExceeded"
	Message    string        // human readable detail
	RetryAfter time.Duration // server supplied Retry-After, zero if absent
	Attempts   int           // attempts made, set on KindRetriesExhausted
	Err        error         // wrapped cause
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.StatusCode == 0
}

// Sentinels for errors.Is matching.
var (
	ErrRangeSyntax          = &Error{Kind: KindRangeSyntax}
	ErrSchemaValidation     = &Error{Kind: KindSchemaValidation}
	ErrInvalidCellValue     = &Error{Kind: KindInvalidCellValue}
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation}
	ErrInvalidRequest       = &Error{Kind: KindInvalidRequest}
	ErrAuthentication       = &Error{Kind: KindAuthentication}
	ErrPermission           = &Error{Kind: KindPermission}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrRateLimitExceeded    = &Error{Kind: KindRateLimitExceeded}
	ErrTransientServer      = &Error{Kind: KindTransientServer}
	ErrNetwork              = &Error{Kind: KindNetwork}
	ErrRetriesExhausted     = &Error{Kind: KindRetriesExhausted}
	ErrRateLimitTimeout     = &Error{Kind: KindRateLimitTimeout}
	ErrCancelled            = &Error{Kind: KindCancelled}
	ErrDeadlineExceeded     = &Error{Kind: KindDeadlineExceeded}
)

// New builds an error of the given kind.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// FromContext maps a context error to Cancelled or DeadlineExceeded.
// Any other error is returned unchanged.
func FromContext(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindDeadlineExceeded, Op: op, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Op: op, Err: err}
	default:
		return err
	}
}

// RetriesExhausted wraps the last retryable failure once the retry budget is spent.
func RetriesExhausted(op string, attempts int, last error) *Error {
	e := &Error{Kind: KindRetriesExhausted, Op: op, Attempts: attempts, Err: last}
	if le, ok := As(last); ok {
		e.StatusCode = le.StatusCode
	}
	return e
}
