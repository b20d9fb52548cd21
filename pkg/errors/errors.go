package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedEnvelope = NewError("MALFORMED_ENVELOPE", "invalid push message format", http.StatusBadRequest)
	ErrMalformedPayload  = NewError("MALFORMED_PAYLOAD", "invalid event payload", http.StatusBadRequest)
	ErrBucketMismatch    = NewError("BUCKET_MISMATCH", "event bucket does not match expected bucket", http.StatusBadRequest)
	ErrInvalidPath       = NewError("INVALID_PATH", "file path not allowed", http.StatusBadRequest)
	ErrSourceUnreadable  = NewError("SOURCE_UNREADABLE", "source file could not be read", http.StatusInternalServerError)
	ErrPersistFailure    = NewError("PERSIST_FAILURE", "failed to persist processing results", http.StatusInternalServerError)
	ErrInternal          = NewError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
)

// Write targets carried as the "write" detail on PERSIST_FAILURE.
const (
	WriteArtifact = "artifact"
	WriteMetadata = "metadata"
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	if err.Details == nil {
		err.Details = make(map[string]interface{})
	}
	err.Details[key] = value
	return &err
}

func (e *Error) WithMessage(message string) *Error {
	err := *e
	err.Message = message
	return &err
}

// IsValidation reports whether the error belongs to the 4xx class, i.e. it was
// caused by the inbound event rather than by the pipeline itself.
func IsValidation(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status >= 400 && appErr.Status < 500
	}
	return false
}

func HasCode(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FailedWrite reports which of the two persistence writes failed, or ""
// when the error is not a persist failure.
func FailedWrite(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if write, ok := appErr.Details["write"].(string); ok {
			return write
		}
	}
	return ""
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// ClientMessage returns the message safe to echo back to the caller. A
// "message" detail takes precedence over the generic per-code message.
func ClientMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return fmt.Sprintf("Internal error: %v", err)
	}

	if detailMsg, ok := appErr.Details["message"].(string); ok && detailMsg != "" {
		return detailMsg
	}
	return appErr.Message
}
