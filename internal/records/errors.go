package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Store error kinds
const (
	KindUnavailable = "STORE_UNAVAILABLE"
	KindMalformed   = "MALFORMED_RECORD"
)

var (
	ErrInvalidUserID = errors.New("user id must be a positive integer")
	ErrRowNotFound   = errors.New("record not found")
)

// StoreError is returned by every failed Store operation
type StoreError struct {
	Kind   string
	Op     string
	UserID int64
	Cause  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s for user %d: %s: %v", e.Op, e.UserID, e.Kind, e.Cause)
}

func (e *StoreError) Code() string {
	return e.Kind
}

func (e *StoreError) Message() string {
	if e.Kind == KindMalformed {
		return "stored record could not be read"
	}
	return "record store is unavailable"
}

func (e *StoreError) Temporary() bool {
	return e.Kind == KindUnavailable
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// StatusError is a non-2xx answer from a REST backend
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// MalformedError reports a payload or row that failed validation at the backend boundary
type MalformedError struct {
	Field  string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed payload: %s", e.Reason)
	}
	return fmt.Sprintf("malformed field %s: %s", e.Field, e.Reason)
}

// IsStoreError determines if err came from the record store
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// isRetryable reports whether another attempt could succeed: transport failures,
// throttling and server errors are retried, everything else is final.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrRowNotFound) || errors.Is(err, ErrInvalidUserID) {
		return false
	}

	var malformed *MalformedError
	if errors.As(err, &malformed) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return retryableStatus(status.StatusCode)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func wrapError(op string, userID int64, err error) error {
	kind := KindUnavailable
	var malformed *MalformedError
	if errors.As(err, &malformed) {
		kind = KindMalformed
	}
	return &StoreError{Kind: kind, Op: op, UserID: userID, Cause: err}
}
