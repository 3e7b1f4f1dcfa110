package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy for the core operations. Handlers map these to HTTP status
// codes with HTTPStatus; services wrap causes with fmt.Errorf("...: %w", err).

// ValidationError - missing/malformed required field, self-follow/self-like.
// Rejected before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError - wrong actor for a transition, or editing a locked portfolio.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func NewForbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError - entity does not exist or does not belong to the caller.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFound(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError - stale block permutation, consumed upload session with a
// mismatched key, or an edge toggle lost to a concurrent writer. The caller
// must re-fetch current state before retrying.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func NewConflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// ExpiredError - upload session past its expiry; the caller must re-presign.
type ExpiredError struct {
	Msg string
}

func (e *ExpiredError) Error() string { return e.Msg }

func NewExpired(format string, args ...interface{}) error {
	return &ExpiredError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError - the object store rejected both the direct write and the
// relay. The upload session stays unconsumed and the grant may be retried.
type UpstreamError struct {
	Msg   string
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

func NewUpstream(msg string, cause error) error {
	return &UpstreamError{Msg: msg, Cause: cause}
}

// HTTPStatus maps a taxonomy error to its response status code.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		forbidden  *ForbiddenError
		notFound   *NotFoundError
		conflict   *ConflictError
		expired    *ExpiredError
		upstream   *UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &expired):
		return http.StatusGone
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
