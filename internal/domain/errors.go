package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a gateway failure. Kinds map 1:1 onto the HTTP
// statuses the front returns and onto retry policy inside the clients.
type ErrorKind string

const (
	ErrInvalidRequest   ErrorKind = "invalid_request"
	ErrMethodNotAllowed ErrorKind = "method_not_allowed"
	ErrNotFound         ErrorKind = "not_found"
	ErrUnauthorizedUp   ErrorKind = "unauthorized_upstream"
	ErrUpstream         ErrorKind = "upstream_error"
	ErrUpstreamTimeout  ErrorKind = "upstream_timeout"
	ErrRateLimited      ErrorKind = "rate_limited"
	ErrConfig           ErrorKind = "config_error"
	ErrClientCancelled  ErrorKind = "client_cancelled"
	ErrInternal         ErrorKind = "internal_error"
)

// Error is the gateway's classified error. It wraps the underlying
// cause so callers can still errors.Is/As through it.
type Error struct {
	Kind    ErrorKind
	Message string
	// Provider names the upstream that produced the failure, when any.
	Provider string
	Cause    error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a classified error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an existing error.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// UpstreamError classifies a failure from a named provider.
func UpstreamError(kind ErrorKind, provider string, cause error) *Error {
	msg := "upstream request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Message: msg, Provider: provider, Cause: cause}
}

// KindOf extracts the error kind, classifying plain context errors on
// the way. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return ErrClientCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamTimeout
	}
	return ErrInternal
}

// HTTPStatus maps an error kind to the status the front returns.
// client_cancelled has no meaningful status; callers drop the response.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnauthorizedUp, ErrUpstream:
		return http.StatusBadGateway
	case ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrConfig, ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
