package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies why a model attempt failed.
type ErrorKind string

// Attempt failure kinds.
const (
	KindAuth     ErrorKind = "auth"
	KindQuota    ErrorKind = "quota"
	KindNotFound ErrorKind = "not_found"
	KindTimeout  ErrorKind = "timeout"
	KindEmpty    ErrorKind = "empty"
	KindOther    ErrorKind = "other"
)

var (
	// ErrEmptyResponse is returned when a model answers without any text.
	ErrEmptyResponse = errors.New("model returned no text")
	// ErrMissingCredential is returned when an invoker is built without a key.
	ErrMissingCredential = errors.New("missing API credential")
)

// InvokeError is a failed model call tagged with its kind.
type InvokeError struct {
	Kind ErrorKind
	Err  error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *InvokeError) Unwrap() error {
	return e.Err
}

func wrapInvokeError(kind ErrorKind, err error) error {
	return &InvokeError{Kind: kind, Err: err}
}

// KindOf returns the failure kind of an attempt error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ie *InvokeError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrEmptyResponse):
		return KindEmpty
	}
	return kindFromMessage(err.Error())
}

func kindFromStatus(code int) ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindQuota
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindOther
	}
}

// kindFromMessage is the last resort for SDK errors that carry no status.
func kindFromMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key"), strings.Contains(lower, "permission"):
		return KindAuth
	case strings.Contains(lower, "quota"), strings.Contains(lower, "resource_exhausted"), strings.Contains(lower, "429"):
		return KindQuota
	case strings.Contains(lower, "not found"), strings.Contains(lower, "404"):
		return KindNotFound
	case strings.Contains(lower, "deadline"), strings.Contains(lower, "timeout"):
		return KindTimeout
	default:
		return KindOther
	}
}
