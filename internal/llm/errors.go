package llm

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an upstream failure.
type Kind string

const (
	KindNotConfigured   Kind = "not_configured"
	KindAuthFailure     Kind = "auth_failure"
	KindRateLimited     Kind = "rate_limited"
	KindBadRequest      Kind = "bad_request"
	KindServerError     Kind = "server_error"
	KindTimeout         Kind = "timeout"
	KindTransport       Kind = "transport"
	KindInvalidResponse Kind = "invalid_response"
)

// Sentinels for errors.Is against an *UpstreamError of the matching kind.
var (
	ErrNotConfigured   = errors.New("llm not configured")
	ErrAuthFailure     = errors.New("llm auth failure")
	ErrRateLimited     = errors.New("llm rate limited")
	ErrBadRequest      = errors.New("llm bad request")
	ErrServerError     = errors.New("llm server error")
	ErrTimeout         = errors.New("llm timeout")
	ErrTransport       = errors.New("llm transport error")
	ErrInvalidResponse = errors.New("llm invalid response")
)

var kindSentinels = map[Kind]error{
	KindNotConfigured:   ErrNotConfigured,
	KindAuthFailure:     ErrAuthFailure,
	KindRateLimited:     ErrRateLimited,
	KindBadRequest:      ErrBadRequest,
	KindServerError:     ErrServerError,
	KindTimeout:         ErrTimeout,
	KindTransport:       ErrTransport,
	KindInvalidResponse: ErrInvalidResponse,
}

// UpstreamError is returned by Completer implementations.
type UpstreamError struct {
	Kind       Kind
	Status     int
	RetryAfter time.Duration
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("llm %s", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" status=%d", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is matches the kind sentinel so callers can use errors.Is(err, llm.ErrRateLimited).
func (e *UpstreamError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// KindOf returns the kind of an upstream error, or "" when err is not one.
func KindOf(err error) Kind {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Kind
	}
	return ""
}

// ClassifyStatus maps an HTTP status to an error kind. 2xx returns "".
func ClassifyStatus(status int) Kind {
	switch {
	case status >= 200 && status < 300:
		return ""
	case status == 401:
		return KindAuthFailure
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	default:
		return KindBadRequest
	}
}

// Retryable reports whether err is a 429 or 5xx upstream failure.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}
