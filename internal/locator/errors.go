package locator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResumeReference means the profile never had a resume reference.
	ErrNoResumeReference = errors.New("no resume reference")
	// ErrNoResumeFound means a reference existed but no fetch produced the document.
	ErrNoResumeFound = errors.New("no resume found")
)

const (
	ReasonDirectOK          = "direct ok"
	ReasonSignedAfter401    = "signed-after-401"
	ReasonSignedNoDirect    = "signed-no-direct"
	ReasonNoObjectID        = "no-object-id"
	ReasonSignedURLFailed   = "signed-url-failed"
	ReasonSignedFetchFailed = "signed-fetch-failed"
	ReasonNoAbsoluteURL     = "no-absolute-url"
)

// DirectFetchError is a failed fetch of a resume URL. Status is 0 for transport failures.
type DirectFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *DirectFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("resume fetch status=%d", e.Status)
	}
	if e.Err != nil {
		return "resume fetch: " + e.Err.Error()
	}
	return "resume fetch failed"
}

func (e *DirectFetchError) Unwrap() error { return e.Err }

// Unauthorized reports whether the status asks for credentials (401 or 403).
func (e *DirectFetchError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403
}

// NoResumeFoundError records which fallback step gave up.
type NoResumeFoundError struct {
	Reason string
	Err    error
}

func (e *NoResumeFoundError) Error() string {
	msg := "no resume found: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NoResumeFoundError) Unwrap() error { return e.Err }

func (e *NoResumeFoundError) Is(target error) bool { return target == ErrNoResumeFound }
