package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an upstream failure. The orchestrator treats every
// kind the same way (record and move on); callers that care, such as the
// manual fetch route, can branch on it.
type ErrorKind int

const (
	KindAuth ErrorKind = iota + 1
	KindRateLimited
	KindBadRequest
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindBadRequest:
		return "bad_request"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// UpstreamError is the adapter-layer error taxonomy. Status is the HTTP
// status from the remote when one was received, 0 for local rejections and
// transport failures.
type UpstreamError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewAuthError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Kind: KindAuth, Status: http.StatusUnauthorized, Err: err}
}

func NewRateLimitedError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Kind: KindRateLimited, Err: err}
}

func NewUnavailableError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Kind: KindUnavailable, Err: err}
}

// classifyStatus maps a non-2xx upstream response to the taxonomy. Timeouts
// and network failures never reach here; they are wrapped as unavailable at
// the call site.
func classifyStatus(provider string, status int, body string) *UpstreamError {
	kind := KindUnavailable
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindBadRequest
	}
	return &UpstreamError{
		Provider: provider,
		Kind:     kind,
		Status:   status,
		Err:      fmt.Errorf("unexpected status %d: %s", status, body),
	}
}

// IsKind reports whether err is an UpstreamError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == kind
}
