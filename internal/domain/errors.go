package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// AuthExchangeError is returned when the identity provider rejects a
// code or refresh token exchange. Carries the upstream HTTP status.
type AuthExchangeError struct {
	Status int
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("identity provider rejected token exchange: status %d", e.Status)
}

// ResolveReason tags a platform resolution failure so the state machine
// can decide retry vs escalate without parsing error strings.
type ResolveReason string

const (
	ReasonTagNotFound          ResolveReason = "tag_not_found"
	ReasonTagResolution        ResolveReason = "tag_resolution"
	ReasonMessageUndeliverable ResolveReason = "message_undeliverable"
	ReasonPlatformAuthExpired  ResolveReason = "platform_auth_expired"
)

// ResolveError is a recoverable platform-resolution failure. Message is
// safe to show to the end user; the state machine re-queues the platform.
type ResolveError struct {
	Reason  ResolveReason
	Message string
	Err     error
}

func (e *ResolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// AsResolveError unwraps err into a *ResolveError if it is one.
func AsResolveError(err error) (*ResolveError, bool) {
	var re *ResolveError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
