package brent

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/petrodata/brentdash/errors"
)

// Kind categorizes a failure for diagnostics. Callers branch on StatusCode
// and Message; Kind exists so logs and metrics can tell failure origins
// apart.
type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindServerError        Kind = "server_error"
	KindTimeout            Kind = "timeout"
	KindNetworkUnreachable Kind = "network_unreachable"
	KindUnknown            Kind = "unknown"
)

// Error is the single shape every failure is normalized into at the access
// layer boundary: transport failures, non-2xx statuses and 2xx envelopes
// carrying success:false all end up here. Nothing else crosses the boundary.
type Error struct {
	Kind       Kind
	StatusCode int    // 0 when no response was received
	Message    string // always non-empty
	Raw        []byte // raw server payload when one exists
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("brent api: %s (status=%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("brent api: %s: %s", e.Kind, e.Message)
}

// AsError extracts the normalized error from err, when there is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServerError
	default:
		return KindUnknown
	}
}

func statusError(status int, message string, raw []byte) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Message:    message,
		Raw:        raw,
	}
}

// transportError normalizes a failure where no usable response came back.
// Deadline-style failures must surface as Timeout, never as Unknown.
func transportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request deadline exceeded"}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() || errors.Is(urlErr.Err, context.DeadlineExceeded) {
			return &Error{Kind: KindTimeout, Message: "request deadline exceeded"}
		}
		return &Error{Kind: KindNetworkUnreachable, Message: urlErr.Error()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: "request deadline exceeded"}
		}
		return &Error{Kind: KindNetworkUnreachable, Message: netErr.Error()}
	}

	return &Error{Kind: KindUnknown, Message: err.Error()}
}
