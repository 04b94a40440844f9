package brent

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/petrodata/brentdash/tokenstore"
)

// RequestInterceptor mutates an outgoing request before it hits the wire.
// The client applies its interceptors as an explicit ordered pipeline, not
// as hidden framework hooks.
type RequestInterceptor func(req *http.Request) error

func withContentType(contentType string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set("Content-Type", contentType)
		return nil
	}
}

func withTimestamp() RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set("X-Request-Timestamp", time.Now().UTC().Format(time.RFC3339))
		return nil
	}
}

func withRequestID() RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set("X-Request-Id", uuid.NewString())
		return nil
	}
}

// withBearer attaches the token from the store when one exists. An absent
// token is not an error; the request proceeds unauthenticated.
func withBearer(tokens tokenstore.Source) RequestInterceptor {
	return func(req *http.Request) error {
		if tokens == nil {
			return nil
		}
		token, err := tokens.Token(req.Context())
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}
