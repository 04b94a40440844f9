package api

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/petrodata/brentdash/httpserver"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the response wrapper on every JSON endpoint. The brent client
// package unwraps exactly this shape.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

const Version = "1.0"

func ok(data any, message string) httpserver.Response {
	return httpserver.Response{
		StatusCode: 200,
		Body: Envelope{
			Success:   true,
			Data:      data,
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
		},
	}
}

func fail(status int, message string) httpserver.Response {
	return httpserver.Response{
		StatusCode: status,
		Body: Envelope{
			Success:   false,
			Error:     message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
		},
	}
}
