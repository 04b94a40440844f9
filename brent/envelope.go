package brent

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope is the `{success, data, message, error, ...}` wrapper every JSON
// endpoint of the dashboard API responds with.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// unwrapEnvelope extracts the payload from a 2xx response body. A body
// carrying success:false is a failure even though the transport saw none;
// that normalization happens here and only here, so no call site can treat
// it differently.
func unwrapEnvelope(status int, body []byte) (json.RawMessage, *Error) {
	var env envelope
	if err := jsonCodec.Unmarshal(body, &env); err != nil {
		return nil, &Error{
			Kind:       KindUnknown,
			StatusCode: status,
			Message:    "malformed response body: " + err.Error(),
			Raw:        body,
		}
	}

	if env.Success == nil {
		// endpoint without the envelope, payload is the body itself
		return json.RawMessage(body), nil
	}

	if !*env.Success {
		message := env.Message
		if message == "" {
			message = env.Error
		}
		if message == "" {
			message = "server reported failure"
		}
		return nil, &Error{
			Kind:       KindServerError,
			StatusCode: status,
			Message:    message,
			Raw:        body,
		}
	}

	return env.Data, nil
}
