package httpserver

import (
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"

	"github.com/petrodata/brentdash/errors"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// QueryBinding is implemented by filter types that know how to populate
// themselves from URL query parameters.
type QueryBinding interface {
	BindQuery(values url.Values) error
}

type Request[T any] struct {
	*http.Request
	Binding T
}

type Response struct {
	StatusCode int
	Body       any
}

// BinderHandler binds the request into T before invoking the handler. A T
// implementing QueryBinding is bound from the query string; anything else is
// decoded from the JSON body.
func BinderHandler[T any](handler func(Request[T]) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var binding T
		if err := bind(r, &binding); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			jsonCodec.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		resp := handler(Request[T]{Request: r, Binding: binding})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		jsonCodec.NewEncoder(w).Encode(resp.Body)
	}
}

func bind(r *http.Request, binding any) error {
	if qb, ok := binding.(QueryBinding); ok {
		if err := qb.BindQuery(r.URL.Query()); err != nil {
			return errors.Wrap(err, "invalid query parameters")
		}
		return nil
	}

	if err := jsonCodec.NewDecoder(r.Body).Decode(binding); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}
