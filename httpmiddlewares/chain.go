// Package httpmiddlewares holds the cross-cutting handlers every brentdash
// HTTP surface is wrapped in.
package httpmiddlewares

import "net/http"

func Chain(ms ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(ms) - 1; i >= 0; i-- {
			h = ms[i](h)
		}

		return h
	}
}
