package httpmiddlewares

import (
	"net/http"

	"github.com/getsentry/sentry-go"
)

func Sentry(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec != nil {
				sentry.CurrentHub().Recover(rec)
				panic(rec)
			}
		}()

		h.ServeHTTP(w, r)
	})
}
