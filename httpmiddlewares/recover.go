package httpmiddlewares

import (
	"log/slog"
	"net/http"
)

// Recover keeps a panicking handler from taking the process down. The
// Sentry middleware should sit outside this one so it still sees the panic.
func Recover(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec != nil {
				if err, isErr := rec.(error); isErr {
					slog.Error(err.Error(), "panic", true, "path", r.URL.Path)
				} else {
					slog.Error("unknown recover", "recover()", rec, "path", r.URL.Path)
				}
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		h.ServeHTTP(w, r)
	})
}
