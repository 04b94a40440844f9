// Package httpserver is a thin layer over net/http's ServeMux adding
// per-mux middleware and method helpers.
package httpserver

import (
	"net/http"
)

type ServeMux struct {
	*http.ServeMux
	middlewares []Middleware
}

func New() *ServeMux {
	return &ServeMux{ServeMux: http.NewServeMux()}
}

type Middleware func(http.Handler) http.Handler

func (s *ServeMux) WithMiddlewares(ms ...Middleware) {
	s.middlewares = append(s.middlewares, ms...)
}

// Group mounts an inner mux under path, inheriting the outer middlewares.
func (s *ServeMux) Group(path string, f func(inner *ServeMux), ms ...Middleware) {
	inner := New()
	inner.WithMiddlewares(s.middlewares...)
	inner.WithMiddlewares(ms...)
	f(inner)
	s.Handle(path, http.StripPrefix(trimTrailingSlash(path), inner))
}

func (s *ServeMux) HandleFunc(pattern string, handler http.HandlerFunc) {
	var h http.Handler = handler
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	s.ServeMux.Handle(pattern, h)
}

func (s *ServeMux) GET(path string, handler http.HandlerFunc) {
	s.HandleFunc("GET "+path, handler)
}

func (s *ServeMux) POST(path string, handler http.HandlerFunc) {
	s.HandleFunc("POST "+path, handler)
}

func (s *ServeMux) PUT(path string, handler http.HandlerFunc) {
	s.HandleFunc("PUT "+path, handler)
}

func (s *ServeMux) DELETE(path string, handler http.HandlerFunc) {
	s.HandleFunc("DELETE "+path, handler)
}

func trimTrailingSlash(path string) string {
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
