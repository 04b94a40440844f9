package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/matryer/is"
)

func TestMiddlewaresRunInOrder(t *testing.T) {
	is := is.New(t)

	order := []string{}
	tag := func(name string) Middleware {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				h.ServeHTTP(w, r)
			})
		}
	}

	mux := New()
	mux.WithMiddlewares(tag("outer"), tag("inner"))
	mux.GET("/ping", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	is.Equal(rec.Code, http.StatusOK)
	is.Equal(order, []string{"outer", "inner", "handler"})
}

func TestMethodRouting(t *testing.T) {
	is := is.New(t)

	mux := New()
	mux.GET("/thing", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/thing", nil))
	is.Equal(rec.Code, http.StatusMethodNotAllowed)
}

type pageQuery struct {
	Page int
}

func (q *pageQuery) BindQuery(values url.Values) error {
	var err error
	if raw := values.Get("page"); raw != "" {
		q.Page, err = strconv.Atoi(raw)
	}
	return err
}

func TestBinderHandlerQuery(t *testing.T) {
	is := is.New(t)

	handler := BinderHandler(func(req Request[pageQuery]) Response {
		return Response{StatusCode: http.StatusOK, Body: map[string]int{"page": req.Binding.Page}}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/list?page=3", nil))
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(rec.Header().Get("Content-Type"), "application/json")
	is.True(rec.Body.Len() > 0)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/list?page=three", nil))
	is.Equal(rec.Code, http.StatusBadRequest)
}

func TestGroupStripsPrefixAndInheritsMiddlewares(t *testing.T) {
	is := is.New(t)

	order := []string{}
	mux := New()
	mux.WithMiddlewares(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "outer")
			h.ServeHTTP(w, r)
		})
	})

	mux.Group("/v1/", func(inner *ServeMux) {
		inner.GET("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
			w.Write([]byte(r.PathValue("id")))
		})
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))

	is.Equal(rec.Body.String(), "42") // prefix stripped, path value intact
	is.Equal(order, []string{"outer", "handler"})

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))
	is.Equal(rec.Code, http.StatusNotFound)
}
