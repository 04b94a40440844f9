// Package api serves the dashboard endpoints over the response envelope the
// brent client package consumes.
package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/petrodata/brentdash/amqp"
	"github.com/petrodata/brentdash/cache"
	"github.com/petrodata/brentdash/dataset"
	"github.com/petrodata/brentdash/errors"
	"github.com/petrodata/brentdash/httpserver"
	"github.com/petrodata/brentdash/lock"
)

// Per-route response cache lifetimes. Analytical aggregates over the full
// history move slowly, so they live longer than filtered queries.
const (
	healthTTL      = time.Minute
	pricesTTL      = 5 * time.Minute
	eventsTTL      = 10 * time.Minute
	metricsTTL     = 5 * time.Minute
	seasonalityTTL = time.Hour
	configTTL      = time.Hour
)

// AdminClaims is the bearer token shape accepted on mutating endpoints.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type Config struct {
	Logger *slog.Logger

	// Responses caches rendered endpoint bodies. nil disables server-side
	// caching.
	Responses cache.Cacher

	// Publisher, when set, announces dataset reloads to the other servers.
	Publisher amqp.Publisher

	// Reload source: Store wins when both are set.
	Store   *dataset.Store
	DataDir string

	// ReloadLock keeps concurrent reloads from racing, across processes
	// when backed by redis. nil means an in-process lock.
	ReloadLock lock.Locker
}

type Server struct {
	logger     *slog.Logger
	responses  cache.Cacher
	publisher  amqp.Publisher
	store      *dataset.Store
	dataDir    string
	reloadLock lock.Locker
	startedAt  time.Time

	svc atomic.Pointer[dataset.Service]
}

func NewServer(svc *dataset.Service, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reloadLock := cfg.ReloadLock
	if reloadLock == nil {
		reloadLock = lock.NewInMemoryLock()
	}

	s := &Server{
		logger:     logger,
		responses:  cfg.Responses,
		publisher:  cfg.Publisher,
		store:      cfg.Store,
		dataDir:    cfg.DataDir,
		reloadLock: reloadLock,
		startedAt:  time.Now(),
	}
	s.svc.Store(svc)
	return s
}

func (s *Server) service() *dataset.Service { return s.svc.Load() }

// Routes registers every endpoint on mux. adminMW wraps the mutating
// endpoints only; read endpoints stay public like the original dashboard.
func (s *Server) Routes(mux *httpserver.ServeMux, adminMW ...httpserver.Middleware) {
	mux.GET("/api/health", s.cached(healthTTL, s.plain(s.health)))
	mux.GET("/api/prices", s.cached(pricesTTL, httpserver.BinderHandler(s.prices)))
	mux.GET("/api/events", s.cached(eventsTTL, httpserver.BinderHandler(s.events)))
	mux.GET("/api/change-points", s.cached(eventsTTL, s.plain(s.changePoints)))
	mux.GET("/api/metrics", s.cached(metricsTTL, s.plain(s.metrics)))
	mux.Group("/api/analysis/", func(analysis *httpserver.ServeMux) {
		analysis.GET("/seasonality", s.cached(seasonalityTTL, s.plain(s.seasonality)))
		analysis.GET("/event-impact/{name}", s.cached(eventsTTL, s.eventImpact))
	})
	mux.GET("/api/config", s.cached(configTTL, s.plain(s.dashboardConfig)))
	mux.GET("/api/export/{dataset}", s.export)

	var reload http.Handler = http.HandlerFunc(s.reload)
	for i := len(adminMW) - 1; i >= 0; i-- {
		reload = adminMW[i](reload)
	}
	mux.POST("/api/reload", reload.ServeHTTP)
}

// Reload swaps in a freshly loaded dataset, drops cached responses and
// announces the refresh.
func (s *Server) Reload(ctx context.Context, reason string) (*dataset.Service, error) {
	const key = "dataset-reload"
	if err := s.reloadLock.Lock(ctx, key, time.Minute); err != nil {
		return nil, err
	}
	defer s.reloadLock.Unlock(ctx, key)

	svc, err := s.loadDataset()
	if err != nil {
		return nil, err
	}
	s.svc.Store(svc)

	if err := s.dropResponses(ctx); err != nil {
		s.logger.Warn("cannot drop response cache after reload", "err", err)
	}

	if s.publisher != nil {
		s.publisher.PublishRefresh(amqp.RefreshNotice{
			Dataset:    "prices",
			Reason:     reason,
			PriceCount: svc.PriceCount(),
			At:         time.Now().UTC(),
		})
	}

	s.logger.Info("dataset reloaded",
		"reason", reason,
		"prices", svc.PriceCount(),
		"events", svc.EventCount(),
	)
	return svc, nil
}

// HandleRefresh is the consumer hook for notices published by other
// processes. It reloads locally without re-publishing.
func (s *Server) HandleRefresh(ctx context.Context, notice amqp.RefreshNotice) error {
	svc, err := s.loadDataset()
	if err != nil {
		return errors.Wrap(err, "cannot reload dataset on refresh notice")
	}
	s.svc.Store(svc)

	if err := s.dropResponses(ctx); err != nil {
		return errors.Wrap(err, "cannot drop response cache on refresh notice")
	}

	s.logger.Info("dataset refreshed from notice",
		"reason", notice.Reason,
		"published_at", notice.At,
	)
	return nil
}

func (s *Server) loadDataset() (*dataset.Service, error) {
	if s.store != nil {
		return s.store.LoadService()
	}
	if s.dataDir != "" {
		return dataset.Load(s.dataDir)
	}
	return nil, errors.New("no reload source configured")
}

func (s *Server) dropResponses(ctx context.Context) error {
	if s.responses == nil {
		return nil
	}
	return s.responses.Clear(ctx)
}

// plain adapts an argument-less handler to the binder shape.
func (s *Server) plain(handler func(r *http.Request) httpserver.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, handler(r))
	}
}

func writeResponse(w http.ResponseWriter, resp httpserver.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	jsonCodec.NewEncoder(w).Encode(resp.Body)
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(bs []byte) (int, error) {
	w.buf.Write(bs)
	return w.ResponseWriter.Write(bs)
}

// cached replays a previously rendered body when one is live, and records
// successful responses for ttl. Only 200s are cached; errors always re-run
// the handler.
func (s *Server) cached(ttl time.Duration, next http.HandlerFunc) http.HandlerFunc {
	if s.responses == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if q := r.URL.Query().Encode(); q != "" {
			key += "?" + q
		}

		if v, err := s.responses.Get(r.Context(), key); err == nil {
			if body, ok := v.([]byte); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.Write(body)
				return
			}
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if rec.status == http.StatusOK {
			if err := s.responses.Remember(r.Context(), key, rec.buf.Bytes(), ttl); err != nil {
				s.logger.Warn("cannot cache response", "key", key, "err", err)
			}
		}
	}
}
