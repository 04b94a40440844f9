package httpmiddlewares

import (
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

var durationBuckets = []float64{
	0.0005,
	0.001, // 1ms
	0.002,
	0.005,
	0.01, // 10ms
	0.02,
	0.05,
	0.1, // 100 ms
	0.2,
	0.5,
	1.0, // 1s
	2.0,
	5.0,
	10.0, // 10s
	15.0,
	20.0,
	30.0,
}

// PrometheusExporter records per-handler request counts and latencies.
// excludePaths are regexps for endpoints that should not be measured,
// usually /metrics itself.
func PrometheusExporter(namespace string, excludePaths ...string) func(h http.Handler) http.Handler {
	pathRegexps := []*regexp.Regexp{}
	for _, path := range excludePaths {
		pathRegexps = append(pathRegexps, regexp.MustCompile(path))
	}

	requestsHist := promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "httpserver",
		Name:      "requests_duration",
		Buckets:   durationBuckets,
	}, []string{"status", "method", "handler"})

	requestCount := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "httpserver",
			Name:      "requests_total",
			Help:      "How many HTTP requests processed, partitioned by status code and HTTP method.",
		},
		[]string{"status", "method", "handler"},
	)

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			for _, path := range pathRegexps {
				if path.MatchString(req.URL.Path) {
					h.ServeHTTP(w, req)
					return
				}
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			h.ServeHTTP(rec, req)

			requestCount.WithLabelValues(fmt.Sprint(rec.status), req.Method, req.URL.Path).Inc()
			requestsHist.WithLabelValues(fmt.Sprint(rec.status), req.Method, req.URL.Path).
				Observe(time.Since(start).Seconds())
		})
	}
}
