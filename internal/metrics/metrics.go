package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "configgate"

// Login outcomes.
const (
	LoginSuccess   = "success"
	LoginRejected  = "rejected"
	LoginMalformed = "malformed"
)

// Config request outcomes.
const (
	ConfigServed       = "served"
	ConfigMissingToken = "missing_token"
	ConfigInvalidToken = "invalid_token"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route, and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome (success, rejected, malformed).",
	}, []string{"outcome"})

	ConfigRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_requests_total",
		Help:      "Config fetches by outcome (served, missing_token, invalid_token).",
	}, []string{"outcome"})

	ArtifactBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "artifact_bytes",
		Help:      "Size of the config artifact loaded at startup.",
	})
)

func ObserveLogin(outcome string) { LoginAttemptsTotal.WithLabelValues(outcome).Inc() }

func ObserveConfig(outcome string) { ConfigRequestsTotal.WithLabelValues(outcome).Inc() }

// Handler returns an http.Handler that serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware wraps an http.Handler to record request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start).Seconds()

		method, route := methodLabel(r.Method), routeLabel(r.URL.Path)
		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(rw.statusCode)).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel keeps the label set closed: unknown paths, which are all 404s,
// collapse into "other".
func routeLabel(p string) string {
	switch p {
	case "/login", "/config", "/healthz", "/metrics":
		return p
	default:
		return "other"
	}
}

// methodLabel does the same for methods; net/http accepts any token there.
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return m
	default:
		return "other"
	}
}
