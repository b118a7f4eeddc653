package web

import (
	"log/slog"
	"net/http"

	"configgate/internal/auth"
	"configgate/internal/config"
	"configgate/internal/logging"
	"configgate/internal/metrics"
)

const maxRequestBody = 1 << 20 // 1 MB

type route struct {
	method string
	target string
}

// Server answers the two public operations. Every request is resolved
// against the route table and the immutable Settings; there is no other
// state, so handlers are safe to run concurrently.
type Server struct {
	Logger   *slog.Logger
	settings config.Settings
	routes   map[route]http.HandlerFunc
}

func NewServer(settings config.Settings, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Logger: logger, settings: settings}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.routes = map[route]http.HandlerFunc{
		{http.MethodPost, "/login"}: s.handleLogin,
		{http.MethodGet, "/config"}: s.handleConfig,
	}
}

// lookup matches the request target byte for byte, so a query string, a
// trailing slash or a percent-encoded variant of a route is not found.
func (s *Server) lookup(method, target string) (http.HandlerFunc, error) {
	h, ok := s.routes[route{method: method, target: target}]
	if !ok {
		return nil, auth.ErrRouteNotFound
	}
	return h, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer s.recoverRequest(w, r)

	h, err := s.lookup(r.Method, r.URL.RequestURI())
	if err != nil {
		s.Logger.Debug("no route", "method", r.Method, "path", r.URL.Path)
		writeEmpty(w, auth.StatusFor(err))
		return
	}
	h(w, r)
}

// Handler returns the server wrapped with access logging and request
// metrics, ready for the public listener.
func (s *Server) Handler() http.Handler {
	return metrics.Middleware(logging.AccessLog(s.Logger, s))
}

func (s *Server) recoverRequest(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	s.Logger.Error("handler panic", "method", r.Method, "path", r.URL.Path, "panic", rec)
	writeEmpty(w, http.StatusUnauthorized)
}
