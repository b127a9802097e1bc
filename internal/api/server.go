// Package api exposes delivery checks, branches, reviews and ordering over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/backend"
	"github.com/sells-group/delivery-cli/internal/checkout"
	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/menu"
)

const (
	maxBodyBytes = 1 << 20
	pingTimeout  = 2 * time.Second
)

// Server holds the dependencies the HTTP handlers read.
type Server struct {
	evaluator *delivery.Evaluator
	checkout  *checkout.Service
	backend   backend.Backend
	menu      *menu.Menu
}

// NewServer creates a Server. A nil menu falls back to the default menu.
func NewServer(ev *delivery.Evaluator, svc *checkout.Service, be backend.Backend, m *menu.Menu) *Server {
	if m == nil {
		m = menu.Default()
	}
	return &Server{evaluator: ev, checkout: svc, backend: be, menu: m}
}

// Handler builds the router. corsOrigins lists allowed browser origins;
// empty allows none.
func (s *Server) Handler(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/menu", s.listMenu)
	r.Get("/availability", s.availability)

	r.Route("/branches", func(r chi.Router) {
		r.Get("/", s.listBranches)
		r.Get("/nearby", s.nearbyBranches)
	})
	r.Get("/branches.geojson", s.branchesGeoJSON)

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", s.listReviews)
		r.Post("/", s.createReview)
	})
	r.Post("/orders", s.createOrder)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Breaker  string `json:"breaker"`
	Backend  string `json:"backend"`
	Branches int    `json:"branches"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Breaker:  s.checkout.BackendState(),
		Backend:  "ok",
		Branches: s.evaluator.Registry().Len(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := s.backend.Ping(ctx); err != nil {
		zap.L().Warn("health: backend ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Backend = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listMenu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.menu.Items())
}

// requestLogger logs one line per request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
