/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address behind proxies
  3. RequestLogger: slog line per request
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests for frontend
  6. Authenticate:  Bearer token on everything under /api

ROUTE GROUPS:
  /healthz                Liveness (no auth)
  /api/time-entries/*     Entry submission, listing and review
  /api/reports            Payroll report
  /api/policies           Shift policy
  /api/audit-logs         Audit trail (admin)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token handling
  - cmd/server/serve.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSOptions are the allowed cross-origin settings.
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, tokens *TokenManager, co CORSOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   co.AllowedOrigins,
		AllowedMethods:   co.AllowedMethods,
		AllowedHeaders:   co.AllowedHeaders,
		AllowCredentials: co.AllowCredentials,
		MaxAge:           co.MaxAge,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(tokens))

		r.Route("/time-entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/{id}/splits", h.GetEntrySplits)
			r.With(RequireAdmin).Patch("/{id}/status", h.SetStatus)
		})

		r.Get("/reports", h.Report)

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.GetPolicy)
			r.With(RequireAdmin).Patch("/", h.UpdatePolicy)
		})

		r.With(RequireAdmin).Get("/audit-logs", h.ListAuditLogs)
	})

	return r
}

// RequestLogger logs each request with method, path, status, duration and
// the chi request id.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http.request", attrs...)
		})
	}
}
