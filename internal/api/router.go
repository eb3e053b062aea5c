package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/luminary-core/internal/panel"
)

// healthCheckTimeout bounds each component check in GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Handle("/panel/*", http.StripPrefix("/panel", panel.Handler(s.cfg.PanelDir)))
	r.Handle("/panel", http.RedirectHandler("/panel/", http.StatusMovedPermanently))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", s.handleListShows)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetShow)
				r.With(s.requireControl).Patch("/config", s.handleUpdateShowConfig)
				r.With(s.requireControl).Post("/apply", s.handleApplyShow)
			})
		})

		r.Get("/session", s.handleCurrentSession)
		r.With(s.requireControl).Post("/session/stop", s.handleStopSession)
		r.Get("/sessions", s.handleListSessions)
		r.With(s.requireControl).Get("/audit", s.handleListAudit)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth reports overall status plus each registered component check.
// Any failing check turns the status to "degraded" with a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.checks))
	healthy := true
	for name, checker := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()
		if err != nil {
			healthy = false
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":  status,
		"version": s.version,
	}
	if len(checks) > 0 {
		resp["checks"] = checks
	}
	if sess := s.engine.Current(); sess != nil {
		resp["show"] = sess.ShowID
	}
	writeJSON(w, code, resp)
}
