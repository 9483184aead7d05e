// Package httptransport wires the HTTP surface: session lifecycle endpoints,
// operational endpoints, and the gate middleware in front of the protected
// application.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aulagate/internal/gate"
	"aulagate/internal/platform/health"
	"aulagate/internal/platform/middleware"
)

// NewRouter assembles the full middleware stack and routes. The gate runs on
// every request; its exempt prefixes cover the auth and operational endpoints
// so those skip identity checks while still being rate limited.
func NewRouter(g *gate.Gate, auth *AuthHandler, rateLimits *RateLimitHandler, healthHandler *health.Handler, app http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(g.Middleware)

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	auth.Register(r)
	rateLimits.Register(r)

	// Everything else is the protected application surface behind the gate.
	r.Handle("/*", app)

	return r
}
