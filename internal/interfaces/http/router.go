package http

import (
	"net/http"

	"github.com/dreschagin/netpulse/internal/interfaces/http/handler"
	"github.com/dreschagin/netpulse/internal/interfaces/http/middleware"
	"github.com/dreschagin/netpulse/pkg/config"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// Router wires the API endpoints, the WebSocket upgrade and the
// middleware chain.
type Router struct {
	mux               *http.ServeMux
	networkAPIHandler *handler.NetworkAPIHandler
	alertsAPIHandler  *handler.AlertsAPIHandler
	archivesHandler   *handler.ArchivesAPIHandler
	websocketHandler  *handler.WebSocketHandler
	rateLimiter       *middleware.IPRateLimiter
	security          config.SecurityConfig
	logger            *logger.Logger
}

// NewRouter creates a router. archivesHandler may be nil when archiving
// is not configured; the endpoint is then not registered.
func NewRouter(
	networkAPIHandler *handler.NetworkAPIHandler,
	alertsAPIHandler *handler.AlertsAPIHandler,
	archivesHandler *handler.ArchivesAPIHandler,
	websocketHandler *handler.WebSocketHandler,
	rateLimiter *middleware.IPRateLimiter,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		networkAPIHandler: networkAPIHandler,
		alertsAPIHandler:  alertsAPIHandler,
		archivesHandler:   archivesHandler,
		websocketHandler:  websocketHandler,
		rateLimiter:       rateLimiter,
		security:          security,
		logger:            logger,
	}
}

// Setup registers all routes and returns the final handler chain.
func (rt *Router) Setup() http.Handler {
	// Health endpoints are intentionally unauthenticated for probes.
	rt.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rt.mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	// API responses are JSON and compress well; WebSocket is excluded
	// because the hijacked connection cannot be gzip-wrapped.
	api := func(h http.HandlerFunc) http.Handler {
		return middleware.Compression(authMiddleware(h))
	}

	rt.mux.Handle("/api/v1/network/current", api(rt.networkAPIHandler.GetCurrent))
	rt.mux.Handle("/api/v1/network/status", api(rt.networkAPIHandler.GetStatus))
	rt.mux.Handle("/api/v1/network/history", api(rt.networkAPIHandler.GetHistory))
	rt.mux.Handle("/api/v1/network/risk", api(rt.networkAPIHandler.GetRisk))
	rt.mux.Handle("/api/v1/network/forecast", api(rt.networkAPIHandler.GetForecast))

	rt.mux.Handle("/api/v1/alerts", api(rt.alertsAPIHandler.GetActive))
	rt.mux.Handle("/api/v1/alerts/resolve", api(rt.alertsAPIHandler.Resolve))

	if rt.archivesHandler != nil {
		rt.mux.Handle("/api/v1/archives", api(rt.archivesHandler.List))
	}

	// WebSocket validates the token itself because the browser cannot
	// send an Authorization header on the upgrade request.
	rt.mux.HandleFunc("/ws", rt.websocketHandler.HandleConnection)

	var h http.Handler = rt.mux
	if rt.rateLimiter != nil {
		h = middleware.RateLimit(rt.rateLimiter)(h)
	}
	h = middleware.Logger(rt.logger)(h)
	h = middleware.Recovery(rt.logger)(h)

	return h
}
