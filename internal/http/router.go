package httpx

import (
	"net/http"

	"github.com/YekSoft-Technology/pikselliyo/internal/app"
	"github.com/YekSoft-Technology/pikselliyo/internal/ws"
	"github.com/YekSoft-Technology/pikselliyo/pkg/auth"
	"github.com/YekSoft-Technology/pikselliyo/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, hub *ws.Hub) http.Handler {
	mw := NewMiddleware(cfg)
	adminAPI := &AdminAPI{Hub: hub, JWT: auth.New(cfg.JWTSecret)}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Admin endpoints (login is open; the rest are JWT-protected)
	mux.Handle("/api/admin/login", http.HandlerFunc(adminAPI.Login))
	mux.Handle("/api/admin/me", mw.Auth(http.HandlerFunc(adminAPI.Me)))
	mux.Handle("/api/rooms", mw.Auth(http.HandlerFunc(adminAPI.Rooms)))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
