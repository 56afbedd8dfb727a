// Package adminserver exposes the bridge's operator-facing admin HTTP
// listener: liveness and a paginated audit log dump. It is a separate
// plain HTTP listener, never subject to the WebSocket handshake's
// origin policy, and is expected to bind to loopback only.
package adminserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/loopwire/acpbridge/internal/audit"
	"github.com/loopwire/acpbridge/internal/fsmediator"
)

const defaultAuditLimit = 100

// HealthChecker returns a non-nil error when /healthz should report the
// bridge as unhealthy.
type HealthChecker func() error

// Server is the admin HTTP listener's router and dependencies.
type Server struct {
	auditStore *audit.Store
	permCache  *fsmediator.PermissionCache
	healthy    HealthChecker
}

// New returns an admin server reading from auditStore and permCache,
// using healthy to answer /healthz. permCache may be nil, in which case
// /permissions reports an empty snapshot.
func New(auditStore *audit.Store, permCache *fsmediator.PermissionCache, healthy HealthChecker) *Server {
	return &Server{auditStore: auditStore, permCache: permCache, healthy: healthy}
}

// Router builds the chi router for this admin server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Get("/audit", s.handleAudit)
	r.Get("/permissions", s.handlePermissions)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.healthy != nil {
		if err := s.healthy(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	method := r.URL.Query().Get("method")

	records, err := s.auditStore.List(limit, method)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	entries := []fsmediator.CacheEntry{}
	if s.permCache != nil {
		entries = s.permCache.Snapshot()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Serve binds bindAddr and serves the admin router until the process
// exits or the returned server is shut down by the caller.
func Serve(bindAddr string, s *Server) *http.Server {
	httpServer := &http.Server{
		Addr:              bindAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go httpServer.ListenAndServe()
	return httpServer
}
