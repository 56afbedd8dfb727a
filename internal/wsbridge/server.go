// Package wsbridge implements the bridge's core: WebSocket handshake
// policy, JSON-RPC framing and dispatch, and the bridge's lifecycle.
package wsbridge

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/loopwire/acpbridge/internal/acp"
	"github.com/loopwire/acpbridge/internal/audit"
	"github.com/loopwire/acpbridge/internal/config"
	"github.com/loopwire/acpbridge/internal/fsmediator"
	"github.com/loopwire/acpbridge/internal/login"
)

// Bridge is one running bridge instance: immutable configuration, the
// agent transport, and the shared permission cache. It survives across
// every accepted connection and is destroyed only on shutdown.
type Bridge struct {
	config *config.Bridge
	agent  acp.AgentTransport
	cwd    string

	mediator       *fsmediator.Mediator
	loginExtractor *login.Extractor
	auditStore     *audit.Store
}

// New constructs a bridge instance. cwd anchors relative path
// resolution for both the filesystem mediator and the login CLI probe.
func New(cfg *config.Bridge, agent acp.AgentTransport, auditStore *audit.Store, cwd string) *Bridge {
	cache := fsmediator.NewPermissionCache()
	return &Bridge{
		config:         cfg,
		agent:          agent,
		cwd:            cwd,
		mediator:       fsmediator.NewMediator(cache, cwd),
		loginExtractor: login.NewExtractor(cwd),
		auditStore:     auditStore,
	}
}

// PermissionCache exposes the bridge's shared permission cache for the
// admin HTTP listener's read-only snapshot endpoint.
func (b *Bridge) PermissionCache() *fsmediator.PermissionCache {
	return b.mediator.Cache()
}

// Handle is returned by Serve; Shutdown requests a graceful stop and
// Wait blocks until the accept loop has fully drained.
type Handle struct {
	server *http.Server
	done   chan struct{}
	Addr   string
}

// Shutdown asks the underlying HTTP server to stop accepting new
// connections and close idle ones.
func (h *Handle) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Wait blocks until the accept loop has returned.
func (h *Handle) Wait() {
	<-h.done
}

// Serve binds bindAddr, mounts the WebSocket upgrade endpoint, and
// spawns the accept loop as a background goroutine. Each accepted
// connection is handled on its own goroutine, running C1 then C2/C3
// until close.
func Serve(bindAddr string, bridge *Bridge) (*Handle, error) {
	router := chi.NewRouter()
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		bridge.handleUpgrade(w, r)
	})

	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", bindAddr, err)
	}

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Serve(listener)
	}()

	return &Handle{server: server, done: done, Addr: listener.Addr().String()}, nil
}

func (b *Bridge) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, ok := b.upgrade(w, r)
	if !ok {
		return
	}
	go b.handleConnection(conn)
}
