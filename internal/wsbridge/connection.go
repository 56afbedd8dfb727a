package wsbridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/loopwire/acpbridge/internal/acp"
)

// connection holds per-WebSocket state: the initialized gate (which never
// resets once true) and the shared write half guarded by a mutex so the
// dispatcher and the notification sender never interleave frame bytes.
type connection struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	initMu      sync.Mutex
	initialized bool

	// lastResult/lastErrMessage record the outcome of the most recent
	// writeResult/writeError call, read back by the audit hook after
	// dispatch returns. Only one call's worth of state is needed since
	// dispatch handles exactly one request per invocation.
	lastResult     json.RawMessage
	lastErrCode    int
	lastErrMessage string
	lastWasError   bool
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{conn: conn}
}

func (c *connection) isInitialized() bool {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.initialized
}

func (c *connection) setInitialized() {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	c.initialized = true
}

func (c *connection) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *connection) writeResult(id json.RawMessage, result any) error {
	c.lastWasError = false
	if b, err := json.Marshal(result); err == nil {
		c.lastResult = b
	}
	return c.writeJSON(acp.NewResponse(id, result))
}

func (c *connection) writeError(id json.RawMessage, code int, message string, data any) error {
	c.lastWasError = true
	c.lastErrCode = code
	c.lastErrMessage = message
	return c.writeJSON(acp.NewErrorResponse(id, code, message, data))
}

// notificationSender binds one connection's write half to the
// acp.NotificationSender capability handed to the agent for the duration
// of a session/prompt call (C7).
type notificationSender struct {
	conn *connection
}

func (s *notificationSender) Send(ctx context.Context, method string, params any) error {
	if err := s.conn.writeJSON(acp.NewNotification(method, params)); err != nil {
		return err
	}
	return nil
}
