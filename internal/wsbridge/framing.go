package wsbridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loopwire/acpbridge/internal/acp"
	"github.com/loopwire/acpbridge/internal/audit"
)

// handleConnection runs C2/C3 until the client closes the socket or an
// unrecoverable read error occurs. Text and binary frames are treated
// identically as UTF-8 JSON; ping/pong handling is gorilla's default
// (answer with a pong carrying the same payload).
func (b *Bridge) handleConnection(wsConn *websocket.Conn) {
	defer wsConn.Close()

	conn := newConnection(wsConn)
	ctx := context.Background()

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			return
		}

		var req acp.Request
		if err := json.Unmarshal(data, &req); err != nil {
			conn.writeError(nil, acp.ParseError, "parse error", nil)
			continue
		}

		b.dispatchAudited(ctx, conn, &req)
	}
}

// dispatchAudited wraps dispatch with a synchronous audit insert,
// matching the teacher's inline (non-background-worker) logging shape.
func (b *Bridge) dispatchAudited(ctx context.Context, conn *connection, req *acp.Request) {
	if b.auditStore == nil || req.Method == "" {
		b.dispatch(ctx, conn, req)
		return
	}

	start := time.Now()
	b.dispatch(ctx, conn, req)

	rec := &audit.Record{
		Method:      req.Method,
		Params:      string(req.Params),
		RequestSize: int64(len(req.Params)),
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if conn.lastWasError {
		rec.Error = conn.lastErrMessage
	} else {
		rec.Response = string(conn.lastResult)
		rec.ResponseSize = int64(len(conn.lastResult))
	}
	b.auditStore.Create(rec)
}
