package wsbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loopwire/acpbridge/internal/acp"
	"github.com/loopwire/acpbridge/internal/fsmediator"
	"github.com/loopwire/acpbridge/internal/login"
)

// dispatch routes one decoded JSON-RPC request to its collaborator,
// enforcing the pre-initialize gate before anything else runs.
func (b *Bridge) dispatch(ctx context.Context, conn *connection, req *acp.Request) {
	id := req.ID
	if req.Method == "" {
		conn.writeError(id, acp.InvalidRequest, "invalid request", nil)
		return
	}

	if req.Method != "initialize" && !conn.isInitialized() {
		conn.writeError(id, acp.MethodNotFound, "method not found", nil)
		return
	}

	switch req.Method {
	case "initialize":
		b.handleInitialize(ctx, conn, req)
	case "session/new":
		b.handleSessionNew(ctx, conn, req)
	case "session/prompt":
		b.handleSessionPrompt(ctx, conn, req)
	case "fs/read_text_file":
		b.handleReadTextFile(conn, req)
	case "fs/write_text_file":
		b.handleWriteTextFile(ctx, conn, req)
	case "auth/cli_login":
		b.handleCLILogin(ctx, conn, req)
	default:
		conn.writeError(id, acp.MethodNotFound, "method not found", nil)
	}
}

func (b *Bridge) handleInitialize(ctx context.Context, conn *connection, req *acp.Request) {
	raw, err := b.agent.Initialize(ctx, req.Params)
	if err != nil {
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}

	spliced, err := spliceBridgeID(raw, b.config.BridgeID)
	if err != nil {
		conn.writeError(req.ID, acp.InvalidParams, "invalid params", err.Error())
		return
	}

	conn.setInitialized()
	conn.writeResult(req.ID, json.RawMessage(spliced))
}

// spliceBridgeID merges _meta.bridgeId into an agent's raw JSON reply,
// preserving any other _meta keys already present.
func spliceBridgeID(raw json.RawMessage, bridgeID string) ([]byte, error) {
	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse agent response: %w", err)
	}

	meta := map[string]json.RawMessage{}
	if existing, ok := result["_meta"]; ok {
		if err := json.Unmarshal(existing, &meta); err != nil {
			return nil, fmt.Errorf("parse existing _meta: %w", err)
		}
	}

	idJSON, err := json.Marshal(bridgeID)
	if err != nil {
		return nil, err
	}
	meta["bridgeId"] = idJSON

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	result["_meta"] = metaJSON

	return json.Marshal(result)
}

func (b *Bridge) handleSessionNew(ctx context.Context, conn *connection, req *acp.Request) {
	raw, err := b.agent.NewSession(ctx, req.Params)
	if err != nil {
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}
	conn.writeResult(req.ID, raw)
}

func (b *Bridge) handleSessionPrompt(ctx context.Context, conn *connection, req *acp.Request) {
	var params acp.PromptParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		conn.writeError(req.ID, acp.InvalidParams, "invalid params", err.Error())
		return
	}

	promptReq := acp.PromptRequest{
		SessionID: params.SessionID,
		Prompt:    []acp.ContentBlock{{Type: "text", Text: params.Prompt}},
	}
	sender := &notificationSender{conn: conn}

	resp, err := b.agent.Prompt(ctx, promptReq, sender)
	if err != nil {
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}
	conn.writeResult(req.ID, resp)
}

func (b *Bridge) handleReadTextFile(conn *connection, req *acp.Request) {
	var params struct {
		Path       string `json:"path"`
		LineOffset *int   `json:"line_offset"`
		LineLimit  *int   `json:"line_limit"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		conn.writeError(req.ID, acp.InvalidParams, "invalid params", err.Error())
		return
	}
	if params.Path == "" {
		conn.writeError(req.ID, acp.InvalidParams, "missing path", nil)
		return
	}

	canonical, err := fsmediator.Canonicalize(b.cwd, params.Path, false)
	if err != nil {
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}

	content, err := fsmediator.ReadTextFile(canonical, params.LineOffset, params.LineLimit)
	if err != nil {
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}

	conn.writeResult(req.ID, map[string]string{"content": content})
}

func (b *Bridge) handleWriteTextFile(ctx context.Context, conn *connection, req *acp.Request) {
	var params struct {
		SessionID string `json:"sessionId"`
		Path      string `json:"path"`
		Content   string `json:"content"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		conn.writeError(req.ID, acp.InvalidParams, "invalid params", err.Error())
		return
	}
	if params.Path == "" || params.SessionID == "" {
		conn.writeError(req.ID, acp.InvalidParams, "missing field", nil)
		return
	}

	err := b.mediator.WriteTextFile(ctx, b.agent, params.SessionID, params.Path, params.Content)
	if err != nil {
		var mediatorErr *fsmediator.MediatorError
		if ok := asMediatorError(err, &mediatorErr); ok {
			conn.writeError(req.ID, mediatorErr.Code, mediatorErr.Message, mediatorErr.Data)
			return
		}
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}
	conn.writeResult(req.ID, map[string]any{})
}

func asMediatorError(err error, target **fsmediator.MediatorError) bool {
	if me, ok := err.(*fsmediator.MediatorError); ok {
		*target = me
		return true
	}
	return false
}

func (b *Bridge) handleCLILogin(ctx context.Context, conn *connection, req *acp.Request) {
	result, err := b.loginExtractor.Extract(ctx)
	if err != nil {
		var le *login.Error
		if asLoginError(err, &le) {
			conn.writeError(req.ID, le.Code, le.Message, nil)
			return
		}
		conn.writeError(req.ID, acp.InternalError, "internal error", err.Error())
		return
	}
	conn.writeResult(req.ID, map[string]string{
		"status":   "started",
		"loginUrl": result.LoginURL,
	})
}

func asLoginError(err error, target **login.Error) bool {
	if le, ok := err.(*login.Error); ok {
		*target = le
		return true
	}
	return false
}
