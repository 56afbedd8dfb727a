package acp

import (
	"context"
	"encoding/json"
)

// NotificationSender is handed to the agent transport for the duration of a
// prompt call so it can emit session/update notifications to the client.
// Implementations must serialize concurrent sends at the frame boundary.
type NotificationSender interface {
	Send(ctx context.Context, method string, params any) error
}

// AgentTransport is the opaque capability interface the bridge dispatches
// onto. The underlying agent process and its wire protocol are out of
// scope: callers only see these four operations.
type AgentTransport interface {
	// Initialize forwards params verbatim and returns the raw agent reply;
	// the dispatcher splices _meta.bridgeId into it before relaying.
	Initialize(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

	// NewSession forwards params verbatim and returns the raw agent reply.
	NewSession(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

	// Prompt issues a prompt call; notifications emitted by the agent
	// before it returns flow through sender in the order produced.
	Prompt(ctx context.Context, req PromptRequest, sender NotificationSender) (*PromptResponse, error)

	// RequestPermission asks the agent to mediate a pending write.
	RequestPermission(ctx context.Context, req RequestPermissionRequest) (*RequestPermissionResponse, error)
}
