package fsmediator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loopwire/acpbridge/internal/acp"
)

// MediatorError carries a JSON-RPC error code, message, and optional data
// so the dispatcher can relay it without re-deriving the wire shape.
type MediatorError struct {
	Code    int
	Message string
	Data    any
}

func (e *MediatorError) Error() string { return e.Message }

// policyDenied builds a -32000 error whose message is itself the
// user-visible text ("Permission denied", "Permission request cancelled").
func policyDenied(message string) error {
	return &MediatorError{Code: acp.PolicyDenied, Message: message}
}

// internalErr builds a -32603 error carrying the specific failure class
// in data, per the documented transport/internal error shape.
func internalErr(data string) error {
	return &MediatorError{Code: acp.InternalError, Message: "internal error", Data: data}
}

// Mediator implements the permission-mediated write path (C6): sandbox,
// cache lookup, and — on a cache miss — a synchronous request_permission
// round trip to the agent before writing and possibly caching the result.
type Mediator struct {
	cache *PermissionCache
	cwd   string
}

// NewMediator returns a mediator backed by cache, resolving relative
// paths against cwd.
func NewMediator(cache *PermissionCache, cwd string) *Mediator {
	return &Mediator{cache: cache, cwd: cwd}
}

// Cache returns the mediator's backing permission cache, for read-only
// snapshotting by the admin HTTP listener.
func (m *Mediator) Cache() *PermissionCache {
	return m.cache
}

// WriteTextFile runs the full C6 ordering for one write_text_file call.
func (m *Mediator) WriteTextFile(ctx context.Context, agent acp.AgentTransport, sessionID, path, content string) error {
	canonical, err := Canonicalize(m.cwd, path, true)
	if err != nil {
		return internalErr(err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
		return internalErr(fmt.Sprintf("create parent directories: %v", err))
	}

	if decision, ok := m.cache.Get(canonical); ok {
		switch decision {
		case DecisionAllowAlways:
			return writeFile(canonical, content)
		case DecisionRejectAlways:
			return policyDenied("Permission denied")
		}
	}

	req := acp.RequestPermissionRequest{
		SessionID: sessionID,
		ToolCall: acp.ToolCall{
			ID:     "fs_write_text_file",
			Kind:   "edit",
			Title:  "Write file: " + canonical,
			Status: "in_progress",
		},
		Options: acp.StandardPermissionOptions(),
	}

	resp, err := agent.RequestPermission(ctx, req)
	if err != nil {
		return internalErr("permission request failed")
	}

	if resp.Outcome == acp.OutcomeCancelled {
		return policyDenied("Permission request cancelled")
	}

	switch resp.OptionID {
	case "allow_once":
		return writeFile(canonical, content)
	case "allow_always":
		if err := writeFile(canonical, content); err != nil {
			return err
		}
		m.cache.Set(canonical, DecisionAllowAlways)
		return nil
	case "reject_once":
		return policyDenied("Permission denied")
	case "reject_always":
		m.cache.Set(canonical, DecisionRejectAlways)
		return policyDenied("Permission denied")
	default:
		return policyDenied("Unknown permission option")
	}
}

func writeFile(canonicalPath, content string) error {
	if err := os.WriteFile(canonicalPath, []byte(content), 0o644); err != nil {
		return internalErr(fmt.Sprintf("write file: %v", err))
	}
	return nil
}
