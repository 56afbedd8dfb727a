package login

import "github.com/loopwire/acpbridge/internal/acp"

// Error carries a JSON-RPC error code alongside its message so the
// dispatcher can relay a login failure without re-deriving the code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

func resolutionFailed() error {
	return &Error{Code: acp.PolicyDenied, Message: "Unable to locate Claude login CLI"}
}

func internalErr(message string) error {
	return &Error{Code: acp.InternalError, Message: message}
}
