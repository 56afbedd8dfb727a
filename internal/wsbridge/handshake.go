package wsbridge

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// upgrade runs the C1 handshake policy and, on success, upgrades the
// connection. Origin is checked by exact allow-list membership;
// subprotocol by case-insensitive match against a single configured
// token, echoed back in its configured (canonical) case.
func (b *Bridge) upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, bool) {
	origin := r.Header.Get("Origin")
	if !b.originAllowed(origin) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return nil, false
	}

	if !b.subprotocolOffered(r) {
		http.Error(w, "Missing required subprotocol", http.StatusUpgradeRequired)
		return nil, false
	}

	header := http.Header{}
	header.Set("Sec-WebSocket-Protocol", b.config.Subprotocol)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		return nil, false
	}
	return conn, true
}

func (b *Bridge) originAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range b.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (b *Bridge) subprotocolOffered(r *http.Request) bool {
	raw := r.Header.Get("Sec-WebSocket-Protocol")
	if raw == "" {
		return false
	}
	for _, candidate := range strings.Split(raw, ",") {
		candidate = strings.TrimSpace(candidate)
		if strings.EqualFold(candidate, b.config.Subprotocol) {
			return true
		}
	}
	return false
}
