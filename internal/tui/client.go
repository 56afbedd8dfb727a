package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/loopwire/acpbridge/internal/audit"
	"github.com/loopwire/acpbridge/internal/fsmediator"
)

// AdminClient reads bridge state from the admin HTTP listener. The TUI
// never touches the audit database directly — it goes through the same
// loopback-only listener any other operator tooling would use.
type AdminClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdminClient returns a client pointed at the admin listener's
// baseURL, e.g. "http://127.0.0.1:8138".
func NewAdminClient(baseURL string) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchAuditLog retrieves up to limit audit records, newest first,
// optionally filtered to an exact method name.
func (c *AdminClient) FetchAuditLog(limit int, method string) ([]*audit.Record, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if method != "" {
		q.Set("method", method)
	}

	resp, err := c.httpClient.Get(c.baseURL + "/audit?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch audit log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch audit log: admin server returned %s", resp.Status)
	}

	var records []*audit.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode audit log response: %w", err)
	}
	return records, nil
}

// FetchPermissions retrieves a read-only snapshot of the bridge's
// in-memory permission cache.
func (c *AdminClient) FetchPermissions() ([]fsmediator.CacheEntry, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/permissions")
	if err != nil {
		return nil, fmt.Errorf("fetch permissions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch permissions: admin server returned %s", resp.Status)
	}

	var entries []fsmediator.CacheEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode permissions response: %w", err)
	}
	return entries, nil
}

// Healthz reports whether the bridge's admin listener considers the
// bridge healthy.
func (c *AdminClient) Healthz() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("healthz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz: bridge reported unhealthy (%s)", resp.Status)
	}
	return nil
}
