package audit

import (
	"database/sql"
	"fmt"
	"time"
)

// Record is one dispatched JSON-RPC call, write-only from the
// dispatcher's perspective and never read by the core — only by the
// admin server and TUI.
type Record struct {
	ID           int64
	Method       string
	Params       string
	Response     string
	Error        string
	RequestSize  int64
	ResponseSize int64
	DurationMs   int64
	CreatedAt    time.Time
}

// MaxFieldSize bounds how much of params/response is retained per row.
const MaxFieldSize = 100 * 1024

func truncateField(s string) string {
	if len(s) > MaxFieldSize {
		return s[:MaxFieldSize] + "...(truncated)"
	}
	return s
}

// Create inserts one audit record and fills in its assigned ID.
func (s *Store) Create(rec *Record) error {
	params := truncateField(rec.Params)
	response := truncateField(rec.Response)

	result, err := s.db.Exec(`
		INSERT INTO bridge_audit_logs (
			method, params, response, error, request_size, response_size, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Method, params, response, rec.Error,
		rec.RequestSize, rec.ResponseSize, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("create audit record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get audit record id: %w", err)
	}
	rec.ID = id
	return nil
}

// List returns audit records newest-first, optionally filtered by exact
// method name, bounded to limit rows.
func (s *Store) List(limit int, method string) ([]*Record, error) {
	var rows *sql.Rows
	var err error
	if method == "" {
		rows, err = s.db.Query(`
			SELECT id, method, params, response, error, request_size, response_size, duration_ms, created_at
			FROM bridge_audit_logs ORDER BY created_at DESC, id DESC LIMIT ?
		`, limit)
	} else {
		rows, err = s.db.Query(`
			SELECT id, method, params, response, error, request_size, response_size, duration_ms, created_at
			FROM bridge_audit_logs WHERE method = ? ORDER BY created_at DESC, id DESC LIMIT ?
		`, method, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var params, response, errMsg sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.Method, &params, &response, &errMsg,
			&rec.RequestSize, &rec.ResponseSize, &rec.DurationMs, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Params = params.String
		rec.Response = response.String
		rec.Error = errMsg.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of stored audit records.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bridge_audit_logs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit records: %w", err)
	}
	return count, nil
}
