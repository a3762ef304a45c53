package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// Decision outcomes recorded in the journal.
const (
	OutcomeDecided     = "decided"
	OutcomeParseError  = "parse_error"
	OutcomeRemoteError = "remote_error"
)

// DecisionRecord is one journal row describing how a decide call ended.
// Message content and decision bodies are never stored.
type DecisionRecord struct {
	ID         string    `json:"id"`                   // UUID
	RequestID  string    `json:"request_id,omitempty"` // X-Request-ID of the inbound call, if any
	CreatedAt  time.Time `json:"created_at"`
	HistoryLen int       `json:"history_len"`
	Outcome    string    `json:"outcome"`
	ToolName   string    `json:"tool_name"`
	LatencyMs  int64     `json:"latency_ms"`
	Error      string    `json:"error,omitempty"`
}
