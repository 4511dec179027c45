package models

import "time"

// Audited actions
const (
	ActionGet       = "get"
	ActionSet       = "set"
	ActionList      = "list"
	ActionSubscribe = "subscribe"
)

// AuditRecord represents a single attempted data or subscription action.
// Records are append-only and are never read back by the server.
type AuditRecord struct {
	LogID     string    `json:"log_id"`
	ClientID  string    `json:"client_id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
