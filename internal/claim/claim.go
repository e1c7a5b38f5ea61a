package claim

import "time"

// HistoryEntry is a compact summary of one successful submission
type HistoryEntry struct {
	ClaimID        int64     `json:"claim_id"`
	Status         string    `json:"status"`
	DaysDifference int       `json:"days_difference"`
	Messages       string    `json:"messages"` // Messages joined with "; "
	Timestamp      time.Time `json:"timestamp"`
}

// AuditRecord is a persisted trace of one decision service exchange
type AuditRecord struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"session_id"`
	ClaimID      int64         `json:"claim_id"`
	Success      bool          `json:"success"`
	ClaimStatus  string        `json:"claim_status"`
	DecisionID   string        `json:"decision_id,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Request      string        `json:"request"`
	Response     string        `json:"response,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
