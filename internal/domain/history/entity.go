package history

import "time"

// Record is one persisted generation attempt, kept for auditing.
type Record struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"` // property | comp | combined | batch
	Key        string    `json:"key"`  // subject address or source pdf name
	Filename   string    `json:"filename,omitempty"`
	Status     string    `json:"status"` // success | failed
	Message    string    `json:"message,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
