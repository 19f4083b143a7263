package history

import "time"

// Outcome values stored for each verified delivery
const (
	OutcomePong     = "pong"
	OutcomeReplied  = "replied"
	OutcomeRejected = "rejected" // verified but unsupported payload
)

// InteractionRecord represents a single verified interaction delivery in the database
type InteractionRecord struct {
	ID              int64     `json:"id"`
	ConnID          string    `json:"conn_id"`
	RemoteAddr      string    `json:"remote_addr"`
	InteractionType int64     `json:"interaction_type"`
	Command         *string   `json:"command,omitempty"` // nullable
	Outcome         string    `json:"outcome"`
	ReceivedAt      time.Time `json:"received_at"`
	DurationMillis  *int64    `json:"duration_ms,omitempty"` // nullable
}
