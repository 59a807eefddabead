package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeFetchSucceeded ActivityType = "fetch_succeeded"
	TypeFetchFailed    ActivityType = "fetch_failed"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	return t == TypeFetchSucceeded || t == TypeFetchFailed
}

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	FetchID      string       `json:"fetch_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Rows         int          `json:"rows"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
