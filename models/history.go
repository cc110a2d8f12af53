// path: models/history.go
package models

import "time"

type ActionType string

const (
	ActionClaim        ActionType = "CLAIM"
	ActionComplete     ActionType = "COMPLETE"
	ActionReopen       ActionType = "REOPEN"
	ActionStatusChange ActionType = "STATUS_CHANGE"
)

// HistoryEntry is one append-only audit record of a status transition.
type HistoryEntry struct {
	ID          string         `bson:"_id" json:"id"`
	Timestamp   time.Time      `bson:"timestamp" json:"timestamp"`
	RequestID   string         `bson:"request_id" json:"requestId"`
	ChangeType  string         `bson:"change_type" json:"changeType"`
	ActionType  ActionType     `bson:"action_type" json:"actionType"`
	OldStatus   Status         `bson:"old_status" json:"oldStatus"`
	NewStatus   Status         `bson:"new_status" json:"newStatus"`
	ChangedBy   string         `bson:"changed_by" json:"changedBy"`
	VolunteerID *string        `bson:"volunteer_id" json:"volunteerId"`
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Metadata keys written on history entries.
const (
	MetaRequestName    = "request_name"
	MetaRequestAddress = "request_address"
	MetaComments       = "comments"
	MetaClaimTime      = "claim_time"
	MetaCompletionTime = "completion_time"
)
