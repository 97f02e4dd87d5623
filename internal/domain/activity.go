package domain

import "time"

// ActivityType classifies a log entry.
type ActivityType string

const (
	ActivityCall     ActivityType = "call"
	ActivityNote     ActivityType = "note"
	ActivityStatus   ActivityType = "status"
	ActivityFollowup ActivityType = "followup"
	ActivitySystem   ActivityType = "system"
)

// ValidActivityType reports whether the value is a known activity type.
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityCall, ActivityNote, ActivityStatus, ActivityFollowup, ActivitySystem:
		return true
	}
	return false
}

// SystemPerformer labels automated activity entries.
const SystemPerformer = "System"

// DefaultPerformer labels manual entries when no performer is supplied.
const DefaultPerformer = "User"

// Activity is an immutable timestamped log entry attached to one lead.
// Entries are never updated; they disappear only when their parent lead
// is deleted.
type Activity struct {
	ID          string
	LeadID      string
	Type        ActivityType
	Description string
	PerformedBy string
	CreatedAt   time.Time
}
