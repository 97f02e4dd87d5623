package events

import (
	"time"

	"github.com/autopulse/crm-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadCreated       EventType = "lead_created"
	EventLeadAssigned      EventType = "lead_assigned"
	EventLeadStatusChanged EventType = "lead_status_changed"
	EventLeadConverted     EventType = "lead_converted"
	EventLeadDeleted       EventType = "lead_deleted"
	EventActivityLogged    EventType = "activity_logged"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LeadID    string      `json:"lead_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LeadCreatedPayload payload.
type LeadCreatedPayload struct {
	Source       domain.LeadSource `json:"source"`
	Status       domain.LeadStatus `json:"status"`
	AssignedTo   *string           `json:"assigned_to,omitempty"`
	AutoAssigned bool              `json:"auto_assigned"`
}

// LeadAssignedPayload payload.
type LeadAssignedPayload struct {
	AssignedTo   *string `json:"assigned_to,omitempty"`
	AssignedName *string `json:"assigned_name,omitempty"`
}

// LeadStatusChangedPayload payload.
type LeadStatusChangedPayload struct {
	OldStatus  domain.LeadStatus `json:"old_status"`
	NewStatus  domain.LeadStatus `json:"new_status"`
	AssignedTo *string           `json:"assigned_to,omitempty"`
}

// LeadConvertedPayload payload.
type LeadConvertedPayload struct {
	PriorStatus domain.LeadStatus `json:"prior_status"`
	AssignedTo  *string           `json:"assigned_to,omitempty"`
}

// LeadDeletedPayload payload.
type LeadDeletedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
}

// ActivityLoggedPayload payload.
type ActivityLoggedPayload struct {
	ActivityID string              `json:"activity_id"`
	Type       domain.ActivityType `json:"activity_type"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
}
