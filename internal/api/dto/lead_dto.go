package dto

// CreateLeadRequest carries intake fields for a new lead.
type CreateLeadRequest struct {
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	Email             *string `json:"email"`
	Source            string  `json:"source"`
	VehicleInterested *string `json:"vehicle_interested"`
	Budget            *string `json:"budget"`
	Status            *string `json:"status"`
	AssignedTo        *string `json:"assigned_to"`
	FollowUpDate      *string `json:"follow_up_date"`
}

// UpdateLeadRequest carries a partial lead update; absent fields are
// untouched.
type UpdateLeadRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	Source            *string `json:"source"`
	VehicleInterested *string `json:"vehicle_interested"`
	Budget            *string `json:"budget"`
	Status            *string `json:"status"`
	AssignedTo        *string `json:"assigned_to"`
	Score             *string `json:"score"`
	FollowUpDate      *string `json:"follow_up_date"`
	UpdatedBy         *string `json:"updated_by"`
}

// CheckDuplicateRequest carries the phone number to probe.
type CheckDuplicateRequest struct {
	Phone string `json:"phone"`
}

// ConvertLeadRequest optionally names who performed the conversion.
type ConvertLeadRequest struct {
	PerformedBy *string `json:"performed_by"`
}

// LeadResponse is the enriched lead shape. Score carries the computed
// temperature, which takes precedence over the stored field in views.
type LeadResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	Email             *string `json:"email"`
	Source            string  `json:"source"`
	VehicleInterested *string `json:"vehicle_interested"`
	Budget            *string `json:"budget"`
	Status            string  `json:"status"`
	AssignedTo        *string `json:"assigned_to"`
	AssignedName      *string `json:"assigned_name"`
	Score             string  `json:"score"`
	FollowUpDate      *string `json:"follow_up_date"`
	LastActivityDate  *string `json:"last_activity_date"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	DaysSinceActivity *int    `json:"daysSinceActivity"`
	IsAging           bool    `json:"isAging"`
}

// DuplicateCheckResponse reports a duplicate probe outcome.
type DuplicateCheckResponse struct {
	IsDuplicate bool          `json:"isDuplicate"`
	Existing    *LeadResponse `json:"existing"`
}

// BoardColumnResponse is one kanban column.
type BoardColumnResponse struct {
	Stage string         `json:"stage"`
	Leads []LeadResponse `json:"leads"`
}

// MoveLeadRequest asks to place a lead into another board column.
type MoveLeadRequest struct {
	LeadID  string `json:"lead_id"`
	ToStage string `json:"to_stage"`
}

// MoveLeadResponse returns the moved lead plus the refreshed board for
// client-side reconciliation.
type MoveLeadResponse struct {
	Lead  LeadResponse          `json:"lead"`
	Board []BoardColumnResponse `json:"board"`
}
