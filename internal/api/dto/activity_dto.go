package dto

// CreateActivityRequest carries a manual activity log entry.
type CreateActivityRequest struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	PerformedBy *string `json:"performed_by"`
}

// ActivityResponse is one activity log entry.
type ActivityResponse struct {
	ID          string `json:"id"`
	LeadID      string `json:"lead_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	PerformedBy string `json:"performed_by"`
	CreatedAt   string `json:"created_at"`
}
