package dto

import "time"

// UserResponse is a user enriched with workload counts.
type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	ActiveLeads int    `json:"activeLeads"`
	TotalLeads  int    `json:"totalLeads"`
	Converted   int    `json:"converted"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued access token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
