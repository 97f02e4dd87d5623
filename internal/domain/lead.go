package domain

import (
	"strings"
	"time"
)

// DateLayout is the storage format for date-only fields.
const DateLayout = "2006-01-02"

// LeadStatus enumerates lifecycle states for leads.
type LeadStatus string

const (
	StatusNew           LeadStatus = "New"
	StatusContacted     LeadStatus = "Contacted"
	StatusQualified     LeadStatus = "Qualified"
	StatusNegotiation   LeadStatus = "Negotiation"
	StatusConverted     LeadStatus = "Converted"
	StatusNotInterested LeadStatus = "Not Interested"
)

// AllStatuses lists the stored status vocabulary in pipeline order.
func AllStatuses() []LeadStatus {
	return []LeadStatus{
		StatusNew,
		StatusContacted,
		StatusQualified,
		StatusNegotiation,
		StatusConverted,
		StatusNotInterested,
	}
}

// ValidStatus reports whether the value belongs to the stored vocabulary.
func ValidStatus(s LeadStatus) bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusNegotiation, StatusConverted, StatusNotInterested:
		return true
	}
	return false
}

// IsTerminal reports whether a lead in this status is excluded from
// workload and follow-up counts.
func (s LeadStatus) IsTerminal() bool {
	return s == StatusConverted || s == StatusNotInterested
}

// LeadSource enumerates intake channels.
type LeadSource string

const (
	SourceWebsite  LeadSource = "Website"
	SourceFacebook LeadSource = "Facebook"
	SourceGoogle   LeadSource = "Google"
	SourceTwitter  LeadSource = "Twitter"
	SourceReferral LeadSource = "Referral"
	SourceOffline  LeadSource = "Offline"
)

// AllSources lists the intake channel vocabulary.
func AllSources() []LeadSource {
	return []LeadSource{
		SourceWebsite,
		SourceFacebook,
		SourceGoogle,
		SourceTwitter,
		SourceReferral,
		SourceOffline,
	}
}

// ValidSource reports whether the value is a known source.
func ValidSource(s LeadSource) bool {
	switch s {
	case SourceWebsite, SourceFacebook, SourceGoogle, SourceTwitter, SourceReferral, SourceOffline:
		return true
	}
	return false
}

// Lead is the aggregate for a prospective customer inquiry.
type Lead struct {
	ID                string
	Name              string
	Phone             string
	Email             *string
	Source            LeadSource
	VehicleInterested *string
	Budget            *string
	Status            LeadStatus
	AssignedTo        *string
	AssignedName      *string
	Score             Score
	FollowUpDate      *string
	LastActivityDate  *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NormalizePhone strips all whitespace so that numbers entered with
// different spacing compare equal for duplicate detection.
func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}
