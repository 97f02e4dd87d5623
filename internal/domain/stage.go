package domain

// Stage is one column of the kanban pipeline board. The board vocabulary
// differs from the stored status vocabulary only in its two terminal
// labels; the mapping below is total in both directions so no lead can
// fall outside a column.
type Stage string

const (
	StageNew         Stage = "New"
	StageContacted   Stage = "Contacted"
	StageQualified   Stage = "Qualified"
	StageNegotiation Stage = "Negotiation"
	StageClosedWon   Stage = "Closed Won"
	StageClosedLost  Stage = "Closed Lost"
)

// AllStages lists the board columns in display order.
func AllStages() []Stage {
	return []Stage{
		StageNew,
		StageContacted,
		StageQualified,
		StageNegotiation,
		StageClosedWon,
		StageClosedLost,
	}
}

// ValidStage reports whether the value is a known board column.
func ValidStage(s Stage) bool {
	switch s {
	case StageNew, StageContacted, StageQualified, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// StageForStatus maps a stored status onto its board column.
func StageForStatus(status LeadStatus) Stage {
	switch status {
	case StatusConverted:
		return StageClosedWon
	case StatusNotInterested:
		return StageClosedLost
	default:
		return Stage(status)
	}
}

// StatusForStage maps a board column back onto the stored vocabulary.
func StatusForStage(stage Stage) LeadStatus {
	switch stage {
	case StageClosedWon:
		return StatusConverted
	case StageClosedLost:
		return StatusNotInterested
	default:
		return LeadStatus(stage)
	}
}

// CanonicalStatus accepts either vocabulary on input and returns the
// stored form, so clients may write the board aliases Closed Won and
// Closed Lost interchangeably with Converted and Not Interested.
func CanonicalStatus(raw string) (LeadStatus, bool) {
	if ValidStatus(LeadStatus(raw)) {
		return LeadStatus(raw), true
	}
	if ValidStage(Stage(raw)) {
		return StatusForStage(Stage(raw)), true
	}
	return "", false
}
