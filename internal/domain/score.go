package domain

import "time"

// Score classifies lead temperature from status and activity recency.
type Score string

const (
	ScoreHot  Score = "hot"
	ScoreWarm Score = "warm"
	ScoreCold Score = "cold"
)

// noActivitySentinel stands in for "never had an activity" so that such
// leads always score cold.
const noActivitySentinel = 99

// DaysSinceActivity returns whole days elapsed between the last-activity
// date and now, or the sentinel when the date is absent or unparseable.
func DaysSinceActivity(lastActivityDate *string, now time.Time) int {
	if lastActivityDate == nil || *lastActivityDate == "" {
		return noActivitySentinel
	}
	last, err := time.Parse(DateLayout, *lastActivityDate)
	if err != nil {
		return noActivitySentinel
	}
	days := int(now.Sub(last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// HasActivity reports whether the lead carries a usable last-activity date.
func HasActivity(lastActivityDate *string) bool {
	if lastActivityDate == nil || *lastActivityDate == "" {
		return false
	}
	_, err := time.Parse(DateLayout, *lastActivityDate)
	return err == nil
}

// ComputeScore applies the temperature rule in priority order:
// recent activity on an advanced-stage lead is hot, any activity within
// three days is warm, everything else is cold.
func ComputeScore(status LeadStatus, lastActivityDate *string, now time.Time) Score {
	days := DaysSinceActivity(lastActivityDate, now)
	if days <= 1 && (status == StatusQualified || status == StatusNegotiation) {
		return ScoreHot
	}
	if days <= 3 {
		return ScoreWarm
	}
	return ScoreCold
}

// Rank orders scores hot before warm before cold for hot-first sorting.
func (s Score) Rank() int {
	switch s {
	case ScoreHot:
		return 0
	case ScoreWarm:
		return 1
	default:
		return 2
	}
}
