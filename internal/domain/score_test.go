package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateDaysAgo(now time.Time, days int) *string {
	s := now.AddDate(0, 0, -days).Format(DateLayout)
	return &s
}

func TestComputeScore(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		status   LeadStatus
		daysAgo  *int
		expected Score
	}{
		{"qualified today is hot", StatusQualified, intPtr(0), ScoreHot},
		{"qualified yesterday is hot", StatusQualified, intPtr(1), ScoreHot},
		{"negotiation yesterday is hot", StatusNegotiation, intPtr(1), ScoreHot},
		{"qualified two days ago cools to warm", StatusQualified, intPtr(2), ScoreWarm},
		{"new lead active today is warm not hot", StatusNew, intPtr(0), ScoreWarm},
		{"contacted yesterday is warm", StatusContacted, intPtr(1), ScoreWarm},
		{"converted yesterday is warm", StatusConverted, intPtr(1), ScoreWarm},
		{"three days ago is still warm", StatusNew, intPtr(3), ScoreWarm},
		{"four days ago is cold", StatusQualified, intPtr(4), ScoreCold},
		{"no activity ever is cold", StatusQualified, nil, ScoreCold},
		{"no activity on new lead is cold", StatusNew, nil, ScoreCold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var last *string
			if tc.daysAgo != nil {
				last = dateDaysAgo(now, *tc.daysAgo)
			}
			assert.Equal(t, tc.expected, ComputeScore(tc.status, last, now))
		})
	}
}

func TestDaysSinceActivity(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)

	t.Run("nil date uses sentinel", func(t *testing.T) {
		assert.Equal(t, 99, DaysSinceActivity(nil, now))
	})

	t.Run("unparseable date uses sentinel", func(t *testing.T) {
		bad := "31/08/2026"
		assert.Equal(t, 99, DaysSinceActivity(&bad, now))
	})

	t.Run("same day is zero", func(t *testing.T) {
		assert.Equal(t, 0, DaysSinceActivity(dateDaysAgo(now, 0), now))
	})

	t.Run("whole days regardless of clock time", func(t *testing.T) {
		assert.Equal(t, 5, DaysSinceActivity(dateDaysAgo(now, 5), now))
	})

	t.Run("future date clamps to zero", func(t *testing.T) {
		future := now.AddDate(0, 0, 2).Format(DateLayout)
		assert.Equal(t, 0, DaysSinceActivity(&future, now))
	})
}

func TestScoreRank(t *testing.T) {
	require.Less(t, ScoreHot.Rank(), ScoreWarm.Rank())
	require.Less(t, ScoreWarm.Rank(), ScoreCold.Rank())
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizePhone("+91 98765 43210"))
	assert.Equal(t, "+919876543210", NormalizePhone("  +91\t98765 43210 "))
	assert.Equal(t, "+919876543210", NormalizePhone("+919876543210"))
}

func intPtr(v int) *int { return &v }
