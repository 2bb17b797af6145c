package client

import (
	"github.com/volatiletech/null/v8"

	"github.com/mwangaza/darasa/core/school"
)

// Dashboard thresholds.
const (
	// activeSessionsMin is the per-week session count from which a student
	// counts as actively practicing.
	activeSessionsMin = 2
	// lowMoodMax is the mood score at or below which a student counts as
	// low mood.
	lowMoodMax = 2
)

// ClassRollup is the class-level aggregate shown in the detail view's
// summary panel.
type ClassRollup struct {
	AvgAccuracyPct  null.Float64 `json:"avgAccuracyPct"`
	ActiveStudents  int          `json:"activeStudents"`
	LowMoodStudents int          `json:"lowMoodStudents"`
}

// Rollup combines per-student metrics into a ClassRollup.
// AvgAccuracyPct averages the non-null per-student accuracies only; it stays
// null when no student has any recorded session.
func Rollup(metrics []school.StudentMetric) ClassRollup {
	var rollup ClassRollup
	var accSum float64
	var accCount int
	for _, m := range metrics {
		if m.AvgAccuracyPct.Valid {
			accSum += m.AvgAccuracyPct.Float64
			accCount++
		}
		if m.SessionsThisWeek >= activeSessionsMin {
			rollup.ActiveStudents++
		}
		if m.RecentMood.Valid && m.RecentMood.Int <= lowMoodMax {
			rollup.LowMoodStudents++
		}
	}
	if accCount > 0 {
		rollup.AvgAccuracyPct = null.Float64From(accSum / float64(accCount))
	}
	return rollup
}

// FilterMetrics applies the detail view's roster filters: "minimum average
// score" and "maximum recent mood". A nil threshold disables its filter;
// students with a null value are excluded by the corresponding filter.
func FilterMetrics(metrics []school.StudentMetric, minAvgScorePct *float64, maxRecentMood *int) []school.StudentMetric {
	filtered := make([]school.StudentMetric, 0, len(metrics))
	for _, m := range metrics {
		if minAvgScorePct != nil && (!m.AvgScorePct.Valid || m.AvgScorePct.Float64 < *minAvgScorePct) {
			continue
		}
		if maxRecentMood != nil && (!m.RecentMood.Valid || m.RecentMood.Int > *maxRecentMood) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
