package school

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// sessionWindow is the trailing window used for the "sessions this week" count.
const sessionWindow = 7 * 24 * time.Hour

var NowFunc = time.Now // mockable

// ComputeStudentMetrics summarizes each student's records into a StudentMetric.
// Students with no underlying records yield null/zero values, never errors.
// The slice preserves the input (roster) order.
func ComputeStudentMetrics(records []StudentRecords) []StudentMetric {
	since := NowFunc().Add(-sessionWindow)
	metrics := make([]StudentMetric, 0, len(records))
	for _, rec := range records {
		metrics = append(metrics, computeMetric(rec, since))
	}
	return metrics
}

func computeMetric(rec StudentRecords, since time.Time) StudentMetric {
	metric := StudentMetric{
		StudentID:   rec.Student.ID,
		StudentName: rec.Student.Name,
	}

	if len(rec.Submissions) > 0 {
		var sum float64
		for _, sub := range rec.Submissions {
			sum += sub.ScorePct
		}
		metric.AvgScorePct = null.Float64From(sum / float64(len(rec.Submissions)))
	}

	if len(rec.Sessions) > 0 {
		var sum float64
		for _, sess := range rec.Sessions {
			sum += sess.AccuracyPct
			if !sess.StartedAt.Before(since) {
				metric.SessionsThisWeek++
			}
		}
		metric.AvgAccuracyPct = null.Float64From(sum / float64(len(rec.Sessions)))
	}

	if mood, ok := latestMood(rec.Moods); ok {
		metric.RecentMood = null.IntFrom(mood.MoodScore)
	}
	return metric
}

// latestMood picks the mood check with the most recent date.
// Checks sharing the same date are tie-broken on the highest ID so the result
// stays deterministic regardless of storage order.
func latestMood(moods []MoodCheck) (MoodCheck, bool) {
	if len(moods) == 0 {
		return MoodCheck{}, false
	}
	latest := moods[0]
	for _, mood := range moods[1:] {
		if mood.Date.After(latest.Date) || (mood.Date.Equal(latest.Date) && mood.ID > latest.ID) {
			latest = mood
		}
	}
	return latest, true
}
