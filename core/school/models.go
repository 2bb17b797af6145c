package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mwangaza/darasa/core"
)

type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type Class struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"schoolId"`
	TeacherID string    `json:"teacherId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

// ClassSummary is the list representation of a Class.
type ClassSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StudentCount    int    `json:"studentCount"`
	AssignmentCount int    `json:"assignmentCount"`
}

type Student struct {
	ID        string      `json:"id"`
	ClassID   string      `json:"classId"`
	Name      string      `json:"name"`
	Email     null.String `json:"email,omitempty"`
	CreatedAt time.Time   `json:"createdAt"` // UTC
}

type Assignment struct {
	ID              string    `json:"id"`
	ClassID         string    `json:"classId"`
	Title           string    `json:"title"`
	Topic           string    `json:"topic"`
	DueAt           time.Time `json:"dueAt"`
	TimeEstimateMin int       `json:"timeEstimateMin"`
	CreatedAt       time.Time `json:"createdAt"` // UTC
}

type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	ScorePct     float64   `json:"scorePct"`
	CompletedAt  time.Time `json:"completedAt"`
}

type PracticeSession struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StartedAt   time.Time `json:"startedAt"`
	DurationMin int       `json:"durationMin"`
	AccuracyPct float64   `json:"accuracyPct"`
}

type MoodCheck struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Date      time.Time `json:"date"` // calendar date
	MoodScore int       `json:"moodScore"`
}

// StudentRecords bundles a Student with everything the metrics aggregation needs.
type StudentRecords struct {
	Student     Student
	Submissions []Submission
	Sessions    []PracticeSession
	Moods       []MoodCheck
}

// StudentMetric is the per-student summary served to the dashboard.
// Nullable fields marshal to JSON null when no underlying records exist.
type StudentMetric struct {
	StudentID        string       `json:"studentId"`
	StudentName      string       `json:"studentName"`
	AvgScorePct      null.Float64 `json:"avgScorePct"`
	SessionsThisWeek int          `json:"sessionsThisWeek"`
	AvgAccuracyPct   null.Float64 `json:"avgAccuracyPct"`
	RecentMood       null.Int     `json:"recentMood"`
}

// NewAssignment contains information needed to create a new Assignment.
// DueAt stays a string until validation passes; the server is authoritative
// on its format.
type NewAssignment struct {
	ClassID         string `json:"classId" validate:"required,uuid4"`
	Title           string `json:"title" validate:"required"`
	Topic           string `json:"topic" validate:"required"`
	DueAt           string `json:"dueAt" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	TimeEstimateMin int    `json:"timeEstimateMin" validate:"required,gt=0"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.ClassID = core.CleanString(na.ClassID)
	na.Title = core.CleanString(na.Title)
	na.Topic = core.CleanString(na.Topic)
	na.DueAt = core.CleanString(na.DueAt)
	return validate.Struct(na)
}

// assignment converts validated input into an Assignment; DueAt has already
// been checked against the RFC 3339 layout.
func (na NewAssignment) assignment() Assignment {
	dueAt, _ := time.Parse(time.RFC3339, na.DueAt)
	return Assignment{
		ClassID:         na.ClassID,
		Title:           na.Title,
		Topic:           na.Topic,
		DueAt:           dueAt.UTC(),
		TimeEstimateMin: na.TimeEstimateMin,
		CreatedAt:       time.Now().UTC(),
	}
}
