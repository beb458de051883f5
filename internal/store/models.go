package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// Session statuses.
const (
	SessionActive      = "active"
	SessionCompleted   = "completed"
	SessionOutOfHearts = "out_of_hearts"
	SessionAbandoned   = "abandoned"
)

type PracticeSession struct {
	ID          string
	CategoryID  string
	Status      string
	Answered    int
	Correct     int
	XPEarned    int
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SessionFilter is used to filter practice sessions in queries.
type SessionFilter struct {
	CategoryID string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// DailySessionSummary aggregates finished sessions per category per day.
type DailySessionSummary struct {
	Date         string
	CategoryID   string
	SessionCount int
	Answered     int
	Correct      int
	XPEarned     int
}
