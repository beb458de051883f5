package progress

import (
	"math"
	"time"
)

const (
	XPPerLevel       = 100
	DefaultMaxHearts = 5
	HistoryCap       = 180

	dateKeyLayout = "2006-01-02"
)

// CategorySeed describes a known quiz category used to seed CategoryProgress.
type CategorySeed struct {
	ID             string
	TotalQuestions int
}

type CategoryProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	BestScore int `json:"bestScore"`
}

// HistoryPoint is a snapshot of cumulative totals as of the end of DateKey.
type HistoryPoint struct {
	DateKey           string `json:"dateKey"`
	TotalXP           int    `json:"totalXP"`
	QuestionsAnswered int    `json:"questionsAnswered"`
	CorrectAnswers    int    `json:"correctAnswers"`
	DayStreak         int    `json:"dayStreak"`
}

// Record is the user's gamification state. Level is never stored; use Level().
type Record struct {
	DayStreak         int                         `json:"dayStreak"`
	TotalXP           int                         `json:"totalXP"`
	Hearts            int                         `json:"hearts"`
	MaxHearts         int                         `json:"maxHearts"`
	QuestionsAnswered int                         `json:"questionsAnswered"`
	CorrectAnswers    int                         `json:"correctAnswers"`
	CategoryProgress  map[string]CategoryProgress `json:"categoryProgress"`
	LastPracticeDate  *string                     `json:"lastPracticeDate"`
	History           []HistoryPoint              `json:"history"`
}

// HeartState classifies the hearts counter.
type HeartState int

const (
	HeartsDepleted HeartState = iota
	HeartsPartial
	HeartsFull
)

func (h HeartState) String() string {
	switch h {
	case HeartsDepleted:
		return "depleted"
	case HeartsFull:
		return "full"
	default:
		return "partial"
	}
}

// Defaults returns a freshly seeded record.
func Defaults(seeds []CategorySeed) Record {
	r := Record{
		Hearts:           DefaultMaxHearts,
		MaxHearts:        DefaultMaxHearts,
		CategoryProgress: make(map[string]CategoryProgress, len(seeds)),
		History:          []HistoryPoint{},
	}
	for _, s := range seeds {
		r.CategoryProgress[s.ID] = CategoryProgress{Total: s.TotalQuestions}
	}
	return r
}

// LevelFor maps an XP total to its level.
func LevelFor(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

func (r Record) Level() int { return LevelFor(r.TotalXP) }

func (r Record) XPToNextLevel() int {
	return XPPerLevel - r.TotalXP%XPPerLevel
}

// LevelProgress is the fraction of the current level already earned.
func (r Record) LevelProgress() float64 {
	return float64(r.TotalXP%XPPerLevel) / XPPerLevel
}

// Accuracy is the lifetime percentage of correct answers.
func (r Record) Accuracy() int {
	if r.QuestionsAnswered == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.CorrectAnswers) / float64(r.QuestionsAnswered)))
}

func (r Record) HeartState() HeartState {
	switch {
	case r.Hearts <= 0:
		return HeartsDepleted
	case r.Hearts >= r.MaxHearts:
		return HeartsFull
	default:
		return HeartsPartial
	}
}

// Snapshot builds the history point for dateKey from the current totals.
func (r Record) Snapshot(dateKey string) HistoryPoint {
	return HistoryPoint{
		DateKey:           dateKey,
		TotalXP:           r.TotalXP,
		QuestionsAnswered: r.QuestionsAnswered,
		CorrectAnswers:    r.CorrectAnswers,
		DayStreak:         r.DayStreak,
	}
}

// Clone returns a deep copy so callers cannot reach the store's state.
func (r Record) Clone() Record {
	c := r
	c.CategoryProgress = make(map[string]CategoryProgress, len(r.CategoryProgress))
	for k, v := range r.CategoryProgress {
		c.CategoryProgress[k] = v
	}
	c.History = append([]HistoryPoint{}, r.History...)
	if r.LastPracticeDate != nil {
		d := *r.LastPracticeDate
		c.LastPracticeDate = &d
	}
	return c
}

// DateKey formats t as a local calendar day.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses a calendar-day key into midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateKeyLayout, key, loc)
}

// AddDays shifts a date key by n calendar days. Invalid keys are returned as is.
func AddDays(key string, n int) string {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return key
	}
	return DateKey(t.AddDate(0, 0, n))
}
