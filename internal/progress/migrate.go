package progress

import (
	"sort"
	"time"
)

// CurrentVersion is the schema version written by Serialize.
const CurrentVersion = 3

// legacyDateLayout is how the first releases stored lastPracticeDate.
const legacyDateLayout = "Mon Jan 02 2006"

// Migration upgrades a decoded envelope from version From to From+1.
// Steps must be idempotent and must return their input untouched when the
// shape is not what they expect.
type Migration struct {
	From  int
	Name  string
	Apply func(env map[string]any, todayKey string) map[string]any
}

// Migrations is the ordered upgrade ladder.
var Migrations = []Migration{
	{From: 0, Name: "initial", Apply: func(env map[string]any, _ string) map[string]any { return env }},
	{From: 1, Name: "reset-hearts", Apply: migrateHearts},
	{From: 2, Name: "history-backfill", Apply: migrateHistory},
}

// Migrate applies every step from version up to CurrentVersion in order.
func Migrate(env map[string]any, version int, todayKey string) map[string]any {
	steps := append([]Migration(nil), Migrations...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].From < steps[j].From })
	for _, m := range steps {
		if m.From < version {
			continue
		}
		env = m.Apply(env, todayKey)
	}
	return env
}

// progressObject digs state.progress out of an envelope.
func progressObject(env map[string]any) (map[string]any, bool) {
	state, ok := env["state"].(map[string]any)
	if !ok {
		return nil, false
	}
	p, ok := state["progress"].(map[string]any)
	return p, ok
}

func migrateHearts(env map[string]any, _ string) map[string]any {
	p, ok := progressObject(env)
	if !ok {
		return env
	}
	p["hearts"] = float64(DefaultMaxHearts)
	p["maxHearts"] = float64(DefaultMaxHearts)
	return env
}

func migrateHistory(env map[string]any, todayKey string) map[string]any {
	p, ok := progressObject(env)
	if !ok {
		return env
	}

	if s, ok := p["lastPracticeDate"].(string); ok {
		if t, err := time.Parse(legacyDateLayout, s); err == nil {
			p["lastPracticeDate"] = DateKey(t)
		}
	}

	if h, ok := p["history"].([]any); ok && len(h) > 0 {
		return env
	}
	r := Record{
		TotalXP:           intField(p, "totalXP"),
		QuestionsAnswered: intField(p, "questionsAnswered"),
		CorrectAnswers:    intField(p, "correctAnswers"),
		DayStreak:         intField(p, "dayStreak"),
	}
	points := Backfill(r, todayKey)
	history := make([]any, 0, len(points))
	for _, pt := range points {
		history = append(history, map[string]any{
			"dateKey":           pt.DateKey,
			"totalXP":           float64(pt.TotalXP),
			"questionsAnswered": float64(pt.QuestionsAnswered),
			"correctAnswers":    float64(pt.CorrectAnswers),
			"dayStreak":         float64(pt.DayStreak),
		})
	}
	p["history"] = history
	return env
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
