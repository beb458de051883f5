package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	s, clk := newTestStore(t)
	s.UpdateStreak()
	require.NoError(t, s.AddXP(130))
	s.RecordAnswer(true, "road-signs")
	s.LoseHeart()
	clk.advance(1)
	s.UpdateStreak()

	blob, err := s.Serialize()
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(blob, &env))
	assert.EqualValues(t, CurrentVersion, env["version"])
	p, ok := progressObject(env)
	require.True(t, ok)
	assert.EqualValues(t, 2, p["level"])

	restored := NewStore(WithClock(clk.now), WithCategories(testSeeds))
	require.NoError(t, restored.FromSerialized(blob))
	assert.Equal(t, s.Progress(), restored.Progress())
}

func TestFromSerializedBadDataKeepsState(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddXP(40))

	assert.Error(t, s.FromSerialized([]byte("not json")))
	assert.ErrorIs(t, s.FromSerialized([]byte(`{"version":3,"state":{}}`)), ErrNoProgress)
	assert.Equal(t, 40, s.Progress().TotalXP)
}

func TestMigrateV1ResetsHeartsAndBackfills(t *testing.T) {
	legacy := `{
		"version": 1,
		"state": {"progress": {
			"dayStreak": 3, "totalXP": 60, "level": 1,
			"hearts": 2, "maxHearts": 3,
			"questionsAnswered": 12, "correctAnswers": 6,
			"categoryProgress": {"road-signs": {"completed": 6, "total": 100, "bestScore": 0}},
			"lastPracticeDate": "Sun Mar 09 2025"
		}}
	}`
	s, _ := newTestStore(t)
	require.NoError(t, s.FromSerialized([]byte(legacy)))

	p := s.Progress()
	assert.Equal(t, 5, p.Hearts)
	assert.Equal(t, 5, p.MaxHearts)
	assert.Equal(t, 60, p.TotalXP)
	require.NotNil(t, p.LastPracticeDate)
	assert.Equal(t, "2025-03-09", *p.LastPracticeDate)

	require.Len(t, p.History, 7)
	assert.Equal(t, "2025-03-04", p.History[0].DateKey)
	assert.Equal(t, HistoryPoint{DateKey: "2025-03-10", TotalXP: 60, QuestionsAnswered: 12, CorrectAnswers: 6, DayStreak: 3}, p.History[6])
	// seeded category added on load
	assert.Equal(t, CategoryProgress{Total: 150}, p.CategoryProgress["highway-code"])
}

func TestMigrateStepsIdempotent(t *testing.T) {
	build := func() map[string]any {
		return map[string]any{
			"version": float64(1),
			"state": map[string]any{"progress": map[string]any{
				"totalXP": float64(30), "hearts": float64(1), "maxHearts": float64(2),
				"unrelated": "keep me",
			}},
		}
	}
	for _, m := range Migrations {
		once := m.Apply(build(), "2025-03-10")
		twice := m.Apply(m.Apply(build(), "2025-03-10"), "2025-03-10")
		assert.Equal(t, once, twice, m.Name)

		p, _ := progressObject(once)
		assert.Equal(t, "keep me", p["unrelated"], m.Name)
	}
}

func TestMigrateKeepsExistingHistory(t *testing.T) {
	env := map[string]any{"state": map[string]any{"progress": map[string]any{
		"history": []any{map[string]any{"dateKey": "2025-01-01", "totalXP": float64(5)}},
	}}}
	out := migrateHistory(env, "2025-03-10")
	p, _ := progressObject(out)
	assert.Len(t, p["history"], 1)
}

func TestMigratePassesThroughUnexpectedShape(t *testing.T) {
	env := map[string]any{"something": "else"}
	out := Migrate(env, 0, "2025-03-10")
	assert.Equal(t, map[string]any{"something": "else"}, out)
}

func TestNormalizeClampsInvariants(t *testing.T) {
	blob := `{"version":3,"state":{"progress":{
		"totalXP": -5, "hearts": 9, "maxHearts": 0,
		"questionsAnswered": 4, "correctAnswers": 7,
		"lastPracticeDate": "",
		"history": [
			{"dateKey":"2025-03-02","totalXP":3},
			{"dateKey":"2025-03-01","totalXP":1}
		]
	}}}`
	s, _ := newTestStore(t)
	require.NoError(t, s.FromSerialized([]byte(blob)))

	p := s.Progress()
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 5, p.MaxHearts)
	assert.Equal(t, 5, p.Hearts)
	assert.Equal(t, 4, p.CorrectAnswers)
	assert.Nil(t, p.LastPracticeDate)
	require.Len(t, p.History, 2)
	assert.Equal(t, "2025-03-01", p.History[0].DateKey)
}

func TestValidate(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordAnswer(true, "road-signs")
	blob, err := s.Serialize()
	require.NoError(t, err)
	assert.NoError(t, Validate(blob))

	assert.Error(t, Validate([]byte(`{"state":{"progress":{"totalXP":-1}}}`)))
	assert.Error(t, Validate([]byte(`{"version":3}`)))
	assert.Error(t, Validate([]byte(`{"state":{"progress":{"history":[{"dateKey":"yesterday"}]}}}`)))
	assert.Error(t, Validate([]byte(`[`)))
}
