package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeeds = []CategorySeed{
	{ID: "road-signs", TotalQuestions: 100},
	{ID: "highway-code", TotalQuestions: 150},
}

// fakeClock is a movable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time   { return c.t }
func (c *fakeClock) advance(days int) { c.t = c.t.AddDate(0, 0, days) }

func newClock(y int, m time.Month, d int) *fakeClock {
	return &fakeClock{t: time.Date(y, m, d, 9, 30, 0, 0, time.Local)}
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clk := newClock(2025, time.March, 10)
	return NewStore(WithClock(clk.now), WithCategories(testSeeds)), clk
}

func TestDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	p := s.Progress()

	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 1, p.Level())
	assert.Equal(t, 5, p.Hearts)
	assert.Equal(t, 5, p.MaxHearts)
	assert.Nil(t, p.LastPracticeDate)
	assert.Empty(t, p.History)
	require.Len(t, p.CategoryProgress, 2)
	assert.Equal(t, CategoryProgress{Total: 150}, p.CategoryProgress["highway-code"])
}

func TestAddXPUpdatesLevel(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddXP(120))

	p := s.Progress()
	assert.Equal(t, 120, p.TotalXP)
	assert.Equal(t, 2, p.Level())
	assert.Equal(t, 80, p.XPToNextLevel())
	assert.InDelta(t, 0.2, p.LevelProgress(), 1e-9)
}

func TestAddXPSumsAndLevelTracks(t *testing.T) {
	s, _ := newTestStore(t)
	amounts := []int{10, 0, 95, 10, 300, 1}
	sum := 0
	for _, a := range amounts {
		require.NoError(t, s.AddXP(a))
		sum += a
		p := s.Progress()
		assert.Equal(t, sum, p.TotalXP)
		assert.Equal(t, sum/100+1, p.Level())
	}
}

func TestAddXPRejectsNegative(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddXP(50))

	err := s.AddXP(-20)
	assert.ErrorIs(t, err, ErrNegativeXP)
	assert.Equal(t, 50, s.Progress().TotalXP)
}

func TestLoseHeartFloorsAtZero(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 10; i++ {
		s.LoseHeart()
		h := s.Progress().Hearts
		assert.GreaterOrEqual(t, h, 0)
	}
	p := s.Progress()
	assert.Equal(t, 0, p.Hearts)
	assert.Equal(t, HeartsDepleted, p.HeartState())
}

func TestHeartsStayInBounds(t *testing.T) {
	s, _ := newTestStore(t)
	ops := "LLRLLLLLLRLLR"
	for _, op := range ops {
		if op == 'L' {
			s.LoseHeart()
		} else {
			s.RefillHearts()
		}
		p := s.Progress()
		assert.GreaterOrEqual(t, p.Hearts, 0)
		assert.LessOrEqual(t, p.Hearts, p.MaxHearts)
	}
	assert.Equal(t, HeartsFull, s.Progress().HeartState())
}

func TestHeartStatePartial(t *testing.T) {
	s, _ := newTestStore(t)
	s.LoseHeart()
	assert.Equal(t, HeartsPartial, s.Progress().HeartState())
	assert.Equal(t, "partial", HeartsPartial.String())
}

func TestRecordAnswer(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordAnswer(true, "road-signs")
	s.RecordAnswer(false, "road-signs")

	p := s.Progress()
	assert.Equal(t, 2, p.QuestionsAnswered)
	assert.Equal(t, 1, p.CorrectAnswers)
	assert.Equal(t, 1, p.CategoryProgress["road-signs"].Completed)
	assert.Equal(t, 100, p.CategoryProgress["road-signs"].Total)
	assert.Equal(t, 50, p.Accuracy())
}

func TestRecordAnswerAdditive(t *testing.T) {
	s, _ := newTestStore(t)
	pattern := []bool{true, true, false, true, false, false, true}
	k := 0
	for _, c := range pattern {
		s.RecordAnswer(c, "highway-code")
		if c {
			k++
		}
	}
	p := s.Progress()
	assert.Equal(t, len(pattern), p.QuestionsAnswered)
	assert.Equal(t, k, p.CorrectAnswers)
	assert.LessOrEqual(t, p.CorrectAnswers, p.QuestionsAnswered)
}

func TestRecordAnswerUnknownCategory(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordAnswer(true, "motorway-rules")

	p := s.Progress()
	assert.Equal(t, CategoryProgress{Completed: 1}, p.CategoryProgress["motorway-rules"])
}

func TestRecordScoreKeepsBest(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordScore("road-signs", 67)
	s.RecordScore("road-signs", 33)
	s.RecordScore("road-signs", 140)
	assert.Equal(t, 100, s.Progress().CategoryProgress["road-signs"].BestScore)
	assert.Empty(t, s.Progress().History)
}

func TestUpdateStreakTransitions(t *testing.T) {
	s, clk := newTestStore(t)

	s.UpdateStreak()
	assert.Equal(t, 1, s.Progress().DayStreak)

	// same day
	s.UpdateStreak()
	assert.Equal(t, 1, s.Progress().DayStreak)

	// consecutive days
	for want := 2; want <= 4; want++ {
		clk.advance(1)
		s.UpdateStreak()
		assert.Equal(t, want, s.Progress().DayStreak)
	}

	// gap of two days
	clk.advance(2)
	s.UpdateStreak()
	p := s.Progress()
	assert.Equal(t, 1, p.DayStreak)
	require.NotNil(t, p.LastPracticeDate)
	assert.Equal(t, DateKey(clk.t), *p.LastPracticeDate)
}

func TestUpdateStreakSameDayRefreshesHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.UpdateStreak()
	require.NoError(t, s.AddXP(30))
	s.UpdateStreak()

	h := s.Progress().History
	require.Len(t, h, 1)
	assert.Equal(t, 30, h[0].TotalXP)
	assert.Equal(t, 1, h[0].DayStreak)
}

func TestUpdateStreakAcrossMonthBoundary(t *testing.T) {
	clk := newClock(2025, time.February, 28)
	s := NewStore(WithClock(clk.now))
	s.UpdateStreak()
	clk.advance(1)
	s.UpdateStreak()
	assert.Equal(t, 2, s.Progress().DayStreak)
	assert.Equal(t, "2025-03-01", *s.Progress().LastPracticeDate)
}

func TestHistoryOnePointPerDay(t *testing.T) {
	s, clk := newTestStore(t)
	for day := 0; day < 5; day++ {
		for i := 0; i < 3; i++ {
			s.RecordAnswer(i%2 == 0, "road-signs")
			require.NoError(t, s.AddXP(10))
		}
		clk.advance(1)
	}

	h := s.Progress().History
	require.Len(t, h, 5)
	for i := 1; i < len(h); i++ {
		assert.Less(t, h[i-1].DateKey, h[i].DateKey)
	}
	last := h[len(h)-1]
	assert.Equal(t, 150, last.TotalXP)
	assert.Equal(t, 15, last.QuestionsAnswered)
}

func TestHistoryCapped(t *testing.T) {
	s, clk := newTestStore(t)
	for day := 0; day < HistoryCap+25; day++ {
		require.NoError(t, s.AddXP(1))
		clk.advance(1)
	}

	h := s.Progress().History
	assert.Len(t, h, HistoryCap)
	assert.Equal(t, HistoryCap+25, h[len(h)-1].TotalXP)
	assert.Equal(t, 26, h[0].TotalXP)
}

func TestResetProgress(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.AddXP(250))
	s.LoseHeart()
	s.UpdateStreak()
	s.RecordAnswer(true, "road-signs")

	s.ResetProgress()
	assert.Equal(t, Defaults(testSeeds), s.Progress())
}

func TestProgressIsACopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.RecordAnswer(true, "road-signs")

	p := s.Progress()
	p.CategoryProgress["road-signs"] = CategoryProgress{Completed: 99}
	p.History[0].TotalXP = 1000

	q := s.Progress()
	assert.Equal(t, 1, q.CategoryProgress["road-signs"].Completed)
	assert.Equal(t, 0, q.History[0].TotalXP)
}
