package progress

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNegativeXP is returned by AddXP for amounts below zero.
var ErrNegativeXP = errors.New("xp amount must not be negative")

// Store is the single mutator of a Record. Each method runs to completion
// under the lock, including the history refresh, so readers never observe a
// half-applied change.
type Store struct {
	mu     sync.Mutex
	rec    Record
	seeds  []CategorySeed
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

// WithClock sets the time source used for calendar-day keys.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCategories sets the categories seeded on creation and reset.
func WithCategories(seeds []CategorySeed) Option {
	return func(s *Store) { s.seeds = append([]CategorySeed(nil), seeds...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore returns a store holding seeded defaults.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.rec = Defaults(s.seeds)
	return s
}

// Progress returns a copy of the current record.
func (s *Store) Progress() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// Today is the store's current calendar-day key.
func (s *Store) Today() string {
	return DateKey(s.now())
}

func (s *Store) AddXP(amount int) error {
	if amount < 0 {
		s.logger.Warn("rejected negative xp", "amount", amount)
		return ErrNegativeXP
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.TotalXP += amount
	s.touchHistory()
	return nil
}

func (s *Store) LoseHeart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec.Hearts > 0 {
		s.rec.Hearts--
	}
}

func (s *Store) RefillHearts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Hearts = s.rec.MaxHearts
}

// UpdateStreak counts today as a practice day. A second call on the same
// day leaves the streak alone; a call the day after the last practice
// extends it; anything later restarts it at 1.
func (s *Store) UpdateStreak() {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := DateKey(s.now())
	last := s.rec.LastPracticeDate
	if last == nil || *last != today {
		if last != nil && *last == AddDays(today, -1) {
			s.rec.DayStreak++
		} else {
			s.rec.DayStreak = 1
		}
		s.rec.LastPracticeDate = &today
	}
	s.touchHistory()
}

// RecordAnswer counts one answered question. Unknown categories get a
// zeroed entry instead of an error.
func (s *Store) RecordAnswer(correct bool, categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.QuestionsAnswered++
	cp := s.rec.CategoryProgress[categoryID]
	if correct {
		s.rec.CorrectAnswers++
		cp.Completed++
	}
	if s.rec.CategoryProgress == nil {
		s.rec.CategoryProgress = make(map[string]CategoryProgress)
	}
	s.rec.CategoryProgress[categoryID] = cp
	s.touchHistory()
}

// RecordScore keeps the best session percentage seen for a category.
func (s *Store) RecordScore(categoryID string, percent int) {
	percent = max(0, min(100, percent))
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.rec.CategoryProgress[categoryID]
	if percent > cp.BestScore {
		cp.BestScore = percent
	}
	if s.rec.CategoryProgress == nil {
		s.rec.CategoryProgress = make(map[string]CategoryProgress)
	}
	s.rec.CategoryProgress[categoryID] = cp
}

// ResetProgress restores the seeded defaults and clears history.
func (s *Store) ResetProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = Defaults(s.seeds)
	s.logger.Info("progress reset")
}

// touchHistory must be called with mu held.
func (s *Store) touchHistory() {
	today := DateKey(s.now())
	s.rec.History = UpsertToday(s.rec.History, s.rec.Snapshot(today))
}
