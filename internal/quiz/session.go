package quiz

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/sadopc/drivetheory/internal/catalog"
	"github.com/sadopc/drivetheory/internal/progress"
	"github.com/sadopc/drivetheory/internal/store"
)

const (
	XPPerCorrect  = 10
	PassThreshold = 70
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrOutOfHearts     = errors.New("no hearts left")
	ErrAlreadyChecked  = errors.New("answer already checked")
	ErrNotAnswering    = errors.New("session is not accepting answers")
	ErrInvalidChoice   = errors.New("choice out of range")
)

type Phase int

const (
	PhaseReady Phase = iota
	PhaseAnswering
	PhaseReviewing
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseAnswering:
		return "answering"
	case PhaseReviewing:
		return "reviewing"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Tracker is the part of progress.Store a quiz drives.
type Tracker interface {
	Progress() progress.Record
	UpdateStreak()
	AddXP(amount int) error
	LoseHeart()
	RecordAnswer(correct bool, categoryID string)
	RecordScore(categoryID string, percent int)
}

// Recorder logs practice sessions. *store.Store satisfies it.
type Recorder interface {
	StartSession(id, categoryID string) (*store.PracticeSession, error)
	FinishSession(id, status string, answered, correct, xp int) (*store.PracticeSession, error)
}

type Option func(*Session)

func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Result summarizes a finished (or in-flight) run.
type Result struct {
	Correct     int
	Answered    int
	Total       int
	XPEarned    int
	Percent     int
	Passed      bool
	OutOfHearts bool
}

// Session walks one category's questions in order.
type Session struct {
	id         string
	categoryID string
	questions  []catalog.Question
	tracker    Tracker
	recorder   Recorder
	logger     *slog.Logger

	phase       Phase
	index       int
	selected    int
	lastCorrect bool
	correct     int
	answered    int
	xp          int
	outOfHearts bool
}

// New builds a session over the given questions.
func New(categoryID string, questions []catalog.Question, tracker Tracker, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %s has no questions", ErrUnknownCategory, categoryID)
	}
	s := &Session{
		categoryID: categoryID,
		questions:  questions,
		tracker:    tracker,
		logger:     slog.Default(),
		selected:   -1,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// ForCategory builds a session from the built-in question bank.
func ForCategory(categoryID string, tracker Tracker, opts ...Option) (*Session, error) {
	if _, ok := catalog.Find(categoryID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	return New(categoryID, catalog.Questions(categoryID), tracker, opts...)
}

func (s *Session) ID() string         { return s.id }
func (s *Session) CategoryID() string { return s.categoryID }
func (s *Session) Phase() Phase       { return s.phase }
func (s *Session) Index() int         { return s.index }
func (s *Session) Total() int         { return len(s.questions) }
func (s *Session) Selected() int      { return s.selected }

// LastCorrect reports whether the most recently checked answer was right.
func (s *Session) LastCorrect() bool { return s.lastCorrect }

func (s *Session) Current() catalog.Question {
	return s.questions[min(s.index, len(s.questions)-1)]
}

// Start counts today toward the streak and opens the session log row.
func (s *Session) Start() error {
	if s.phase != PhaseReady {
		return fmt.Errorf("start session: already %s", s.phase)
	}
	if s.tracker.Progress().Hearts == 0 {
		return ErrOutOfHearts
	}
	s.tracker.UpdateStreak()
	s.id = uuid.NewString()
	if s.recorder != nil {
		if _, err := s.recorder.StartSession(s.id, s.categoryID); err != nil {
			s.logger.Warn("session log start failed", "session", s.id, "error", err)
		}
	}
	s.phase = PhaseAnswering
	s.logger.Debug("quiz started", "session", s.id, "category", s.categoryID, "questions", len(s.questions))
	return nil
}

// Check grades choice against the current question.
func (s *Session) Check(choice int) (bool, error) {
	switch s.phase {
	case PhaseReviewing:
		return false, ErrAlreadyChecked
	case PhaseAnswering:
	default:
		return false, ErrNotAnswering
	}
	q := s.Current()
	if choice < 0 || choice >= len(q.Options) {
		return false, fmt.Errorf("%w: %d", ErrInvalidChoice, choice)
	}
	if s.tracker.Progress().Hearts == 0 {
		return false, ErrOutOfHearts
	}

	s.selected = choice
	s.lastCorrect = choice == q.CorrectAnswer
	s.answered++
	if s.lastCorrect {
		s.correct++
		s.tracker.RecordAnswer(true, s.categoryID)
		if err := s.tracker.AddXP(XPPerCorrect); err != nil {
			return true, err
		}
		s.xp += XPPerCorrect
	} else {
		s.tracker.LoseHeart()
		s.tracker.RecordAnswer(false, s.categoryID)
	}
	s.phase = PhaseReviewing
	return s.lastCorrect, nil
}

// Continue moves past the reviewed answer. The run ends after the last
// question or as soon as hearts reach zero.
func (s *Session) Continue() {
	if s.phase != PhaseReviewing {
		return
	}
	s.selected = -1
	if s.tracker.Progress().Hearts == 0 {
		s.outOfHearts = true
		s.finish(store.SessionOutOfHearts)
		return
	}
	if s.index+1 >= len(s.questions) {
		s.finish(store.SessionCompleted)
		return
	}
	s.index++
	s.phase = PhaseAnswering
}

// Abandon closes an unfinished run in the session log.
func (s *Session) Abandon() {
	if s.phase != PhaseAnswering && s.phase != PhaseReviewing {
		return
	}
	s.phase = PhaseFinished
	s.closeLog(store.SessionAbandoned)
}

func (s *Session) Result() Result {
	percent := 0
	if len(s.questions) > 0 {
		percent = int(math.Round(float64(s.correct) * 100 / float64(len(s.questions))))
	}
	return Result{
		Correct:     s.correct,
		Answered:    s.answered,
		Total:       len(s.questions),
		XPEarned:    s.xp,
		Percent:     percent,
		Passed:      percent >= PassThreshold,
		OutOfHearts: s.outOfHearts,
	}
}

func (s *Session) finish(status string) {
	s.phase = PhaseFinished
	res := s.Result()
	s.tracker.RecordScore(s.categoryID, res.Percent)
	s.closeLog(status)
	s.logger.Info("quiz finished",
		"session", s.id,
		"category", s.categoryID,
		"status", status,
		"score", fmt.Sprintf("%d/%d", res.Correct, res.Total),
		"xp", res.XPEarned,
	)
}

func (s *Session) closeLog(status string) {
	if s.recorder == nil || s.id == "" {
		return
	}
	if _, err := s.recorder.FinishSession(s.id, status, s.answered, s.correct, s.xp); err != nil {
		s.logger.Warn("session log finish failed", "session", s.id, "error", err)
	}
}
