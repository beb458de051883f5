package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// StorageKey names the blob the record is persisted under.
const StorageKey = "user-storage"

// ErrNoProgress is returned when a blob has no state.progress object.
var ErrNoProgress = errors.New("serialized state has no progress object")

type envelope struct {
	State   envelopeState `json:"state"`
	Version int           `json:"version"`
}

type envelopeState struct {
	Progress serializedRecord `json:"progress"`
}

// serializedRecord adds the derived level for readers of the blob. It is
// ignored on load.
type serializedRecord struct {
	Record
	Level int `json:"level"`
}

// Serialize encodes the current record in the versioned envelope.
func (s *Store) Serialize() ([]byte, error) {
	rec := s.Progress()
	b, err := json.Marshal(envelope{
		State:   envelopeState{Progress: serializedRecord{Record: rec, Level: rec.Level()}},
		Version: CurrentVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal progress: %w", err)
	}
	return b, nil
}

// FromSerialized replaces the in-memory record with a decoded, migrated and
// normalized copy of data. On error the current record is left unchanged.
func (s *Store) FromSerialized(data []byte) error {
	rec, err := Decode(data, s.Today(), s.seeds, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
	return nil
}

// Decode turns a persisted blob of any known version into a current Record.
func Decode(data []byte, todayKey string, seeds []CategorySeed, logger *slog.Logger) (Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var env map[string]any
	if err := json.Unmarshal(data, &env); err != nil {
		return Record{}, fmt.Errorf("decode envelope: %w", err)
	}

	version := intField(env, "version")
	if version < CurrentVersion {
		logger.Info("migrating stored progress", "from", version, "to", CurrentVersion)
		env = Migrate(env, version, todayKey)
	}

	p, ok := progressObject(env)
	if !ok {
		return Record{}, ErrNoProgress
	}
	b, err := json.Marshal(p)
	if err != nil {
		return Record{}, fmt.Errorf("re-encode progress: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("decode progress: %w", err)
	}
	return normalize(rec, seeds, logger), nil
}

// normalize enforces the record invariants on data read from storage.
func normalize(r Record, seeds []CategorySeed, logger *slog.Logger) Record {
	r.TotalXP = max(0, r.TotalXP)
	r.DayStreak = max(0, r.DayStreak)
	r.QuestionsAnswered = max(0, r.QuestionsAnswered)
	r.CorrectAnswers = max(0, r.CorrectAnswers)
	if r.CorrectAnswers > r.QuestionsAnswered {
		logger.Warn("correct answers exceed answered questions, clamping",
			"correct", r.CorrectAnswers, "answered", r.QuestionsAnswered)
		r.CorrectAnswers = r.QuestionsAnswered
	}
	if r.MaxHearts < 1 {
		r.MaxHearts = DefaultMaxHearts
	}
	r.Hearts = max(0, min(r.MaxHearts, r.Hearts))

	if r.CategoryProgress == nil {
		r.CategoryProgress = make(map[string]CategoryProgress, len(seeds))
	}
	for _, seed := range seeds {
		if _, ok := r.CategoryProgress[seed.ID]; !ok {
			r.CategoryProgress[seed.ID] = CategoryProgress{Total: seed.TotalQuestions}
		}
	}
	if r.LastPracticeDate != nil && *r.LastPracticeDate == "" {
		r.LastPracticeDate = nil
	}
	if r.History == nil {
		r.History = []HistoryPoint{}
	}
	r.History = normalizeHistory(r.History)
	return r
}
