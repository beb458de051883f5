package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) StartSession(id, categoryID string) (*PracticeSession, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO practice_sessions (id, category_id, status, started_at) VALUES (?, ?, ?, ?)`,
		id, categoryID, SessionActive, now,
	)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s.GetSession(id)
}

// FinishSession closes a session with its final tallies.
func (s *Store) FinishSession(id, status string, answered, correct, xp int) (*PracticeSession, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE practice_sessions SET status = ?, answered = ?, correct = ?, xp_earned = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		status, answered, correct, xp, now, id, SessionActive,
	)
	if err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("finish session %s: not active", id)
	}
	return s.GetSession(id)
}

func (s *Store) GetSession(id string) (*PracticeSession, error) {
	row := s.db.QueryRow(
		`SELECT id, category_id, status, answered, correct, xp_earned, started_at, completed_at
		 FROM practice_sessions WHERE id = ?`, id,
	)
	p, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return p, nil
}

// AbandonStaleSessions marks sessions left active by a previous run.
func (s *Store) AbandonStaleSessions() (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE practice_sessions SET status = ?, completed_at = ? WHERE status = ?`,
		SessionAbandoned, now, SessionActive,
	)
	if err != nil {
		return 0, fmt.Errorf("abandon sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) ListSessions(f SessionFilter) ([]PracticeSession, error) {
	query := `SELECT id, category_id, status, answered, correct, xp_earned, started_at, completed_at FROM practice_sessions WHERE 1=1`
	var args []any

	if f.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []PracticeSession
	for rows.Next() {
		p, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *p)
	}
	return sessions, rows.Err()
}

// GetDailySessionSummary groups finished sessions by UTC day and category.
func (s *Store) GetDailySessionSummary(from, to time.Time) ([]DailySessionSummary, error) {
	rows, err := s.db.Query(`
		SELECT date(started_at) AS day, category_id,
		       COUNT(*), COALESCE(SUM(answered), 0), COALESCE(SUM(correct), 0), COALESCE(SUM(xp_earned), 0)
		FROM practice_sessions
		WHERE status IN (?, ?)
		  AND started_at >= ? AND started_at < ?
		GROUP BY day, category_id
		ORDER BY day, category_id`,
		SessionCompleted, SessionOutOfHearts,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily session summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySessionSummary
	for rows.Next() {
		var ds DailySessionSummary
		if err := rows.Scan(&ds.Date, &ds.CategoryID, &ds.SessionCount, &ds.Answered, &ds.Correct, &ds.XPEarned); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*PracticeSession, error) {
	p := &PracticeSession{}
	var startedAt string
	var completedAt sql.NullString
	if err := r.Scan(&p.ID, &p.CategoryID, &p.Status, &p.Answered, &p.Correct, &p.XPEarned, &startedAt, &completedAt); err != nil {
		return nil, err
	}
	p.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		t, _ := time.Parse(time.RFC3339, completedAt.String)
		p.CompletedAt = &t
	}
	return p, nil
}
