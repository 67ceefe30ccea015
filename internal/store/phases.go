package store

import (
	"fmt"
	"time"
)

// RecordPhase appends a completed phase to the history.
func (s *Store) RecordPhase(phase string, seconds int, label string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO phase_log (phase, seconds, label, completed_at) VALUES (?, ?, ?, ?)`,
		phase, seconds, label, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record phase: %w", err)
	}
	return nil
}

func (s *Store) ListPhases(from, to time.Time) ([]PhaseEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, phase, seconds, label, completed_at
		FROM phase_log
		WHERE completed_at >= ? AND completed_at < ?
		ORDER BY completed_at DESC`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var entries []PhaseEntry
	for rows.Next() {
		var e PhaseEntry
		var completedAt string
		if err := rows.Scan(&e.ID, &e.Phase, &e.Seconds, &e.Label, &completedAt); err != nil {
			return nil, err
		}
		e.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetFocusSummary aggregates completed focus phases per day in [from, to).
func (s *Store) GetFocusSummary(from, to time.Time) ([]DailyFocus, error) {
	rows, err := s.db.Query(`
		SELECT date(completed_at) AS day, COALESCE(SUM(seconds), 0), COUNT(*)
		FROM phase_log
		WHERE phase = 'focus'
		  AND completed_at >= ? AND completed_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("focus summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailyFocus
	for rows.Next() {
		var d DailyFocus
		if err := rows.Scan(&d.Date, &d.TotalSeconds, &d.Count); err != nil {
			return nil, err
		}
		summaries = append(summaries, d)
	}
	return summaries, rows.Err()
}

func (s *Store) GetTodayFocus() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total int64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(seconds), 0)
		FROM phase_log
		WHERE phase = 'focus' AND date(completed_at) = ?`, today,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
