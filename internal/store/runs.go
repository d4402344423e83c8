package store

import (
	"fmt"
	"time"
)

// Run statuses recorded locally.
const (
	RunStarted        = "started"
	RunAlreadyRunning = "already_running"
	RunFailed         = "failed"
)

// Run is one collection request and its outcome.
type Run struct {
	ID             int64
	RunID          string // backend run id, empty on failure
	Status         string
	Message        string
	AlreadyRunning bool
	Error          string
	RequestedAt    time.Time
}

// RecordRun appends r to the run log and returns its row id.
// Thread-safe: acquires write lock.
func (s *Store) RecordRun(r Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO scrape_runs (run_id, status, message, already_running, error, requested_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Status, r.Message, boolToInt(r.AlreadyRunning), r.Error, r.RequestedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Runs returns up to limit runs, newest first.
// Thread-safe: acquires read lock.
func (s *Store) Runs(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, run_id, status, message, already_running, error, requested_at
		FROM scrape_runs
		ORDER BY requested_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var already int
		if err := rows.Scan(&r.ID, &r.RunID, &r.Status, &r.Message, &already, &r.Error, &r.RequestedAt); err != nil {
			return nil, err
		}
		r.AlreadyRunning = already != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastRun returns the newest run, or nil when none is recorded.
func (s *Store) LastRun() (*Run, error) {
	runs, err := s.Runs(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}
