package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/campaignwatch/internal/api"
)

// Analysis is a stored contextual sentiment result.
type Analysis struct {
	api.ContextualSentiment
	AnalyzedAt time.Time
}

// SaveAnalysis stores the latest contextual analysis for a post, replacing
// any previous one.
// Thread-safe: acquires write lock.
func (s *Store) SaveAnalysis(cs api.ContextualSentiment, at time.Time) error {
	if cs.PostID == "" {
		return errors.New("save analysis: empty post id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO contextual_analyses (
			post_id, candidate_name, caption_preview, apoio, contra, neutro,
			apoio_percent, contra_percent, neutro_percent, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cs.PostID, cs.CandidateName, cs.CaptionPreview, cs.Apoio, cs.Contra, cs.Neutro,
		cs.ApoioPercent, cs.ContraPercent, cs.NeutroPercent, at.UTC())
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", cs.PostID, err)
	}
	return nil
}

// Analysis returns the stored analysis for postID, or nil.
// Thread-safe: acquires read lock.
func (s *Store) Analysis(postID string) (*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a Analysis
	err := s.db.QueryRow(`
		SELECT post_id, candidate_name, caption_preview, apoio, contra, neutro,
			apoio_percent, contra_percent, neutro_percent, analyzed_at
		FROM contextual_analyses
		WHERE post_id = ?
	`, postID).Scan(scanTargets(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Analyses returns the stored analyses for the given posts keyed by post id.
// Posts without an analysis are absent from the map.
func (s *Store) Analyses(postIDs []string) (map[string]Analysis, error) {
	out := make(map[string]Analysis, len(postIDs))
	for _, id := range postIDs {
		a, err := s.Analysis(id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out[id] = *a
		}
	}
	return out, nil
}

// AnalysisCount returns the number of stored analyses.
func (s *Store) AnalysisCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM contextual_analyses").Scan(&n)
	return n, err
}

func scanTargets(a *Analysis) []any {
	return []any{
		&a.PostID, &a.CandidateName, &a.CaptionPreview,
		&a.Apoio, &a.Contra, &a.Neutro,
		&a.ApoioPercent, &a.ContraPercent, &a.NeutroPercent,
		&a.AnalyzedAt,
	}
}
