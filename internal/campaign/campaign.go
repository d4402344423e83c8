// Package campaign holds the monitored candidates and the small rules the
// dashboard applies on top of backend analytics: candidate filter
// resolution, sentiment classification and suggestion ordering.
package campaign

import (
	"github.com/abelbrown/campaignwatch/internal/api"
)

// Filter selects which candidate a view shows. FilterAll means no filter.
type Filter string

// FilterAll disables candidate filtering.
const FilterAll Filter = "all"

// Candidate is a monitored campaign profile.
type Candidate struct {
	Key      string `json:"key"`      // filter value, e.g. "charlles"
	Username string `json:"username"` // Instagram handle
	Display  string `json:"display"`
	Cargo    string `json:"cargo"` // office the candidate runs for
}

// DefaultCandidates returns the two monitored profiles.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Key: "charlles", Username: "charlles.evangelista", Display: "Charlles Evangelista", Cargo: "Deputado Federal"},
		{Key: "sheila", Username: "delegadasheila", Display: "Delegada Sheila", Cargo: "Deputada Estadual"},
	}
}

// Roster is the ordered candidate list a filter cycles through.
type Roster []Candidate

// Lookup returns the candidate for a filter key.
func (r Roster) Lookup(f Filter) (Candidate, bool) {
	for _, c := range r {
		if Filter(c.Key) == f {
			return c, true
		}
	}
	return Candidate{}, false
}

// ByUsername returns the candidate with the given handle.
func (r Roster) ByUsername(username string) (Candidate, bool) {
	for _, c := range r {
		if c.Username == username {
			return c, true
		}
	}
	return Candidate{}, false
}

// Next cycles all -> first -> second -> ... -> all.
func (r Roster) Next(f Filter) Filter {
	if len(r) == 0 {
		return FilterAll
	}
	if f == FilterAll {
		return Filter(r[0].Key)
	}
	for i, c := range r {
		if Filter(c.Key) == f {
			if i+1 < len(r) {
				return Filter(r[i+1].Key)
			}
			return FilterAll
		}
	}
	return FilterAll
}

// Label is the human-readable filter name ("Ambos" for all).
func (r Roster) Label(f Filter) string {
	if f == FilterAll {
		return "Ambos"
	}
	if c, ok := r.Lookup(f); ok {
		return c.Display
	}
	return string(f)
}

// Valid reports whether f is FilterAll or a known candidate key.
func (r Roster) Valid(f Filter) bool {
	if f == FilterAll {
		return true
	}
	_, ok := r.Lookup(f)
	return ok
}

// ResolveID maps a filter onto the backend candidate id using overview
// metrics. FilterAll, an unknown key, or a candidate missing from metrics
// all yield ok=false, meaning "send no candidate_id".
func (r Roster) ResolveID(f Filter, metrics []api.CandidateMetrics) (string, bool) {
	if f == FilterAll {
		return "", false
	}
	c, ok := r.Lookup(f)
	if !ok {
		return "", false
	}
	for _, m := range metrics {
		if m.Username == c.Username {
			return m.CandidateID, true
		}
	}
	return "", false
}
