package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Filter selects events when reading a log back.
type Filter struct {
	KindPrefix string // e.g. "api" matches api.request and api.error
	MinLevel   Level
	Comp       string
	RequestID  string
}

func levelRank(l Level) int {
	switch l {
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 0
	}
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Event) bool {
	if f.KindPrefix != "" && !strings.HasPrefix(string(e.Kind), f.KindPrefix) {
		return false
	}
	if f.MinLevel != "" && levelRank(e.Level) < levelRank(f.MinLevel) {
		return false
	}
	if f.Comp != "" && e.Comp != f.Comp {
		return false
	}
	if f.RequestID != "" && e.RequestID != f.RequestID {
		return false
	}
	return true
}

// Tail returns the last n matching events from a JSONL stream. Lines that
// do not decode are skipped.
func Tail(r io.Reader, n int, f Filter) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]Event, 0, n)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if json.Unmarshal(line, &e) != nil {
			continue
		}
		if !f.Match(e) {
			continue
		}
		if len(ring) < n {
			ring = append(ring, e)
			continue
		}
		copy(ring, ring[1:])
		ring[n-1] = e
	}
	if err := scanner.Err(); err != nil {
		return ring, fmt.Errorf("scan event log: %w", err)
	}
	return ring, nil
}

// Format renders e as one human-readable line.
func Format(e Event) string {
	lvl := strings.ToUpper(string(e.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-20s", e.Time.Format("15:04:05.000"), lvl, e.Comp, e.Kind)}

	if e.Method != "" || e.Path != "" {
		parts = append(parts, strings.TrimSpace(e.Method+" "+e.Path))
	}
	if e.Status > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}
	if e.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(e.DurMs), e.DurMs))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s#%d", e.Key, e.Gen))
	}
	if e.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", e.Count))
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != "" {
		parts = append(parts, "err="+e.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	default:
		return 2
	}
}
