// Package eventlog records structured dashboard activity as JSONL.
//
// Every API request, fetch-state transition and user-triggered action is an
// Event. A Logger writes events asynchronously to a file; an optional
// RingBuffer keeps the most recent ones in memory for the status overlay.
package eventlog

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind names an event as "<subsystem>.<action>".
type Kind string

const (
	KindRequest      Kind = "api.request"
	KindRequestError Kind = "api.error"

	KindFetchStart  Kind = "fetch.start"
	KindFetchSettle Kind = "fetch.settle"
	KindFetchStale  Kind = "fetch.stale"

	KindPageMore Kind = "pager.more"
	KindSort     Kind = "pager.sort"

	KindScrape   Kind = "scrape.trigger"
	KindAnalysis Kind = "analysis.contextual"
	KindHealth   Kind = "health.poll"

	KindTab       Kind = "ui.tab"
	KindCandidate Kind = "ui.candidate"

	KindStartup  Kind = "sys.startup"
	KindShutdown Kind = "sys.shutdown"
)

// Event is one JSONL record. Only Kind and Time are always set.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      Kind           `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "api", "ui", "monitor", "main"
	SessionID string         `json:"session_id,omitempty"`
	RequestID string         `json:"rid,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	Status    int            `json:"status,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Key       string         `json:"key,omitempty"` // fetch-state key
	Gen       uint64         `json:"gen,omitempty"` // fetch generation
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON derives DurMs from Dur.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
