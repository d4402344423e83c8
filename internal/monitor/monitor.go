// Package monitor polls backend health in the background.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/logging"
)

// checkTimeout bounds a single health request.
const checkTimeout = 10 * time.Second

// checker is the slice of api.Client the monitor needs.
type checker interface {
	Health(ctx context.Context) (*api.Health, error)
}

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// HealthUpdated reports one health check.
type HealthUpdated struct {
	Health *api.Health
	Err    error
	At     time.Time
}

// OK reports whether the backend answered with status "ok".
func (h HealthUpdated) OK() bool {
	return h.Err == nil && h.Health != nil && h.Health.Status == "ok"
}

// Monitor runs the health poll loop.
// Uses context cancellation as the ONLY stop mechanism.
type Monitor struct {
	client   checker
	interval time.Duration
	events   *eventlog.Logger
	wg       sync.WaitGroup
}

// New creates a Monitor polling every interval.
func New(c checker, interval time.Duration, events *eventlog.Logger) *Monitor {
	return &Monitor{client: c, interval: interval, events: events}
}

// Start checks immediately, then every interval, sending HealthUpdated to
// program. A non-positive interval performs only the initial check.
func (m *Monitor) Start(ctx context.Context, program Sender) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.send(program, m.Check(ctx))
		if m.interval <= 0 {
			return
		}

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.send(program, m.Check(ctx))
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// Check performs one health request.
func (m *Monitor) Check(ctx context.Context) HealthUpdated {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	h, err := m.client.Health(ctx)
	msg := HealthUpdated{Health: h, Err: err, At: time.Now()}

	ev := eventlog.Event{Level: eventlog.LevelDebug, Kind: eventlog.KindHealth, Comp: "monitor"}
	switch {
	case err != nil:
		ev.Level = eventlog.LevelWarn
		ev.Err = err.Error()
		logging.Warn("health check failed", "error", err)
	case h.Status != "ok":
		ev.Level = eventlog.LevelWarn
		ev.Msg = h.Status
		logging.Warn("backend degraded", "database", h.Database, "scheduler", h.Scheduler)
	default:
		ev.Msg = h.Status
	}
	m.events.Emit(ev)
	return msg
}

func (m *Monitor) send(program Sender, msg HealthUpdated) {
	if program == nil {
		return
	}
	if errors.Is(msg.Err, context.Canceled) {
		return
	}
	program.Send(msg)
}
