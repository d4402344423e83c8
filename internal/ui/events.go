package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/format"
)

// eventsPanelChrome is the border plus vertical padding of EventsPanel.
const eventsPanelChrome = 4

// eventsOverlay renders request and fetch counters plus the latest events.
// Returns empty string if ring is nil.
func eventsOverlay(ring *eventlog.RingBuffer, now time.Time, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Count()
	var lines []string
	lines = append(lines, EventsHeaderStyle.Render("Atividade"))
	lines = append(lines, fmt.Sprintf("  Requisições: %d ok, %d erros",
		stats[eventlog.KindRequest], stats[eventlog.KindRequestError]))
	lines = append(lines, fmt.Sprintf("  Buscas:      %d iniciadas, %d concluídas, %d descartadas",
		stats[eventlog.KindFetchStart], stats[eventlog.KindFetchSettle], stats[eventlog.KindFetchStale]))
	lines = append(lines, fmt.Sprintf("  Tabela:      %d ordenações, %d páginas extras",
		stats[eventlog.KindSort], stats[eventlog.KindPageMore]))
	lines = append(lines, fmt.Sprintf("  Buffer:      %d / %d eventos", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, EventsHeaderStyle.Render("Eventos recentes"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-20s", formatAge(now.Sub(e.Time)), string(e.Kind))
		switch {
		case e.Path != "":
			line += "  " + format.Truncate(e.Method+" "+e.Path, 40)
		case e.Key != "":
			line += "  " + format.Truncate(e.Key, 40)
		case e.Msg != "":
			line += "  " + format.Truncate(e.Msg, 40)
		}
		if e.Status != 0 {
			line += fmt.Sprintf("  %d", e.Status)
		}
		if e.Err != "" {
			line += "  ERR:" + format.Truncate(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := max(height-eventsPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}
	panelWidth := max(min(96, width-4), 20)
	return EventsPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration compactly. Negative durations clamp to 0ms.
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
