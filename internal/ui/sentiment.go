package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
)

const dateParam = "2006-01-02"

var timelineWindows = []int{7, 30, 90}

// sentimentTab is the Termômetro page: average sentiment per post over a
// trailing window of days.
type sentimentTab struct {
	opts Options
	keys struct{ Window key.Binding }

	st     *fetchstate.State[*api.SentimentTimeline]
	sel    Selection
	days   int
	params api.TimelineParams
	width  int
	height int
}

func newSentimentTab(opts Options) *sentimentTab {
	t := &sentimentTab{opts: opts, days: opts.Config.UI.TimelineDays}
	t.keys.Window = newBinding([]string{"w"}, "período", "w")
	return t
}

func (t *sentimentTab) Title() string { return "Termômetro" }

func (t *sentimentTab) Mount(sel Selection) tea.Cmd {
	t.st = fetchstate.New[*api.SentimentTimeline]("sentiment-timeline", t.opts.fetchOpts()...)
	return t.SetSelection(sel)
}

func (t *sentimentTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	return t.load()
}

// load fetches the window ending today; deps are the candidate and dates.
func (t *sentimentTab) load() tea.Cmd {
	end := t.opts.Now()
	start := end.AddDate(0, 0, -t.days)
	p := api.TimelineParams{
		CandidateID: t.sel.CandidateID,
		StartDate:   start.Format(dateParam),
		EndDate:     end.Format(dateParam),
	}
	t.params = p
	backend := t.opts.Backend
	return t.st.Load([]any{p.CandidateID, p.StartDate, p.EndDate}, func(ctx context.Context) (*api.SentimentTimeline, error) {
		return backend.SentimentTimeline(ctx, p)
	})
}

func (t *sentimentTab) Refetch() tea.Cmd { return t.st.Refetch() }

func (t *sentimentTab) SetSize(width, height int) { t.width, t.height = width, height }

func (t *sentimentTab) Keys() []key.Binding { return []key.Binding{t.keys.Window} }

func (t *sentimentTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *sentimentTab) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(k, t.keys.Window) {
			t.days = nextWindow(t.days)
			return t.load()
		}
		return nil
	}
	t.st.Update(msg)
	return nil
}

func nextWindow(days int) int {
	for i, d := range timelineWindows {
		if d == days {
			return timelineWindows[(i+1)%len(timelineWindows)]
		}
	}
	return timelineWindows[1]
}

// Days is the active window length.
func (t *sentimentTab) Days() int { return t.days }

func (t *sentimentTab) View(f frame) string {
	sub := fmt.Sprintf("Últimos %d dias (%s a %s) · %s", t.days,
		isoToBR(t.params.StartDate), isoToBR(t.params.EndDate), t.opts.roster().Label(t.sel.Filter))
	return header("Termômetro de Sentimento", sub) + renderFetch(t.st, f, t.renderTimeline)
}

func (t *sentimentTab) renderTimeline(tl *api.SentimentTimeline) string {
	if len(tl.DataPoints) == 0 {
		return emptyView("Nenhum dado para o período selecionado.")
	}

	points := make([]api.TimelinePoint, len(tl.DataPoints))
	copy(points, tl.DataPoints)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].PostedAt.Before(points[j].PostedAt.Time)
	})

	scores := make([]float64, len(points))
	var sum float64
	for i, p := range points {
		scores[i] = p.AverageSentimentScore
		sum += p.AverageSentimentScore
	}
	avg := sum / float64(len(points))

	var b strings.Builder
	b.WriteString(metricLine("Posts no período", format.Number(len(points))) + "\n")
	b.WriteString(metricLine("Sentimento médio", "") + sentimentText(avg) + "\n")
	b.WriteString(Subtitle.Render(campaign.Interpretation(avg)) + "\n\n")
	b.WriteString(BarStyle.Render(format.Sparkline(scores)) + "\n\n")

	// Newest points first, as many as fit.
	limit := t.height - 12
	if limit < 5 {
		limit = 5
	}
	shown := 0
	for i := len(points) - 1; i >= 0 && shown < limit; i-- {
		p := points[i]
		b.WriteString(fmt.Sprintf("%s  %-22s %s  %s\n",
			format.DateShort(p.PostedAt.Time),
			format.Truncate("@"+p.CandidateUsername, 22),
			padRight(sentimentText(p.AverageSentimentScore), 16),
			Subtitle.Render(format.Truncate(p.PostCaption, 40)),
		))
		shown++
	}
	return b.String()
}

// isoToBR turns "2026-02-21" into "21/02/2026".
func isoToBR(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
