package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
)

// comparisonTab is the Perfil page: each candidate with sentiment trend
// and top themes.
type comparisonTab struct {
	opts  Options
	st    *fetchstate.State[*api.Comparison]
	sel   Selection
	width int
}

func newComparisonTab(opts Options) *comparisonTab { return &comparisonTab{opts: opts} }

func (t *comparisonTab) Title() string { return "Perfil" }

func (t *comparisonTab) Mount(sel Selection) tea.Cmd {
	t.sel = sel
	t.st = fetchstate.New[*api.Comparison]("comparison", t.opts.fetchOpts()...)
	backend := t.opts.Backend
	return t.st.Load(nil, func(ctx context.Context) (*api.Comparison, error) {
		return backend.Comparison(ctx)
	})
}

func (t *comparisonTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	return nil
}

func (t *comparisonTab) Refetch() tea.Cmd     { return t.st.Refetch() }
func (t *comparisonTab) SetSize(width, _ int) { t.width = width }
func (t *comparisonTab) Keys() []key.Binding  { return nil }

func (t *comparisonTab) Update(msg tea.Msg) tea.Cmd {
	t.st.Update(msg)
	return nil
}

func (t *comparisonTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *comparisonTab) View(f frame) string {
	return header("Perfil", "Comparativo entre candidatos") + renderFetch(t.st, f, t.renderComparison)
}

func (t *comparisonTab) renderComparison(c *api.Comparison) string {
	roster := t.opts.roster()
	target, filtered := roster.Lookup(t.sel.Filter)

	var cards []string
	for _, cc := range c.Candidates {
		if filtered && cc.Username != target.Username {
			continue
		}
		cards = append(cards, comparisonCard(roster, cc))
	}
	if len(cards) == 0 {
		return emptyView("Nenhum dado disponível.")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func comparisonCard(roster campaign.Roster, cc api.CandidateComparison) string {
	var b strings.Builder
	b.WriteString(candidateCard(roster, cc.CandidateMetrics) + "\n")

	b.WriteString(CardTitle.Render("Tendência") + "\n")
	b.WriteString(trendText(cc.Trend) + "\n")
	b.WriteString(Label.Render(fmt.Sprintf("recente %s · anterior %s",
		format.Score(cc.Trend.RecentAvg), format.Score(cc.Trend.PreviousAvg))) + "\n\n")

	b.WriteString(CardTitle.Render("Principais temas") + "\n")
	if len(cc.TopThemes) == 0 {
		b.WriteString(Subtitle.Render("Sem temas"))
	}
	for i, th := range cc.TopThemes {
		b.WriteString(fmt.Sprintf("%d. %-20s %s\n", i+1,
			format.Truncate(format.ThemeLabel(th.Theme), 20), Value.Render(format.Number(th.Count))))
	}
	return Card.Render(strings.TrimRight(b.String(), "\n"))
}

func trendText(tr api.Trend) string {
	delta := format.Signed(tr.Delta)
	switch tr.Direction {
	case api.TrendImproving:
		return Positive.Render("▲ Melhorando " + delta)
	case api.TrendDeclining:
		return Negative.Render("▼ Declinando " + delta)
	default:
		return NeutralStyle.Render("● Estável " + delta)
	}
}
