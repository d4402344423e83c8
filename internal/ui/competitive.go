package ui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
)

// competitiveTab is the Concorrência page: our candidate against the
// configured competitor.
type competitiveTab struct {
	opts  Options
	st    *fetchstate.State[*api.Competitive]
	width int
}

func newCompetitiveTab(opts Options) *competitiveTab { return &competitiveTab{opts: opts} }

func (t *competitiveTab) Title() string { return "Concorrência" }

func (t *competitiveTab) Mount(sel Selection) tea.Cmd {
	t.st = fetchstate.New[*api.Competitive]("competitive", t.opts.fetchOpts()...)
	ours, theirs := t.opts.Config.Competitive.OurUsername, t.opts.Config.Competitive.CompetitorUsername
	backend := t.opts.Backend
	return t.st.Load([]any{ours, theirs}, func(ctx context.Context) (*api.Competitive, error) {
		return backend.Competitive(ctx, ours, theirs)
	})
}

// SetSelection is a no-op: the pairing comes from configuration.
func (t *competitiveTab) SetSelection(Selection) tea.Cmd { return nil }

func (t *competitiveTab) Refetch() tea.Cmd     { return t.st.Refetch() }
func (t *competitiveTab) SetSize(width, _ int) { t.width = width }
func (t *competitiveTab) Keys() []key.Binding  { return nil }

func (t *competitiveTab) Update(msg tea.Msg) tea.Cmd {
	t.st.Update(msg)
	return nil
}

func (t *competitiveTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *competitiveTab) View(f frame) string {
	return header("Concorrência", "Análise competitiva") + renderFetch(t.st, f, t.renderCompetitive)
}

type metricRow struct {
	label        string
	ours, theirs float64
	render       func(float64) string
}

func (t *competitiveTab) renderCompetitive(c *api.Competitive) string {
	if c.OurCandidate == nil || c.Competitor == nil {
		return emptyView("Nenhum dado disponível.")
	}
	ours, theirs := *c.OurCandidate, *c.Competitor
	oursName := ours.Name()
	if cand, ok := t.opts.roster().ByUsername(ours.Username); ok {
		oursName = cand.Display
	}
	theirsName := theirs.Name()
	if d := t.opts.Config.Competitive.CompetitorDisplay; d != "" {
		theirsName = d
	}

	integer := func(v float64) string { return format.Number(int(v)) }
	decimal := func(v float64) string { return format.Decimal(v, 1) }
	rows := []metricRow{
		{"Posts", float64(ours.TotalPosts), float64(theirs.TotalPosts), integer},
		{"Comentários", float64(ours.TotalComments), float64(theirs.TotalComments), integer},
		{"Engajamento", float64(ours.TotalEngagement), float64(theirs.TotalEngagement), integer},
		{"Curtidas por post", ours.AvgLikesPerPost, theirs.AvgLikesPerPost, decimal},
		{"Comentários por post", ours.AvgCommentsPerPost, theirs.AvgCommentsPerPost, decimal},
		{"Sentimento médio", ours.AverageSentimentScore, theirs.AverageSentimentScore, format.Score},
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-22s %s %s\n", "",
		padRight(candidateStyle(0).Render(format.Truncate(oursName, 20)), 22),
		candidateStyle(1).Render(format.Truncate(theirsName, 20))))
	for _, r := range rows {
		b.WriteString(Label.Render(fmt.Sprintf("%-22s", r.label)) + " ")
		b.WriteString(padRight(Value.Render(r.render(r.ours))+" "+standingMark(campaign.Compare(r.ours, r.theirs)), 22) + " ")
		b.WriteString(Value.Render(r.render(r.theirs)) + "\n")
	}
	b.WriteString("\n" + advantageText(c.EngagementAdvantage, oursName, theirsName) + "\n")

	if len(c.Suggestions) > 0 {
		b.WriteString("\n" + CardTitle.Render("Sugestões") + "\n")
		for _, s := range campaign.SortByPriority(c.Suggestions) {
			b.WriteString(priorityBadge(s.Priority) + " " + Value.Render(s.Title) + "\n")
			if s.Description != "" {
				b.WriteString("  " + Subtitle.Render(s.Description) + "\n")
			}
		}
	}
	return b.String()
}

func standingMark(s campaign.Standing) string {
	switch s {
	case campaign.Winning:
		return Positive.Render("▲")
	case campaign.Losing:
		return Negative.Render("▼")
	default:
		return NeutralStyle.Render("=")
	}
}

// advantageText describes the engagement gap; positive favors ours.
func advantageText(adv float64, ours, theirs string) string {
	pct := format.Decimal(math.Abs(adv), 0) + "%"
	switch {
	case adv > 0:
		return Positive.Render(fmt.Sprintf("%s tem %s mais engajamento por post", ours, pct))
	case adv < 0:
		return Negative.Render(fmt.Sprintf("%s tem %s mais engajamento por post", theirs, pct))
	default:
		return NeutralStyle.Render("Engajamento similar entre as candidatas")
	}
}
