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
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
	"github.com/abelbrown/campaignwatch/internal/logging"
	"github.com/abelbrown/campaignwatch/internal/store"
)

const (
	scrapeStarted = "Coleta iniciada com sucesso!"
	scrapeRunning = "Coleta já em andamento."
	scrapeFailed  = "Erro ao iniciar coleta."
	noDataYet     = "Nenhum dado disponível. Inicie uma coleta de dados."
)

// overviewTab is the Painel page: per-candidate totals and the collection
// trigger.
type overviewTab struct {
	opts Options
	keys struct{ Scrape key.Binding }

	st        *fetchstate.State[*api.Overview]
	sel       Selection
	scraping  bool
	scrapeMsg string
	width     int
}

func newOverviewTab(opts Options) *overviewTab {
	t := &overviewTab{opts: opts}
	t.keys.Scrape = newBinding([]string{"s"}, "iniciar coleta", "s")
	return t
}

func (t *overviewTab) Title() string { return "Painel" }

func (t *overviewTab) Mount(sel Selection) tea.Cmd {
	t.sel = sel
	t.scrapeMsg = ""
	t.st = fetchstate.New[*api.Overview]("overview", t.opts.fetchOpts()...)
	backend := t.opts.Backend
	return t.st.Load(nil, func(ctx context.Context) (*api.Overview, error) {
		return backend.Overview(ctx)
	})
}

func (t *overviewTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	return nil
}

func (t *overviewTab) Refetch() tea.Cmd { return t.st.Refetch() }

func (t *overviewTab) SetSize(width, _ int) { t.width = width }

func (t *overviewTab) Keys() []key.Binding { return []key.Binding{t.keys.Scrape} }

func (t *overviewTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *overviewTab) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, t.keys.Scrape) {
			return t.triggerScrape()
		}
	case ScrapeFinished:
		t.finishScrape(msg)
	default:
		t.st.Update(msg)
	}
	return nil
}

func (t *overviewTab) triggerScrape() tea.Cmd {
	if t.scraping {
		return nil
	}
	t.scraping = true
	t.scrapeMsg = ""
	backend, ctx := t.opts.Backend, t.opts.Ctx
	return func() tea.Msg {
		run, err := backend.TriggerScraping(ctx)
		return ScrapeFinished{Run: run, Err: err}
	}
}

func (t *overviewTab) finishScrape(msg ScrapeFinished) {
	t.scraping = false
	rec := store.Run{RequestedAt: t.opts.Now()}
	switch {
	case msg.Err == nil:
		t.scrapeMsg = scrapeStarted
		rec.Status = store.RunStarted
		if msg.Run != nil {
			rec.RunID = msg.Run.RunID
			rec.Message = msg.Run.Message
		}
	case api.IsConflict(msg.Err):
		t.scrapeMsg = scrapeRunning
		rec.Status = store.RunAlreadyRunning
		rec.AlreadyRunning = true
		rec.Error = msg.Err.Error()
	default:
		t.scrapeMsg = scrapeFailed
		rec.Status = store.RunFailed
		rec.Error = msg.Err.Error()
	}

	t.opts.Events.Emit(eventlog.Event{
		Level: eventlog.LevelInfo,
		Kind:  eventlog.KindScrape,
		Comp:  "ui",
		Msg:   rec.Status,
		Err:   rec.Error,
	})
	if t.opts.Runs != nil {
		if _, err := t.opts.Runs.RecordRun(rec); err != nil {
			logging.Warn("record scrape run", "error", err)
		}
	}
}

func (t *overviewTab) View(f frame) string {
	var b strings.Builder
	b.WriteString(header("Painel", "Visão geral da presença digital"))

	b.WriteString(renderFetch(t.st, f, func(ov *api.Overview) string {
		return t.renderOverview(ov)
	}))
	b.WriteString("\n")

	switch {
	case t.scraping:
		b.WriteString(Warning.Render(f.spinner + " Iniciando coleta..."))
	case t.scrapeMsg == scrapeStarted:
		b.WriteString(Positive.Render(t.scrapeMsg))
	case t.scrapeMsg != "":
		b.WriteString(Warning.Render(t.scrapeMsg))
	}
	return b.String()
}

func (t *overviewTab) renderOverview(ov *api.Overview) string {
	candidates := t.visible(ov.Candidates)
	if len(candidates) == 0 {
		return emptyView(noDataYet + "\n" + StatusBarKey.Render("s") + " Iniciar coleta")
	}

	var b strings.Builder
	b.WriteString(metricLine("Última coleta", format.Date(ov.LastScrape.Ptr())) + "\n")
	b.WriteString(metricLine("Comentários analisados", format.Number(ov.TotalCommentsAnalyzed)) + "\n\n")

	roster := t.opts.roster()
	cards := make([]string, 0, len(candidates))
	for _, m := range candidates {
		cards = append(cards, candidateCard(roster, m))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	return b.String()
}

// visible filters metrics by the selected candidate. Before the id is
// resolved, or for "all", every candidate is shown.
func (t *overviewTab) visible(all []api.CandidateMetrics) []api.CandidateMetrics {
	if t.sel.Filter == campaign.FilterAll {
		return all
	}
	c, ok := t.opts.roster().Lookup(t.sel.Filter)
	if !ok {
		return all
	}
	for _, m := range all {
		if m.Username == c.Username {
			return []api.CandidateMetrics{m}
		}
	}
	return nil
}

func candidateCard(roster campaign.Roster, m api.CandidateMetrics) string {
	name := m.DisplayName
	if name == "" {
		name = m.Username
	}
	idx, cargo := 0, ""
	for i, c := range roster {
		if c.Username == m.Username {
			idx, cargo = i, c.Cargo
		}
	}

	d := m.SentimentDistribution
	total := d.Positive + d.Negative + d.Neutral
	lines := []string{
		candidateStyle(idx).Render(name),
		Subtitle.Render("@" + m.Username + cargoSuffix(cargo)),
		"",
		metricLine("Posts", format.Number(m.TotalPosts)),
		metricLine("Comentários", format.Number(m.TotalComments)),
		metricLine("Engajamento", format.Number(m.TotalEngagement)),
		metricLine("Sentimento médio", "") + sentimentText(m.AverageSentimentScore),
		"",
		Positive.Render(fmt.Sprintf("Positivos  %5s  %s", format.Number(d.Positive), format.Percent(format.Share(d.Positive, total)/100))),
		Negative.Render(fmt.Sprintf("Negativos  %5s  %s", format.Number(d.Negative), format.Percent(format.Share(d.Negative, total)/100))),
		NeutralStyle.Render(fmt.Sprintf("Neutros    %5s  %s", format.Number(d.Neutral), format.Percent(format.Share(d.Neutral, total)/100))),
		"",
		Subtitle.Render(campaign.Interpretation(m.AverageSentimentScore)),
	}
	return Card.Render(strings.Join(lines, "\n"))
}

func cargoSuffix(cargo string) string {
	if cargo == "" {
		return ""
	}
	return " · " + cargo
}
