package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
	"github.com/abelbrown/campaignwatch/internal/logging"
	"github.com/abelbrown/campaignwatch/internal/pager"
	"github.com/abelbrown/campaignwatch/internal/store"
)

// Sortable post columns, as the backend names them.
const (
	SortLikes     = "like_count"
	SortComments  = "comment_count"
	SortPositive  = "positive_ratio"
	SortNegative  = "negative_ratio"
	SortSentiment = "sentiment_score"
)

type postColumn struct {
	title  string
	width  int
	sortBy string // empty: not sortable
	key    string
}

var postColumns = []postColumn{
	{title: "Data", width: 10},
	{title: "Perfil", width: 20},
	{title: "Legenda", width: 32},
	{title: "Curtidas", width: 10, sortBy: SortLikes, key: "1"},
	{title: "Comentários", width: 13, sortBy: SortComments, key: "2"},
	{title: "% Positivo", width: 12, sortBy: SortPositive, key: "3"},
	{title: "% Negativo", width: 12, sortBy: SortNegative, key: "4"},
	{title: "Sentimento", width: 12, sortBy: SortSentiment, key: "5"},
	{title: "Apoio", width: 7},
}

type postPage = pager.Page[api.Post]

// postsTab is the Posts page: a server-sorted table with load-more and
// per-post contextual analysis.
type postsTab struct {
	opts Options
	keys struct {
		Sort     key.Binding
		More     key.Binding
		Analyze  key.Binding
		Navigate key.Binding
	}

	ctrl      *pager.Controller[api.Post]
	table     table.Model
	sel       Selection
	analyses  map[string]store.Analysis
	analyzing string
	notice    string
	width     int
	height    int
}

func newPostsTab(opts Options) *postsTab {
	t := &postsTab{opts: opts, analyses: map[string]store.Analysis{}}
	t.keys.Sort = newBinding([]string{"1", "2", "3", "4", "5"}, "ordenar coluna", "1-5")
	t.keys.More = newBinding([]string{"m"}, "carregar mais", "m")
	t.keys.Analyze = newBinding([]string{"a"}, "analisar contexto", "a")
	t.keys.Navigate = newBinding([]string{"up", "down", "k", "j", "pgup", "pgdown"}, "navegar", "↑/↓")

	t.table = table.New(table.WithFocused(true), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(colorHighlight).Bold(true)
	styles.Selected = styles.Selected.Foreground(colorWhite).Background(colorPrimary)
	t.table.SetStyles(styles)
	return t
}

func (t *postsTab) Title() string { return "Posts" }

func (t *postsTab) Mount(sel Selection) tea.Cmd {
	t.sel = sel
	t.notice = ""
	t.analyzing = ""
	t.analyses = map[string]store.Analysis{}
	t.ctrl = pager.New("posts", t.fetchPage,
		pager.SortSpec{Column: SortComments, Order: pager.Desc},
		pager.WithFilter(sel.CandidateID),
		pager.WithPageSize(t.opts.Config.UI.PageSize),
		pager.WithContext(t.opts.Ctx),
		pager.WithEvents(t.opts.Events),
	)
	t.syncTable()
	return t.ctrl.Mount()
}

func (t *postsTab) fetchPage(ctx context.Context, q pager.Query) (postPage, error) {
	resp, err := t.opts.Backend.Posts(ctx, api.PostsParams{
		CandidateID: q.Filter,
		SortBy:      q.Column,
		Order:       string(q.Order),
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return postPage{}, err
	}
	return postPage{Rows: resp.Posts, Total: resp.Total}, nil
}

func (t *postsTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	return t.ctrl.SetFilter(sel.CandidateID)
}

func (t *postsTab) Refetch() tea.Cmd {
	cmd := t.ctrl.Refetch()
	t.syncTable()
	return cmd
}

func (t *postsTab) SetSize(width, height int) {
	t.width, t.height = width, height
	t.table.SetHeight(max(height-16, 5))
	t.table.SetWidth(max(width-2, 40))
}

func (t *postsTab) Keys() []key.Binding {
	return []key.Binding{t.keys.Navigate, t.keys.Sort, t.keys.More, t.keys.Analyze}
}

func (t *postsTab) Dispose() {
	if t.ctrl != nil {
		t.ctrl.Dispose()
	}
}

// Controller exposes the pager for inspection.
func (t *postsTab) Controller() *pager.Controller[api.Post] { return t.ctrl }

func (t *postsTab) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t.handleKey(msg)

	case fetchstate.Result[postPage], pager.MoreResult[api.Post]:
		if !t.ctrl.Update(msg) {
			return nil
		}
		t.syncTable()
		return t.loadAnalyses()

	case AnalysesLoaded:
		if msg.Err != nil {
			logging.Warn("load stored analyses", "error", msg.Err)
			return nil
		}
		for id, a := range msg.ByPost {
			t.analyses[id] = a
		}
		t.syncTable()

	case AnalysisFinished:
		t.finishAnalysis(msg)
		t.syncTable()
	}
	return nil
}

func (t *postsTab) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, t.keys.Sort):
		for _, c := range postColumns {
			if c.key == msg.String() {
				cmd := t.ctrl.SetSort(c.sortBy)
				t.syncTable()
				return cmd
			}
		}
	case key.Matches(msg, t.keys.More):
		return t.ctrl.LoadMore()
	case key.Matches(msg, t.keys.Analyze):
		return t.analyzeSelected()
	default:
		var cmd tea.Cmd
		t.table, cmd = t.table.Update(msg)
		return cmd
	}
	return nil
}

// loadAnalyses reads stored analyses for rows that have none in memory.
func (t *postsTab) loadAnalyses() tea.Cmd {
	if t.opts.Runs == nil {
		return nil
	}
	var ids []string
	for _, p := range t.ctrl.Rows() {
		if _, ok := t.analyses[p.PostID]; !ok {
			ids = append(ids, p.PostID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	runs := t.opts.Runs
	return func() tea.Msg {
		byPost, err := runs.Analyses(ids)
		return AnalysesLoaded{ByPost: byPost, Err: err}
	}
}

func (t *postsTab) selected() (api.Post, bool) {
	rows := t.ctrl.Rows()
	i := t.table.Cursor()
	if i < 0 || i >= len(rows) {
		return api.Post{}, false
	}
	return rows[i], true
}

func (t *postsTab) analyzeSelected() tea.Cmd {
	p, ok := t.selected()
	if !ok || t.analyzing != "" {
		return nil
	}
	t.analyzing = p.PostID
	t.notice = ""
	backend, ctx, id := t.opts.Backend, t.opts.Ctx, p.PostID
	return func() tea.Msg {
		cs, err := backend.ContextualSentiment(ctx, id)
		return AnalysisFinished{PostID: id, Result: cs, Err: err}
	}
}

func (t *postsTab) finishAnalysis(msg AnalysisFinished) {
	if msg.PostID == t.analyzing {
		t.analyzing = ""
	}
	ev := eventlog.Event{Level: eventlog.LevelInfo, Kind: eventlog.KindAnalysis, Comp: "ui", Key: msg.PostID}
	if msg.Err != nil {
		t.notice = "Erro na análise contextual: " + msg.Err.Error()
		ev.Level = eventlog.LevelWarn
		ev.Err = msg.Err.Error()
		t.opts.Events.Emit(ev)
		return
	}
	if msg.Result == nil {
		return
	}
	t.opts.Events.Emit(ev)

	now := t.opts.Now()
	t.analyses[msg.PostID] = store.Analysis{ContextualSentiment: *msg.Result, AnalyzedAt: now}
	if t.opts.Runs != nil {
		if err := t.opts.Runs.SaveAnalysis(*msg.Result, now); err != nil {
			logging.Warn("save analysis", "post", msg.PostID, "error", err)
		}
	}
}

// syncTable rebuilds columns and rows from the controller.
func (t *postsTab) syncTable() {
	spec := t.ctrl.Sort()
	cols := make([]table.Column, len(postColumns))
	for i, c := range postColumns {
		title := c.title
		if c.sortBy != "" && c.sortBy == spec.Column {
			if spec.Order == pager.Asc {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		cols[i] = table.Column{Title: title, Width: c.width}
	}

	posts := t.ctrl.Rows()
	rows := make([]table.Row, len(posts))
	for i, p := range posts {
		apoio := "-"
		if a, ok := t.analyses[p.PostID]; ok {
			apoio = format.Decimal(a.ApoioPercent, 0) + "%"
		}
		rows[i] = table.Row{
			format.DateMedium(p.PostedAt.Time),
			"@" + p.CandidateUsername,
			format.Truncate(strings.ReplaceAll(p.Caption, "\n", " "), 30),
			format.Number(p.LikeCount),
			format.Number(p.CommentCount),
			format.Percent(p.PositiveRatio),
			format.Percent(p.NegativeRatio),
			format.Score(p.AverageSentimentScore),
			apoio,
		}
	}

	t.table.SetColumns(cols)
	t.table.SetRows(rows)
	if len(rows) == 0 {
		return
	}
	// SetCursor on an empty table parks the cursor at -1.
	if c := t.table.Cursor(); c < 0 || c >= len(rows) {
		t.table.SetCursor(min(max(c, 0), len(rows)-1))
	}
}

func (t *postsTab) View(f frame) string {
	sub := t.opts.roster().Label(t.sel.Filter)
	return header("Posts", sub) + renderFetch(t.ctrl.State(), f, func(postPage) string {
		return t.renderTable(f)
	})
}

func (t *postsTab) renderTable(f frame) string {
	rows := t.ctrl.Rows()
	if len(rows) == 0 {
		return emptyView("Nenhum post encontrado.")
	}

	var b strings.Builder
	b.WriteString(t.table.View() + "\n")
	b.WriteString(Subtitle.Render(fmt.Sprintf("Exibindo %s de %s posts",
		format.Number(len(rows)), format.Number(t.ctrl.Total()))))
	switch {
	case t.ctrl.LoadingMore():
		b.WriteString("  " + Warning.Render(f.spinner+" Carregando..."))
	case t.ctrl.HasMore():
		b.WriteString("  " + StatusBarKey.Render("m") + " Carregar mais")
	}
	b.WriteString("\n\n")
	b.WriteString(t.renderDetail(f))
	return b.String()
}

func (t *postsTab) renderDetail(f frame) string {
	p, ok := t.selected()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(Subtitle.Render(format.Truncate(strings.ReplaceAll(p.Caption, "\n", " "), max(t.width-4, 40))) + "\n")
	if p.URL != "" {
		b.WriteString(Label.Render(p.URL) + "\n")
	}

	switch {
	case t.analyzing == p.PostID:
		b.WriteString(Warning.Render(f.spinner + " Analisando comentários..."))
	case t.notice != "":
		b.WriteString(ErrorStyle.Render(t.notice))
	default:
		a, ok := t.analyses[p.PostID]
		if !ok {
			b.WriteString(StatusBarKey.Render("a") + " Analisar contexto dos comentários")
			break
		}
		b.WriteString(Positive.Render(fmt.Sprintf("Apoio %s%% (%s)", format.Decimal(a.ApoioPercent, 1), format.Number(a.Apoio))) + "  ")
		b.WriteString(Negative.Render(fmt.Sprintf("Contra %s%% (%s)", format.Decimal(a.ContraPercent, 1), format.Number(a.Contra))) + "  ")
		b.WriteString(NeutralStyle.Render(fmt.Sprintf("Neutro %s%% (%s)", format.Decimal(a.NeutroPercent, 1), format.Number(a.Neutro))) + "\n")
		b.WriteString(Subtitle.Render(campaign.ContextVerdict(a.ContextualSentiment)))
		if !a.AnalyzedAt.IsZero() {
			b.WriteString("\n" + Label.Render("Analisado em "+format.Date(&a.AnalyzedAt)))
		}
	}
	return b.String()
}
