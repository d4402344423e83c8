package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/config"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/monitor"
	"github.com/abelbrown/campaignwatch/internal/store"
)

var testNow = time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

// fakeBackend serves canned analytics and records every call.
type fakeBackend struct {
	mu sync.Mutex

	calls       map[string]int
	timeline    []api.TimelineParams
	wordIDs     []string
	posts       []api.PostsParams
	suggestIDs  []string
	competitive [][2]string
	contextual  []string
	totalPosts  int
	wordErr     error
	scrapeErr   error
	overviewErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}, totalPosts: 45}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Overview(context.Context) (*api.Overview, error) {
	f.hit("overview")
	if f.overviewErr != nil {
		return nil, f.overviewErr
	}
	return &api.Overview{
		Candidates: []api.CandidateMetrics{
			{CandidateID: "c1", Username: "charlles.evangelista", DisplayName: "Charlles Evangelista", TotalPosts: 10, TotalComments: 120, AverageSentimentScore: 0.12},
			{CandidateID: "s1", Username: "delegadasheila", DisplayName: "Delegada Sheila", TotalPosts: 8, TotalComments: 90, AverageSentimentScore: -0.02},
		},
		TotalCommentsAnalyzed: 210,
	}, nil
}

func (f *fakeBackend) SentimentTimeline(_ context.Context, p api.TimelineParams) (*api.SentimentTimeline, error) {
	f.hit("timeline")
	f.mu.Lock()
	f.timeline = append(f.timeline, p)
	f.mu.Unlock()
	return &api.SentimentTimeline{DataPoints: []api.TimelinePoint{
		{PostID: "p1", CandidateUsername: "delegadasheila", PostCaption: "Segurança", AverageSentimentScore: 0.3},
	}}, nil
}

func (f *fakeBackend) WordCloud(_ context.Context, id string) (*api.WordCloud, error) {
	f.hit("words")
	f.mu.Lock()
	f.wordIDs = append(f.wordIDs, id)
	err := f.wordErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &api.WordCloud{Words: []api.Word{{Word: "segurança", Count: 42}, {Word: "saúde", Count: 17}}, TotalUniqueWords: 2}, nil
}

func (f *fakeBackend) Themes(context.Context, string) (*api.ThemesResponse, error) {
	f.hit("themes")
	return &api.ThemesResponse{Themes: []api.Theme{{Theme: "seguranca_publica", Count: 10, Percentage: 62.5}}}, nil
}

func (f *fakeBackend) Posts(_ context.Context, p api.PostsParams) (*api.PostsResponse, error) {
	f.hit("posts")
	f.mu.Lock()
	f.posts = append(f.posts, p)
	total := f.totalPosts
	f.mu.Unlock()

	resp := &api.PostsResponse{Total: total, Limit: p.Limit, Offset: p.Offset}
	for i := p.Offset; i < min(p.Offset+p.Limit, total); i++ {
		resp.Posts = append(resp.Posts, api.Post{
			PostID:            fmt.Sprintf("p%d", i+1),
			CandidateUsername: "delegadasheila",
			Caption:           fmt.Sprintf("post %d", i+1),
			CommentCount:      total - i,
		})
	}
	return resp, nil
}

func (f *fakeBackend) Comparison(context.Context) (*api.Comparison, error) {
	f.hit("comparison")
	return &api.Comparison{}, nil
}

func (f *fakeBackend) Competitive(_ context.Context, ours, theirs string) (*api.Competitive, error) {
	f.hit("competitive")
	f.mu.Lock()
	f.competitive = append(f.competitive, [2]string{ours, theirs})
	f.mu.Unlock()
	return &api.Competitive{
		OurCandidate:        &api.CompetitiveMetrics{Username: ours, AvgLikesPerPost: 120},
		Competitor:          &api.CompetitiveMetrics{Username: theirs, AvgLikesPerPost: 80},
		EngagementAdvantage: 50,
	}, nil
}

func (f *fakeBackend) Suggestions(_ context.Context, id string) (*api.SuggestionsResponse, error) {
	f.hit("suggestions")
	f.mu.Lock()
	f.suggestIDs = append(f.suggestIDs, id)
	f.mu.Unlock()
	return &api.SuggestionsResponse{
		Suggestions: []api.Suggestion{
			{Title: "Responder críticas", Priority: api.PriorityLow},
			{Title: "Vídeos curtos", Priority: api.PriorityHigh},
		},
		ResumoExecutivo: "Foco em segurança.",
	}, nil
}

func (f *fakeBackend) ContextualSentiment(_ context.Context, postID string) (*api.ContextualSentiment, error) {
	f.hit("contextual")
	f.mu.Lock()
	f.contextual = append(f.contextual, postID)
	f.mu.Unlock()
	return &api.ContextualSentiment{PostID: postID, Apoio: 7, Contra: 2, Neutro: 1, ApoioPercent: 70, ContraPercent: 20, NeutroPercent: 10}, nil
}

func (f *fakeBackend) TriggerScraping(context.Context) (*api.ScrapingRun, error) {
	f.hit("scrape")
	if f.scrapeErr != nil {
		return nil, f.scrapeErr
	}
	return &api.ScrapingRun{RunID: "run-1", Status: "started"}, nil
}

// fakeRuns is an in-memory RunLog.
type fakeRuns struct {
	runs     []store.Run
	analyses map[string]store.Analysis
}

func (r *fakeRuns) RecordRun(run store.Run) (int64, error) {
	r.runs = append(r.runs, run)
	return int64(len(r.runs)), nil
}

func (r *fakeRuns) SaveAnalysis(cs api.ContextualSentiment, at time.Time) error {
	if r.analyses == nil {
		r.analyses = map[string]store.Analysis{}
	}
	r.analyses[cs.PostID] = store.Analysis{ContextualSentiment: cs, AnalyzedAt: at}
	return nil
}

func (r *fakeRuns) Analyses(ids []string) (map[string]store.Analysis, error) {
	out := map[string]store.Analysis{}
	for _, id := range ids {
		if a, ok := r.analyses[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func newTestApp(t *testing.T, b *fakeBackend, runs *fakeRuns) App {
	t.Helper()
	opts := Options{
		Backend: b,
		Config:  config.DefaultConfig(),
		Now:     func() time.Time { return testNow },
	}
	if runs != nil {
		opts.Runs = runs
	}
	app := NewApp(opts)
	app = send(t, app, tea.WindowSizeMsg{Width: 160, Height: 50})
	return drain(t, app, app.Init())
}

// drain runs cmd and every command it produces, feeding each message back
// into app. Spinner ticks are dropped so the loop terminates.
func drain(t *testing.T, app App, cmd tea.Cmd) App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			model, next := app.Update(msg)
			app = model.(App)
			queue = append(queue, next)
		}
	}
	return app
}

func send(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	model, _ := app.Update(msg)
	return model.(App)
}

func press(t *testing.T, app App, k string) App {
	t.Helper()
	model, cmd := app.Update(keyMsg(k))
	return drain(t, model.(App), cmd)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func gotoTab(t *testing.T, app App, i int) App {
	t.Helper()
	for app.ActiveTab() != i {
		app = press(t, app, "tab")
	}
	return app
}

func TestAppInitLoadsOverview(t *testing.T) {
	b := newFakeBackend()
	app := newTestApp(t, b, nil)

	// One fetch for candidate resolution, one for the Painel tab.
	if got := b.count("overview"); got != 2 {
		t.Errorf("overview calls = %d, want 2", got)
	}
	view := app.View()
	for _, want := range []string{"Charlles Evangelista", "Delegada Sheila", "Painel", "Ambos"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppTabTitles(t *testing.T) {
	app := NewApp(Options{Backend: newFakeBackend()})
	want := []string{"Painel", "Termômetro", "O Que Falam", "Temas Quentes", "Posts", "Perfil", "Concorrência", "Estratégia IA"}
	got := app.TabTitles()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestAppViewBeforeReady(t *testing.T) {
	app := NewApp(Options{Backend: newFakeBackend()})
	if got := app.View(); got != "Carregando..." {
		t.Errorf("View() = %q", got)
	}
}

func TestCandidateCycleResolvesID(t *testing.T) {
	b := newFakeBackend()
	app := gotoTab(t, newTestApp(t, b, nil), 2)

	if b.wordIDs[len(b.wordIDs)-1] != "" {
		t.Fatalf("initial candidate id = %q, want empty", b.wordIDs[len(b.wordIDs)-1])
	}

	tests := []struct {
		filter campaign.Filter
		id     string
	}{
		{"charlles", "c1"},
		{"sheila", "s1"},
		{campaign.FilterAll, ""},
	}
	for _, tt := range tests {
		app = press(t, app, "c")
		if app.Filter() != tt.filter {
			t.Fatalf("filter = %q, want %q", app.Filter(), tt.filter)
		}
		if got := app.Selection().CandidateID; got != tt.id {
			t.Errorf("selection id = %q, want %q", got, tt.id)
		}
		if got := b.wordIDs[len(b.wordIDs)-1]; got != tt.id {
			t.Errorf("last wordcloud id = %q, want %q", got, tt.id)
		}
	}
	if got := b.count("words"); got != 4 {
		t.Errorf("wordcloud calls = %d, want 4", got)
	}
}

func TestDefaultCandidateFromConfig(t *testing.T) {
	b := newFakeBackend()
	cfg := config.DefaultConfig()
	cfg.DefaultCandidate = "sheila"
	app := NewApp(Options{Backend: b, Config: cfg, Now: func() time.Time { return testNow }})
	app = drain(t, app, app.Init())

	if app.Filter() != "sheila" {
		t.Fatalf("filter = %q", app.Filter())
	}
	if app.Selection().CandidateID != "s1" {
		t.Errorf("candidate id = %q, want s1", app.Selection().CandidateID)
	}
}

func TestTabSwitchRemountsWithFreshFetch(t *testing.T) {
	b := newFakeBackend()
	app := gotoTab(t, newTestApp(t, b, nil), 2)
	if got := b.count("words"); got != 1 {
		t.Fatalf("wordcloud calls = %d, want 1", got)
	}

	app = press(t, app, "tab")
	app = press(t, app, "shift+tab")
	if app.ActiveTab() != 2 {
		t.Fatalf("active tab = %d", app.ActiveTab())
	}
	if got := b.count("words"); got != 2 {
		t.Errorf("wordcloud calls = %d, want 2 after remount", got)
	}
}

func TestHiddenTabResultIgnored(t *testing.T) {
	b := newFakeBackend()
	app := gotoTab(t, newTestApp(t, b, nil), 1)

	// Mount the word tab but hold its fetch, then leave.
	model, pending := app.Update(keyMsg("tab"))
	app = model.(App)
	words := app.tabs[2].(*wordsTab)
	app = press(t, app, "shift+tab")

	app = drain(t, app, pending)
	if !words.st.Disposed() {
		t.Fatal("word tab should be disposed")
	}
	if _, ok := words.st.Data(); ok {
		t.Error("disposed tab accepted a late result")
	}
	if app.ActiveTab() != 1 {
		t.Errorf("active tab = %d", app.ActiveTab())
	}
}

func TestRefreshRefetchesActiveTab(t *testing.T) {
	b := newFakeBackend()
	app := gotoTab(t, newTestApp(t, b, nil), 2)
	press(t, app, "r")
	if got := b.count("words"); got != 2 {
		t.Errorf("wordcloud calls = %d, want 2", got)
	}
	if got := b.count("overview"); got != 2 {
		t.Errorf("overview refetched without error: %d calls", got)
	}
}

func TestErrorBannerAndRetry(t *testing.T) {
	b := newFakeBackend()
	b.wordErr = &api.StatusError{Code: 500, Status: "Internal Server Error"}
	app := gotoTab(t, newTestApp(t, b, nil), 2)

	view := app.View()
	if !strings.Contains(view, loadErrorTitle) || !strings.Contains(view, "500") {
		t.Fatalf("error banner missing:\n%s", view)
	}
	if !strings.Contains(view, retryHint) {
		t.Error("retry hint missing")
	}

	b.mu.Lock()
	b.wordErr = nil
	b.mu.Unlock()
	app = press(t, app, "r")
	view = app.View()
	if strings.Contains(view, loadErrorTitle) {
		t.Error("error banner still shown after retry")
	}
	if !strings.Contains(view, "segurança") {
		t.Error("words missing after retry")
	}
}

func TestScrapeOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		notice string
		status string
	}{
		{"started", nil, scrapeStarted, store.RunStarted},
		{"conflict", &api.StatusError{Code: 409, Status: "Conflict"}, scrapeRunning, store.RunAlreadyRunning},
		{"failure", &api.StatusError{Code: 500, Status: "Internal Server Error"}, scrapeFailed, store.RunFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.scrapeErr = tt.err
			runs := &fakeRuns{}
			app := newTestApp(t, b, runs)

			app = press(t, app, "s")
			if !strings.Contains(app.View(), tt.notice) {
				t.Errorf("view missing %q", tt.notice)
			}
			if len(runs.runs) != 1 {
				t.Fatalf("recorded %d runs, want 1", len(runs.runs))
			}
			if runs.runs[0].Status != tt.status {
				t.Errorf("status = %q, want %q", runs.runs[0].Status, tt.status)
			}
		})
	}
}

func TestHealthIndicator(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), nil)
	if !strings.Contains(app.View(), "API verificando") {
		t.Error("pending health indicator missing")
	}

	app = send(t, app, monitor.HealthUpdated{Health: &api.Health{Status: "ok"}, At: testNow})
	if !strings.Contains(app.View(), "API ok") {
		t.Error("ok indicator missing")
	}

	app = send(t, app, monitor.HealthUpdated{Err: context.DeadlineExceeded, At: testNow})
	if !strings.Contains(app.View(), "API indisponível") {
		t.Error("down indicator missing")
	}
}

func TestEventsOverlayToggle(t *testing.T) {
	ring := eventlog.NewRingBuffer(16)
	ring.Push(eventlog.Event{Time: testNow, Kind: eventlog.KindRequest, Method: "GET", Path: "/health", Status: 200})

	b := newFakeBackend()
	app := NewApp(Options{Backend: b, Ring: ring, Now: func() time.Time { return testNow }})
	app = send(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	app = drain(t, app, app.Init())

	app = press(t, app, "e")
	view := app.View()
	if !strings.Contains(view, "Eventos recentes") || !strings.Contains(view, "/health") {
		t.Fatalf("overlay missing:\n%s", view)
	}

	// Tab keys are swallowed while the overlay is open.
	app = press(t, app, "tab")
	if app.ActiveTab() != 0 {
		t.Error("tab switched under overlay")
	}

	app = press(t, app, "esc")
	if strings.Contains(app.View(), "Eventos recentes") {
		t.Error("overlay still open")
	}
}

func TestQuitKey(t *testing.T) {
	app := newTestApp(t, newFakeBackend(), nil)
	_, cmd := app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
