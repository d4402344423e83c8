package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/monitor"
)

// appChrome is the tab bar, its gap and the status bar.
const appChrome = 4

// App is the root Bubble Tea model.
// App owns the candidate filter and the overview fetch that resolves it to
// a backend id; tabs only see the resulting Selection.
type App struct {
	opts    Options
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	filter   campaign.Filter
	overview *fetchstate.State[*api.Overview]
	health   *monitor.HealthUpdated

	tabs     []Tab
	active   int
	painel   *overviewTab
	posts    *postsTab
	selected Selection

	showEvents bool
	width      int
	height     int
	ready      bool
}

// NewApp builds the dashboard. The initial filter is the configured default
// candidate.
func NewApp(opts Options) App {
	opts.fill()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = Warning

	painel := newOverviewTab(opts)
	posts := newPostsTab(opts)
	a := App{
		opts:    opts,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		filter:  campaign.Filter(opts.Config.DefaultCandidate),
		painel:  painel,
		posts:   posts,
		tabs: []Tab{
			painel,
			newSentimentTab(opts),
			newWordsTab(opts),
			newThemesTab(opts),
			posts,
			newComparisonTab(opts),
			newCompetitiveTab(opts),
			newInsightsTab(opts),
		},
	}
	if !opts.roster().Valid(a.filter) {
		a.filter = campaign.FilterAll
	}
	a.overview = fetchstate.New[*api.Overview]("app-overview", opts.fetchOpts()...)
	a.selected = Selection{Filter: a.filter}
	a.keys.tab = a.tabs[0].Keys()
	return a
}

// Init loads the overview and mounts the first tab.
func (a App) Init() tea.Cmd {
	backend := a.opts.Backend
	load := a.overview.Load(nil, func(ctx context.Context) (*api.Overview, error) {
		return backend.Overview(ctx)
	})
	return tea.Batch(a.spinner.Tick, load, a.tabs[a.active].Mount(a.selected))
}

// resolve maps the filter onto a backend id using the loaded overview.
func (a App) resolve() Selection {
	sel := Selection{Filter: a.filter}
	if ov, ok := a.overview.Data(); ok && ov != nil {
		sel.CandidateID, _ = a.opts.roster().ResolveID(a.filter, ov.Candidates)
	}
	return sel
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		for _, t := range a.tabs {
			t.SetSize(msg.Width, msg.Height-appChrome)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case monitor.HealthUpdated:
		a.health = &msg
		return a, nil

	case ScrapeFinished:
		return a, a.painel.Update(msg)

	case AnalysisFinished:
		return a, a.posts.Update(msg)
	}

	if a.overview.Update(msg) {
		return a.applySelection()
	}
	return a, a.tabs[a.active].Update(msg)
}

// applySelection pushes a changed selection into the active tab.
func (a App) applySelection() (tea.Model, tea.Cmd) {
	sel := a.resolve()
	if sel == a.selected {
		return a, nil
	}
	a.selected = sel
	return a, a.tabs[a.active].SetSelection(sel)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showEvents {
		if key.Matches(msg, a.keys.Events) || msg.String() == "esc" {
			a.showEvents = false
			return a, nil
		}
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, a.keys.Events):
		a.showEvents = true
		return a, nil

	case key.Matches(msg, a.keys.NextTab):
		return a.switchTab((a.active + 1) % len(a.tabs))

	case key.Matches(msg, a.keys.PrevTab):
		return a.switchTab((a.active - 1 + len(a.tabs)) % len(a.tabs))

	case key.Matches(msg, a.keys.Candidate):
		a.filter = a.opts.roster().Next(a.filter)
		a.opts.Events.Emit(eventlog.Event{
			Level: eventlog.LevelInfo,
			Kind:  eventlog.KindCandidate,
			Comp:  "ui",
			Msg:   string(a.filter),
		})
		return a.applySelection()

	case key.Matches(msg, a.keys.Refresh):
		cmds := []tea.Cmd{a.tabs[a.active].Refetch()}
		if a.overview.Err() != nil {
			cmds = append(cmds, a.overview.Refetch())
		}
		return a, tea.Batch(cmds...)
	}

	return a, a.tabs[a.active].Update(msg)
}

// switchTab disposes the visible tab and mounts tab i.
func (a App) switchTab(i int) (tea.Model, tea.Cmd) {
	if i == a.active {
		return a, nil
	}
	a.tabs[a.active].Dispose()
	a.active = i
	t := a.tabs[i]
	a.keys.tab = t.Keys()
	a.opts.Events.Emit(eventlog.Event{
		Level: eventlog.LevelInfo,
		Kind:  eventlog.KindTab,
		Comp:  "ui",
		Msg:   t.Title(),
	})
	return a, t.Mount(a.selected)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Carregando..."
	}

	content := ""
	if a.showEvents {
		content = eventsOverlay(a.opts.Ring, a.opts.Now(), a.width, a.height-appChrome)
	}
	if content == "" {
		f := frame{width: a.width, height: a.height - appChrome, spinner: a.spinner.View()}
		content = a.tabs[a.active].View(f)
	}
	content = lipgloss.NewStyle().Height(max(a.height-appChrome, 1)).MaxHeight(max(a.height-appChrome, 1)).Render(content)

	return a.tabBar() + "\n\n" + content + "\n" + a.statusBar()
}

func (a App) tabBar() string {
	labels := make([]string, len(a.tabs))
	for i, t := range a.tabs {
		if i == a.active {
			labels[i] = TabActive.Render(t.Title())
		} else {
			labels[i] = TabInactive.Render(t.Title())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}

func (a App) statusBar() string {
	parts := []string{
		StatusBarText.Render("Candidato: ") + Value.Render(a.opts.roster().Label(a.filter)),
		a.healthText(),
		a.help.View(a.keys),
	}
	if a.showEvents {
		parts[2] = StatusBarKey.Render("e") + StatusBarText.Render(":fechar eventos")
	}
	return StatusBar.Width(a.width).Render(strings.Join(parts, "  "))
}

func (a App) healthText() string {
	switch {
	case a.health == nil:
		return StatusBarText.Render("○ API verificando")
	case a.health.OK():
		return Positive.Render("● API ok")
	case a.health.Err == nil && a.health.Health != nil:
		return Warning.Render("● API " + a.health.Health.Status)
	default:
		return Negative.Render("● API indisponível")
	}
}

// ActiveTab returns the index of the visible tab (for testing).
func (a App) ActiveTab() int { return a.active }

// Filter returns the candidate filter (for testing).
func (a App) Filter() campaign.Filter { return a.filter }

// Selection returns the selection given to tabs (for testing).
func (a App) Selection() Selection { return a.selected }

// TabTitles lists the tab titles in order.
func (a App) TabTitles() []string {
	out := make([]string, len(a.tabs))
	for i, t := range a.tabs {
		out[i] = t.Title()
	}
	return out
}
