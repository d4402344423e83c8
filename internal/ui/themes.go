package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
)

const (
	themeViewBars  = "bars"
	themeViewShare = "share"
)

// themesTab is the Temas Quentes page: theme frequencies with a bar or
// share view.
type themesTab struct {
	opts Options
	keys struct{ Toggle key.Binding }

	st    *fetchstate.State[*api.ThemesResponse]
	sel   Selection
	view  string
	width int
}

func newThemesTab(opts Options) *themesTab {
	t := &themesTab{opts: opts, view: opts.Config.UI.ThemeView}
	t.keys.Toggle = newBinding([]string{"v"}, "barras/fatias", "v")
	return t
}

func (t *themesTab) Title() string { return "Temas Quentes" }

func (t *themesTab) Mount(sel Selection) tea.Cmd {
	t.st = fetchstate.New[*api.ThemesResponse]("themes", t.opts.fetchOpts()...)
	return t.SetSelection(sel)
}

func (t *themesTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	id, backend := sel.CandidateID, t.opts.Backend
	return t.st.Load([]any{id}, func(ctx context.Context) (*api.ThemesResponse, error) {
		return backend.Themes(ctx, id)
	})
}

func (t *themesTab) Refetch() tea.Cmd     { return t.st.Refetch() }
func (t *themesTab) SetSize(width, _ int) { t.width = width }
func (t *themesTab) Keys() []key.Binding  { return []key.Binding{t.keys.Toggle} }

func (t *themesTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *themesTab) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(k, t.keys.Toggle) {
			if t.view == themeViewBars {
				t.view = themeViewShare
			} else {
				t.view = themeViewBars
			}
		}
		return nil
	}
	t.st.Update(msg)
	return nil
}

func (t *themesTab) View(f frame) string {
	sub := t.opts.roster().Label(t.sel.Filter)
	if t.view == themeViewBars {
		sub += " · Ver como fatias (v)"
	} else {
		sub += " · Ver como barras (v)"
	}
	return header("Temas Quentes", sub) + renderFetch(t.st, f, t.renderThemes)
}

func (t *themesTab) renderThemes(tr *api.ThemesResponse) string {
	if len(tr.Themes) == 0 {
		return emptyView("Nenhum tema identificado nos comentários.")
	}

	maxCount, total := 0, 0
	for _, th := range tr.Themes {
		maxCount = max(maxCount, th.Count)
		total += th.Count
	}
	barWidth := max(min(t.width-50, 40), 10)

	var b strings.Builder
	for _, th := range tr.Themes {
		label := format.Truncate(format.ThemeLabel(th.Theme), 24)
		var graph string
		if t.view == themeViewBars {
			graph = padRight(bar(float64(th.Count), float64(maxCount), barWidth), barWidth) + " " + Value.Render(format.Number(th.Count))
		} else {
			share := th.Percentage
			if share == 0 {
				share = format.Share(th.Count, total)
			}
			graph = Value.Render(format.Decimal(share, 1) + "%")
		}
		b.WriteString(fmt.Sprintf("%-24s %s\n", label, graph))
		if split := t.byCandidate(th); split != "" {
			b.WriteString("  " + Subtitle.Render(split) + "\n")
		}
	}
	return b.String()
}

func (t *themesTab) byCandidate(th api.Theme) string {
	var parts []string
	for i, c := range t.opts.roster() {
		n := th.CountFor(c.Username)
		if n == 0 {
			continue
		}
		parts = append(parts, candidateStyle(i).Render(c.Display)+fmt.Sprintf(" %s", format.Number(n)))
	}
	return strings.Join(parts, " · ")
}
