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

const topWords = 20

// wordsTab is the O Que Falam page: the most frequent comment words.
type wordsTab struct {
	opts  Options
	st    *fetchstate.State[*api.WordCloud]
	sel   Selection
	width int
}

func newWordsTab(opts Options) *wordsTab { return &wordsTab{opts: opts} }

func (t *wordsTab) Title() string { return "O Que Falam" }

func (t *wordsTab) Mount(sel Selection) tea.Cmd {
	t.st = fetchstate.New[*api.WordCloud]("wordcloud", t.opts.fetchOpts()...)
	return t.SetSelection(sel)
}

func (t *wordsTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	id, backend := sel.CandidateID, t.opts.Backend
	return t.st.Load([]any{id}, func(ctx context.Context) (*api.WordCloud, error) {
		return backend.WordCloud(ctx, id)
	})
}

func (t *wordsTab) Refetch() tea.Cmd           { return t.st.Refetch() }
func (t *wordsTab) SetSize(width, _ int)       { t.width = width }
func (t *wordsTab) Keys() []key.Binding        { return nil }
func (t *wordsTab) Update(msg tea.Msg) tea.Cmd { t.st.Update(msg); return nil }

func (t *wordsTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *wordsTab) View(f frame) string {
	return header("O Que Falam", t.opts.roster().Label(t.sel.Filter)) + renderFetch(t.st, f, t.renderWords)
}

func (t *wordsTab) renderWords(wc *api.WordCloud) string {
	if len(wc.Words) == 0 {
		return emptyView("Nenhum comentário coletado ainda.")
	}

	words := wc.Words
	if len(words) > topWords {
		words = words[:topWords]
	}
	maxCount := 0
	for _, w := range words {
		maxCount = max(maxCount, w.Count)
	}

	barWidth := max(min(t.width-40, 40), 10)

	var b strings.Builder
	b.WriteString(metricLine("Palavras únicas", format.Number(wc.TotalUniqueWords)) + "\n\n")
	for i, w := range words {
		b.WriteString(fmt.Sprintf("%2d. %-18s %s %s\n",
			i+1,
			format.Truncate(w.Word, 18),
			padRight(bar(float64(w.Count), float64(maxCount), barWidth), barWidth),
			Value.Render(format.Number(w.Count)),
		))
	}
	return b.String()
}
