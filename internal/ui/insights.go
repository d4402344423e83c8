package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
)

const (
	insightsFailed = "Não foi possível gerar sugestões. Tente novamente."
	insightsEmpty  = "Dados insuficientes para gerar sugestões. Execute uma coleta de dados primeiro."
)

// insightsTab is the Estratégia IA page: AI suggestions ordered by priority.
type insightsTab struct {
	opts Options
	keys struct{ Generate key.Binding }

	st     *fetchstate.State[*api.SuggestionsResponse]
	sel    Selection
	vp     viewport.Model
	width  int
	height int
}

func newInsightsTab(opts Options) *insightsTab {
	t := &insightsTab{opts: opts, vp: viewport.New(80, 20)}
	t.keys.Generate = newBinding([]string{"g"}, "gerar novamente", "g")
	return t
}

func (t *insightsTab) Title() string { return "Estratégia IA" }

func (t *insightsTab) Mount(sel Selection) tea.Cmd {
	t.st = fetchstate.New[*api.SuggestionsResponse]("suggestions", t.opts.fetchOpts()...)
	t.vp.GotoTop()
	return t.SetSelection(sel)
}

func (t *insightsTab) SetSelection(sel Selection) tea.Cmd {
	t.sel = sel
	id, backend := sel.CandidateID, t.opts.Backend
	return t.st.Load([]any{id}, func(ctx context.Context) (*api.SuggestionsResponse, error) {
		return backend.Suggestions(ctx, id)
	})
}

func (t *insightsTab) Refetch() tea.Cmd { return t.st.Refetch() }

func (t *insightsTab) SetSize(width, height int) {
	t.width, t.height = width, height
	t.vp.Width = max(width-2, 20)
	t.vp.Height = max(height-8, 5)
}

func (t *insightsTab) Keys() []key.Binding { return []key.Binding{t.keys.Generate} }

func (t *insightsTab) Dispose() {
	if t.st != nil {
		t.st.Dispose()
	}
}

func (t *insightsTab) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(k, t.keys.Generate) {
			if t.st.Loading() {
				return nil
			}
			return t.st.Refetch()
		}
		var cmd tea.Cmd
		t.vp, cmd = t.vp.Update(k)
		return cmd
	}
	t.st.Update(msg)
	return nil
}

// View keeps the previous cards on screen while a regeneration runs.
func (t *insightsTab) View(f frame) string {
	out := header("Estratégia IA", t.opts.roster().Label(t.sel.Filter))
	data, ok := t.st.Data()

	switch {
	case t.st.Loading() && !ok:
		return out + HelpStyle.Render(f.spinner+" Gerando...")
	case t.st.Loading():
		out += Warning.Render(f.spinner+" Gerando...") + "\n\n"
	case t.st.Err() != nil:
		out += ErrorBox.Render(ErrorStyle.Render(insightsFailed)+"\n"+StatusBarKey.Render("g")+" Gerar novamente") + "\n\n"
		if !ok {
			return out
		}
	}

	if data == nil || len(data.Suggestions) == 0 {
		return out + emptyView(insightsEmpty)
	}
	t.vp.SetContent(t.renderSuggestions(data))
	return out + t.vp.View()
}

func (t *insightsTab) renderSuggestions(r *api.SuggestionsResponse) string {
	var b strings.Builder
	b.WriteString(Label.Render(fmt.Sprintf("Gerado em: %s | %s comentários analisados",
		format.Date(r.GeneratedAt.Ptr()), format.Number(r.DataSnapshot.TotalCommentsAnalyzed))) + "\n\n")

	if r.ResumoExecutivo != "" {
		b.WriteString(CardTitle.Render("Resumo executivo") + "\n")
		b.WriteString(r.ResumoExecutivo + "\n\n")
	}

	width := max(t.vp.Width-4, 30)
	for _, s := range campaign.SortByPriority(r.Suggestions) {
		b.WriteString(suggestionCard(s, width) + "\n")
	}
	return b.String()
}

func suggestionCard(s api.Suggestion, width int) string {
	lines := []string{priorityBadge(s.Priority) + " " + CardTitle.Render(s.Title)}
	if s.Categoria != "" {
		lines = append(lines, Label.Render(s.Categoria))
	}
	if s.Description != "" {
		lines = append(lines, s.Description)
	}
	if s.SupportingData != "" {
		lines = append(lines, Subtitle.Render("Dados: "+s.SupportingData))
	}
	if len(s.AcoesConcretas) > 0 {
		lines = append(lines, "", Label.Render("Ações concretas"))
		for _, a := range s.AcoesConcretas {
			lines = append(lines, "• "+a)
		}
	}
	for _, extra := range []struct{ label, text string }{
		{"Exemplo de post", s.ExemploPost},
		{"Roteiro de vídeo", s.RoteiroVideo},
		{"Público-alvo", s.PublicoAlvo},
		{"Para quem", s.ParaQuem},
		{"Impacto esperado", s.ImpactoEsperado},
	} {
		if extra.text != "" {
			lines = append(lines, "", Label.Render(extra.label), extra.text)
		}
	}
	return Card.Width(width).Render(strings.Join(lines, "\n"))
}

func priorityBadge(p string) string {
	switch p {
	case api.PriorityHigh:
		return Negative.Bold(true).Render("[ALTA]")
	case api.PriorityMedium:
		return Warning.Bold(true).Render("[MÉDIA]")
	default:
		return NeutralStyle.Render("[BAIXA]")
	}
}
