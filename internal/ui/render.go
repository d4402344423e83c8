package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/format"
)

const (
	loadErrorTitle = "Não foi possível carregar os dados."
	retryHint      = "Tentar novamente (r)"
)

// frame is the space and spinner a tab renders into.
type frame struct {
	width   int
	height  int
	spinner string
}

func loadingView(f frame) string {
	return HelpStyle.Render(f.spinner + " Carregando...")
}

func errorView(err error, width int) string {
	lines := []string{ErrorStyle.Render(loadErrorTitle)}
	if err != nil {
		lines = append(lines, format.Truncate(err.Error(), max(width-6, 20)))
	}
	lines = append(lines, StatusBarKey.Render(retryHint))
	return ErrorBox.Render(strings.Join(lines, "\n"))
}

func emptyView(msg string) string {
	return HelpStyle.Render(msg)
}

// renderFetch picks the loading, error or data view of a fetch.
func renderFetch[T any](st *fetchstate.State[T], f frame, render func(T) string) string {
	if st == nil {
		return loadingView(f)
	}
	if st.Loading() {
		return loadingView(f)
	}
	if st.Err() != nil {
		return errorView(st.Err(), f.width)
	}
	data, ok := st.Data()
	if !ok {
		return loadingView(f)
	}
	return render(data)
}

func header(title, subtitle string) string {
	if subtitle == "" {
		return Title.Render(title) + "\n\n"
	}
	return Title.Render(title) + "\n" + Subtitle.Render(subtitle) + "\n\n"
}

func metricLine(label, value string) string {
	return Label.Render(fmt.Sprintf("%-22s", label)) + Value.Render(value)
}

func sentimentText(score float64) string {
	p := campaign.Classify(score)
	text := format.Score(score) + " " + p.Label()
	switch p {
	case campaign.Positive:
		return Positive.Render(text)
	case campaign.Negative:
		return Negative.Render(text)
	default:
		return NeutralStyle.Render(text)
	}
}

func bar(value, maxValue float64, width int) string {
	return BarStyle.Render(format.Bar(value, maxValue, width))
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
