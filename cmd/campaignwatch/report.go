package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/format"
)

// reportWords is how many word-cloud entries the report prints.
const reportWords = 10

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			h, err := e.client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "API:          %s (%s)\n", h.Status, e.client.BaseURL())
			fmt.Fprintf(w, "Banco:        %s\n", h.Database)
			fmt.Fprintf(w, "Agendador:    %s\n", h.Scheduler)
			fmt.Fprintf(w, "Última coleta: %s\n", format.Date(h.LastScrape.Ptr()))
			return nil
		},
	}
}

func newOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show per-candidate totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ov, err := e.client.Overview(cmd.Context())
			if err != nil {
				return fmt.Errorf("overview: %w", err)
			}
			printOverview(cmd.OutOrStdout(), e.cfg.Roster(), e.filter(), ov)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print overview, themes, words and comparison",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd)
		},
	}
}

func runReport(cmd *cobra.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	r, err := fetchReport(cmd.Context(), e.client)
	if err != nil {
		return err
	}
	r.print(cmd.OutOrStdout(), e.cfg.Roster(), e.filter())
	return nil
}

// reportBackend is the subset of api.Client the report reads.
type reportBackend interface {
	Overview(ctx context.Context) (*api.Overview, error)
	Themes(ctx context.Context, candidateID string) (*api.ThemesResponse, error)
	WordCloud(ctx context.Context, candidateID string) (*api.WordCloud, error)
	Comparison(ctx context.Context) (*api.Comparison, error)
}

type report struct {
	overview   *api.Overview
	themes     *api.ThemesResponse
	words      *api.WordCloud
	comparison *api.Comparison
}

// fetchReport loads the four report sections concurrently. The first
// failure cancels the rest.
func fetchReport(ctx context.Context, b reportBackend) (*report, error) {
	var r report
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.overview, err = b.Overview(ctx)
		return wrap("overview", err)
	})
	g.Go(func() (err error) {
		r.themes, err = b.Themes(ctx, "")
		return wrap("themes", err)
	})
	g.Go(func() (err error) {
		r.words, err = b.WordCloud(ctx, "")
		return wrap("wordcloud", err)
	})
	g.Go(func() (err error) {
		r.comparison, err = b.Comparison(ctx)
		return wrap("comparison", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &r, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (r *report) print(w io.Writer, roster campaign.Roster, f campaign.Filter) {
	printOverview(w, roster, f, r.overview)

	fmt.Fprintln(w, "\nTemas Quentes")
	if len(r.themes.Themes) == 0 {
		fmt.Fprintln(w, "  Nenhum tema identificado nos comentários.")
	}
	for _, th := range r.themes.Themes {
		fmt.Fprintf(w, "  %-24s %6s  %s%%\n", format.ThemeLabel(th.Theme), format.Number(th.Count), format.Decimal(th.Percentage, 1))
	}

	fmt.Fprintf(w, "\nO Que Falam (%s palavras únicas)\n", format.Number(r.words.TotalUniqueWords))
	words := r.words.Words
	if len(words) > reportWords {
		words = words[:reportWords]
	}
	for i, wd := range words {
		fmt.Fprintf(w, "  %2d. %-18s %s\n", i+1, wd.Word, format.Number(wd.Count))
	}

	fmt.Fprintln(w, "\nPerfil")
	for _, c := range r.comparison.Candidates {
		if !shown(roster, f, c.Username) {
			continue
		}
		fmt.Fprintf(w, "  %-24s tendência %-10s %s\n", name(c.CandidateMetrics), trendLabel(c.Trend.Direction), format.Signed(c.Trend.Delta))
		themes := make([]string, 0, len(c.TopThemes))
		for _, th := range c.TopThemes {
			themes = append(themes, format.ThemeLabel(th.Theme))
		}
		if len(themes) > 0 {
			fmt.Fprintf(w, "  %-24s temas: %s\n", "", strings.Join(themes, ", "))
		}
	}
}

func printOverview(w io.Writer, roster campaign.Roster, f campaign.Filter, ov *api.Overview) {
	fmt.Fprintln(w, "Painel")
	fmt.Fprintf(w, "  Última coleta:          %s\n", format.Date(ov.LastScrape.Ptr()))
	fmt.Fprintf(w, "  Comentários analisados: %s\n", format.Number(ov.TotalCommentsAnalyzed))
	if len(ov.Candidates) == 0 {
		fmt.Fprintln(w, "  Nenhum dado disponível. Inicie uma coleta de dados.")
		return
	}
	fmt.Fprintf(w, "\n  %-24s %6s %11s %11s  %s\n", "Candidato", "Posts", "Comentários", "Engajamento", "Sentimento")
	for _, m := range ov.Candidates {
		if !shown(roster, f, m.Username) {
			continue
		}
		fmt.Fprintf(w, "  %-24s %6s %11s %11s  %s %s\n", name(m),
			format.Number(m.TotalPosts), format.Number(m.TotalComments), format.Number(m.TotalEngagement),
			format.Score(m.AverageSentimentScore), campaign.Classify(m.AverageSentimentScore).Label())
	}
}

func shown(roster campaign.Roster, f campaign.Filter, username string) bool {
	if f == campaign.FilterAll {
		return true
	}
	c, ok := roster.Lookup(f)
	return !ok || c.Username == username
}

func name(m api.CandidateMetrics) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return "@" + m.Username
}

func trendLabel(direction string) string {
	switch direction {
	case api.TrendImproving:
		return "Melhorando"
	case api.TrendDeclining:
		return "Declinando"
	default:
		return "Estável"
	}
}
