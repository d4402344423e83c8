package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
)

type stubBackend struct {
	calls      atomic.Int32
	themesErr  error
	sawCancel  atomic.Bool
	blockWords bool
}

func (s *stubBackend) Overview(context.Context) (*api.Overview, error) {
	s.calls.Add(1)
	return &api.Overview{
		Candidates: []api.CandidateMetrics{
			{CandidateID: "c1", Username: "charlles.evangelista", DisplayName: "Charlles Evangelista", TotalPosts: 1200, AverageSentimentScore: 0.2},
			{CandidateID: "s1", Username: "delegadasheila", DisplayName: "Delegada Sheila", TotalPosts: 3, AverageSentimentScore: -0.3},
		},
		TotalCommentsAnalyzed: 3542,
	}, nil
}

func (s *stubBackend) Themes(context.Context, string) (*api.ThemesResponse, error) {
	s.calls.Add(1)
	if s.themesErr != nil {
		return nil, s.themesErr
	}
	return &api.ThemesResponse{Themes: []api.Theme{{Theme: "saude_publica", Count: 7, Percentage: 35}}}, nil
}

func (s *stubBackend) WordCloud(ctx context.Context, _ string) (*api.WordCloud, error) {
	s.calls.Add(1)
	if s.blockWords {
		<-ctx.Done()
		s.sawCancel.Store(true)
		return nil, ctx.Err()
	}
	return &api.WordCloud{Words: []api.Word{{Word: "segurança", Count: 12}}, TotalUniqueWords: 1}, nil
}

func (s *stubBackend) Comparison(context.Context) (*api.Comparison, error) {
	s.calls.Add(1)
	return &api.Comparison{Candidates: []api.CandidateComparison{{
		CandidateMetrics: api.CandidateMetrics{CandidateID: "s1", Username: "delegadasheila", DisplayName: "Delegada Sheila"},
		TopThemes:        []api.TopTheme{{Theme: "seguranca", Count: 4}},
		Trend:            api.Trend{Direction: api.TrendImproving, Delta: 0.12},
	}}}, nil
}

func TestFetchReport(t *testing.T) {
	b := &stubBackend{}
	r, err := fetchReport(context.Background(), b)
	if err != nil {
		t.Fatalf("fetchReport: %v", err)
	}
	if got := b.calls.Load(); got != 4 {
		t.Errorf("calls = %d, want 4", got)
	}

	var buf bytes.Buffer
	r.print(&buf, campaign.DefaultCandidates(), campaign.FilterAll)
	out := buf.String()
	for _, want := range []string{
		"3.542",
		"1.200",
		"Charlles Evangelista",
		"Saude Publica",
		"segurança",
		"Melhorando",
		"+0.12",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFetchReportCancelsOnError(t *testing.T) {
	b := &stubBackend{themesErr: errors.New("boom"), blockWords: true}
	_, err := fetchReport(context.Background(), b)
	if err == nil || !strings.Contains(err.Error(), "themes: boom") {
		t.Fatalf("err = %v, want themes: boom", err)
	}
	if !b.sawCancel.Load() {
		t.Error("sibling fetch was not cancelled")
	}
}

func TestReportFiltersCandidate(t *testing.T) {
	b := &stubBackend{}
	r, err := fetchReport(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	r.print(&buf, campaign.DefaultCandidates(), "sheila")
	out := buf.String()
	if strings.Contains(out, "Charlles Evangelista") {
		t.Error("filtered report lists the other candidate")
	}
	if !strings.Contains(out, "Delegada Sheila") {
		t.Error("filtered report misses the selected candidate")
	}
}

func TestTrendLabel(t *testing.T) {
	tests := map[string]string{
		api.TrendImproving: "Melhorando",
		api.TrendDeclining: "Declinando",
		api.TrendStable:    "Estável",
		"":                 "Estável",
	}
	for in, want := range tests {
		if got := trendLabel(in); got != want {
			t.Errorf("trendLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	want := []string{"events", "health", "overview", "posts", "report", "runs", "scrape"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
