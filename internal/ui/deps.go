package ui

import (
	"context"
	"time"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/config"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
	"github.com/abelbrown/campaignwatch/internal/store"
)

// Backend is the analytics API as the dashboard uses it. *api.Client
// satisfies it.
type Backend interface {
	Overview(ctx context.Context) (*api.Overview, error)
	SentimentTimeline(ctx context.Context, p api.TimelineParams) (*api.SentimentTimeline, error)
	WordCloud(ctx context.Context, candidateID string) (*api.WordCloud, error)
	Themes(ctx context.Context, candidateID string) (*api.ThemesResponse, error)
	Posts(ctx context.Context, p api.PostsParams) (*api.PostsResponse, error)
	Comparison(ctx context.Context) (*api.Comparison, error)
	Competitive(ctx context.Context, ourUsername, competitorUsername string) (*api.Competitive, error)
	Suggestions(ctx context.Context, candidateID string) (*api.SuggestionsResponse, error)
	ContextualSentiment(ctx context.Context, postID string) (*api.ContextualSentiment, error)
	TriggerScraping(ctx context.Context) (*api.ScrapingRun, error)
}

// RunLog is the local persistence the dashboard writes to. *store.Store
// satisfies it. It may be nil.
type RunLog interface {
	RecordRun(r store.Run) (int64, error)
	SaveAnalysis(cs api.ContextualSentiment, at time.Time) error
	Analyses(postIDs []string) (map[string]store.Analysis, error)
}

// Options wires the App.
type Options struct {
	Backend Backend
	Runs    RunLog
	Config  *config.Config
	Events  *eventlog.Logger
	Ring    *eventlog.RingBuffer // optional, feeds the event overlay
	Ctx     context.Context
	Now     func() time.Time
}

func (o *Options) fill() {
	if o.Config == nil {
		o.Config = config.DefaultConfig()
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

func (o Options) fetchOpts() []fetchstate.Option {
	return []fetchstate.Option{
		fetchstate.WithContext(o.Ctx),
		fetchstate.WithEvents(o.Events),
	}
}

func (o Options) roster() campaign.Roster {
	return o.Config.Roster()
}

// Selection is the candidate filter passed into every tab, with the backend
// id it resolves to once the overview is loaded.
type Selection struct {
	Filter      campaign.Filter
	CandidateID string // empty: no candidate_id sent
}
