// Package ui provides the Bubble Tea dashboard for campaignwatch.
package ui

import (
	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/store"
)

// Fetch results arrive as fetchstate.Result and pager.MoreResult messages;
// the types below cover the one-shot actions.

// ScrapeFinished is sent when a collection trigger returns.
type ScrapeFinished struct {
	Run *api.ScrapingRun
	Err error
}

// AnalysisFinished is sent when a contextual analysis returns.
type AnalysisFinished struct {
	PostID string
	Result *api.ContextualSentiment
	Err    error
}

// AnalysesLoaded carries stored analyses for the visible posts.
type AnalysesLoaded struct {
	ByPost map[string]store.Analysis
	Err    error
}
