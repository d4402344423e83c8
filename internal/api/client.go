// Package api is the client for the campaign analytics backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/campaignwatch/internal/eventlog"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const (
	pathHealth      = "/health"
	pathOverview    = "/api/v1/analytics/overview"
	pathTimeline    = "/api/v1/analytics/sentiment-timeline"
	pathWordCloud   = "/api/v1/analytics/wordcloud"
	pathThemes      = "/api/v1/analytics/themes"
	pathPosts       = "/api/v1/analytics/posts"
	pathComparison  = "/api/v1/analytics/comparison"
	pathCompetitive = "/api/v1/analytics/competitive"
	pathSuggestions = "/api/v1/analytics/suggestions"
	pathContextual  = "/api/v1/analysis/sentiment/contextual/"
	pathScrapingRun = "/api/v1/scraping/run"
	requestIDHeader = "X-Request-ID"
	defaultTimeout  = 30 * time.Second
	componentName   = "api"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	Events            *eventlog.Logger
	HTTPClient        *http.Client
}

// Client talks JSON to the analytics backend. Safe for concurrent use.
// Requests are never retried.
type Client struct {
	http     *resty.Client
	limiter  *rate.Limiter
	events   *eventlog.Logger
	validate *validator.Validate
	baseURL  string
}

// New builds a Client. The base URL must be absolute http(s).
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL must have a host, got: %s", base)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		http:     rc,
		limiter:  rate.NewLimiter(limit, 1),
		events:   opts.Events,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		baseURL:  base,
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks the backend and its dependencies.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	return call[Health](ctx, c, http.MethodGet, pathHealth, nil, nil)
}

// Overview returns per-candidate totals and the last collection time.
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	return call[Overview](ctx, c, http.MethodGet, pathOverview, nil, nil)
}

// TimelineParams filters the sentiment timeline. Empty fields are omitted.
type TimelineParams struct {
	CandidateID string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
}

// SentimentTimeline returns per-post average sentiment over time.
func (c *Client) SentimentTimeline(ctx context.Context, p TimelineParams) (*SentimentTimeline, error) {
	q := query{}.
		set("candidate_id", p.CandidateID).
		set("start_date", p.StartDate).
		set("end_date", p.EndDate)
	return call[SentimentTimeline](ctx, c, http.MethodGet, pathTimeline, q, nil)
}

// WordCloud returns the most frequent comment words.
func (c *Client) WordCloud(ctx context.Context, candidateID string) (*WordCloud, error) {
	return call[WordCloud](ctx, c, http.MethodGet, pathWordCloud, query{}.set("candidate_id", candidateID), nil)
}

// Themes returns theme frequencies with per-candidate counts.
func (c *Client) Themes(ctx context.Context, candidateID string) (*ThemesResponse, error) {
	return call[ThemesResponse](ctx, c, http.MethodGet, pathThemes, query{}.set("candidate_id", candidateID), nil)
}

// PostsParams selects one server-sorted page of posts.
type PostsParams struct {
	CandidateID string
	SortBy      string
	Order       string // "asc" or "desc"
	Limit       int    // omitted when zero
	Offset      int
}

// Posts returns one page of the posts ranking.
func (c *Client) Posts(ctx context.Context, p PostsParams) (*PostsResponse, error) {
	q := query{}.
		set("candidate_id", p.CandidateID).
		set("sort_by", p.SortBy).
		set("order", p.Order)
	if p.Limit > 0 {
		q = q.set("limit", strconv.Itoa(p.Limit))
	}
	q = q.set("offset", strconv.Itoa(p.Offset))
	return call[PostsResponse](ctx, c, http.MethodGet, pathPosts, q, nil)
}

// Comparison returns side-by-side candidate cards.
func (c *Client) Comparison(ctx context.Context) (*Comparison, error) {
	return call[Comparison](ctx, c, http.MethodGet, pathComparison, nil, nil)
}

// Competitive compares our candidate against a competitor profile.
func (c *Client) Competitive(ctx context.Context, ourUsername, competitorUsername string) (*Competitive, error) {
	q := query{}.
		set("our_username", ourUsername).
		set("competitor_username", competitorUsername)
	return call[Competitive](ctx, c, http.MethodGet, pathCompetitive, q, nil)
}

// Suggestions asks the backend to generate strategy suggestions. An empty
// candidateID sends an empty object.
func (c *Client) Suggestions(ctx context.Context, candidateID string) (*SuggestionsResponse, error) {
	body := map[string]string{}
	if candidateID != "" {
		body["candidate_id"] = candidateID
	}
	return call[SuggestionsResponse](ctx, c, http.MethodPost, pathSuggestions, nil, body)
}

// ContextualSentiment runs the support/opposition analysis for one post.
func (c *Client) ContextualSentiment(ctx context.Context, postID string) (*ContextualSentiment, error) {
	if postID == "" {
		return nil, fmt.Errorf("contextual sentiment: empty post id")
	}
	return call[ContextualSentiment](ctx, c, http.MethodPost, pathContextual+url.PathEscape(postID), nil, nil)
}

// TriggerScraping starts a collection run. A run already in progress
// yields a StatusError for which IsConflict is true.
func (c *Client) TriggerScraping(ctx context.Context) (*ScrapingRun, error) {
	return call[ScrapingRun](ctx, c, http.MethodPost, pathScrapingRun, nil, nil)
}

// query collects non-empty query parameters.
type query map[string]string

func (q query) set(key, value string) query {
	if value == "" {
		return q
	}
	if q == nil {
		q = query{}
	}
	q[key] = value
	return q
}

func call[T any](ctx context.Context, c *Client, method, path string, q query, body any) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	rid := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, rid).
		SetQueryParams(q)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	dur := time.Since(start)

	ev := eventlog.Event{
		Kind:      eventlog.KindRequest,
		Level:     eventlog.LevelInfo,
		Comp:      componentName,
		RequestID: rid,
		Method:    method,
		Path:      path,
		Dur:       dur,
	}

	fail := func(err error) (*T, error) {
		ev.Kind = eventlog.KindRequestError
		ev.Level = eventlog.LevelError
		ev.Err = err.Error()
		c.events.Emit(ev)
		return nil, err
	}

	if err != nil {
		return fail(fmt.Errorf("%s %s: %w", method, path, err))
	}
	ev.Status = resp.StatusCode()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fail(newStatusError(resp.StatusCode(), resp.Status(), resp.Body()))
	}

	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fail(fmt.Errorf("decode %s: %w", path, err))
	}
	if err := c.validate.Struct(&out); err != nil {
		return fail(fmt.Errorf("invalid %s response: %w", path, err))
	}

	c.events.Emit(ev)
	return &out, nil
}
