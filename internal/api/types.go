package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Records mirror the backend response schemas. Validation tags are checked
// on every decoded response before it reaches the UI.

// Suggestion priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// SentimentDistribution counts comments per polarity.
type SentimentDistribution struct {
	Positive int `json:"positive" validate:"gte=0"`
	Negative int `json:"negative" validate:"gte=0"`
	Neutral  int `json:"neutral" validate:"gte=0"`
}

// CandidateMetrics is the per-candidate aggregate from the overview.
type CandidateMetrics struct {
	CandidateID           string                `json:"candidate_id" validate:"required"`
	Username              string                `json:"username" validate:"required"`
	DisplayName           string                `json:"display_name"`
	TotalPosts            int                   `json:"total_posts" validate:"gte=0"`
	TotalComments         int                   `json:"total_comments" validate:"gte=0"`
	AverageSentimentScore float64               `json:"average_sentiment_score" validate:"gte=-1,lte=1"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	TotalEngagement       int                   `json:"total_engagement" validate:"gte=0"`
}

// Overview is the response of /api/v1/analytics/overview.
type Overview struct {
	Candidates            []CandidateMetrics `json:"candidates" validate:"dive"`
	LastScrape            *Timestamp         `json:"last_scrape"`
	TotalCommentsAnalyzed int                `json:"total_comments_analyzed" validate:"gte=0"`
}

// TimelinePoint is the average sentiment of one post.
type TimelinePoint struct {
	CandidateID           string    `json:"candidate_id"`
	CandidateUsername     string    `json:"candidate_username"`
	PostID                string    `json:"post_id" validate:"required"`
	PostURL               string    `json:"post_url"`
	PostCaption           string    `json:"post_caption"`
	PostedAt              Timestamp `json:"posted_at"`
	AverageSentimentScore float64   `json:"average_sentiment_score" validate:"gte=-1,lte=1"`
	CommentCount          int       `json:"comment_count" validate:"gte=0"`
}

// SentimentTimeline is the response of /api/v1/analytics/sentiment-timeline.
type SentimentTimeline struct {
	DataPoints []TimelinePoint `json:"data_points" validate:"dive"`
}

// Word is one word-cloud entry.
type Word struct {
	Word  string `json:"word" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

// WordCloud is the response of /api/v1/analytics/wordcloud.
type WordCloud struct {
	Words            []Word `json:"words" validate:"dive"`
	TotalUniqueWords int    `json:"total_unique_words" validate:"gte=0"`
}

// ThemeByCandidate is one candidate's share of a theme.
type ThemeByCandidate struct {
	CandidateID string `json:"candidate_id"`
	Username    string `json:"username"`
	Count       int    `json:"count" validate:"gte=0"`
}

// Theme is a theme-frequency entry.
type Theme struct {
	Theme       string             `json:"theme" validate:"required"`
	Count       int                `json:"count" validate:"gte=0"`
	Percentage  float64            `json:"percentage" validate:"gte=0"`
	ByCandidate []ThemeByCandidate `json:"by_candidate" validate:"dive"`
}

// CountFor returns the theme count for one candidate handle.
func (t Theme) CountFor(username string) int {
	for _, c := range t.ByCandidate {
		if c.Username == username {
			return c.Count
		}
	}
	return 0
}

// ThemesResponse is the response of /api/v1/analytics/themes.
type ThemesResponse struct {
	Themes []Theme `json:"themes" validate:"dive"`
}

// Post is one row of the posts ranking.
type Post struct {
	PostID                string    `json:"post_id" validate:"required"`
	CandidateUsername     string    `json:"candidate_username"`
	URL                   string    `json:"url"`
	Caption               string    `json:"caption"`
	PostedAt              Timestamp `json:"posted_at"`
	LikeCount             int       `json:"like_count" validate:"gte=0"`
	CommentCount          int       `json:"comment_count" validate:"gte=0"`
	PositiveRatio         float64   `json:"positive_ratio" validate:"gte=0,lte=1"`
	NegativeRatio         float64   `json:"negative_ratio" validate:"gte=0,lte=1"`
	AverageSentimentScore float64   `json:"average_sentiment_score" validate:"gte=-1,lte=1"`
}

// PostsResponse is one server-sorted page of posts.
type PostsResponse struct {
	Posts  []Post `json:"posts" validate:"dive"`
	Total  int    `json:"total" validate:"gte=0"`
	Limit  int    `json:"limit" validate:"gte=0"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// TopTheme is a theme count inside a comparison card.
type TopTheme struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// Trend compares recent against previous average sentiment.
type Trend struct {
	Direction   string  `json:"direction" validate:"omitempty,oneof=improving declining stable"`
	RecentAvg   float64 `json:"recent_avg"`
	PreviousAvg float64 `json:"previous_avg"`
	Delta       float64 `json:"delta"`
}

// CandidateComparison extends the overview metrics with themes and trend.
type CandidateComparison struct {
	CandidateMetrics
	TopThemes []TopTheme `json:"top_themes"`
	Trend     Trend      `json:"trend"`
}

// Comparison is the response of /api/v1/analytics/comparison.
type Comparison struct {
	Candidates []CandidateComparison `json:"candidates" validate:"dive"`
}

// CompetitiveMetrics describes one side of the competitive analysis.
type CompetitiveMetrics struct {
	Username              string                `json:"username" validate:"required"`
	DisplayName           string                `json:"display_name"`
	TotalPosts            int                   `json:"total_posts"`
	TotalComments         int                   `json:"total_comments"`
	TotalEngagement       int                   `json:"total_engagement"`
	AvgLikesPerPost       float64               `json:"avg_likes_per_post"`
	AvgCommentsPerPost    float64               `json:"avg_comments_per_post"`
	AverageSentimentScore float64               `json:"average_sentiment_score" validate:"gte=-1,lte=1"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	TopThemes             []TopTheme            `json:"top_themes"`
}

// Name prefers the display name over the handle.
func (m CompetitiveMetrics) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// Competitive is the response of /api/v1/analytics/competitive.
type Competitive struct {
	OurCandidate        *CompetitiveMetrics `json:"our_candidate"`
	Competitor          *CompetitiveMetrics `json:"competitor"`
	EngagementAdvantage float64             `json:"engagement_advantage"`
	Suggestions         []Suggestion        `json:"suggestions,omitempty" validate:"dive"`
}

// ContextualSentiment is the AI breakdown of one post's comments into
// support (apoio), opposition (contra) and neutral (neutro).
type ContextualSentiment struct {
	PostID         string  `json:"post_id"`
	CandidateName  string  `json:"candidate_name"`
	CaptionPreview string  `json:"caption_preview"`
	Apoio          int     `json:"apoio" validate:"gte=0"`
	Contra         int     `json:"contra" validate:"gte=0"`
	Neutro         int     `json:"neutro" validate:"gte=0"`
	ApoioPercent   float64 `json:"apoio_percent" validate:"gte=0,lte=100"`
	ContraPercent  float64 `json:"contra_percent" validate:"gte=0,lte=100"`
	NeutroPercent  float64 `json:"neutro_percent" validate:"gte=0,lte=100"`
}

// Suggestion is one AI-generated strategic recommendation.
type Suggestion struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	SupportingData  string   `json:"supporting_data"`
	Priority        string   `json:"priority" validate:"oneof=high medium low"`
	Categoria       string   `json:"categoria,omitempty"`
	AcoesConcretas  []string `json:"acoes_concretas,omitempty"`
	ExemploPost     string   `json:"exemplo_post,omitempty"`
	RoteiroVideo    string   `json:"roteiro_video,omitempty"`
	PublicoAlvo     string   `json:"publico_alvo,omitempty"`
	ParaQuem        string   `json:"para_quem,omitempty"`
	ImpactoEsperado string   `json:"impacto_esperado,omitempty"`
}

// DataSnapshot describes the data a suggestion batch was computed from.
type DataSnapshot struct {
	TotalCommentsAnalyzed int        `json:"total_comments_analyzed"`
	LastScrape            *Timestamp `json:"last_scrape"`
}

// SuggestionsResponse is the response of /api/v1/analytics/suggestions.
type SuggestionsResponse struct {
	Suggestions     []Suggestion `json:"suggestions" validate:"dive"`
	ResumoExecutivo string       `json:"resumo_executivo,omitempty"`
	GeneratedAt     Timestamp    `json:"generated_at"`
	DataSnapshot    DataSnapshot `json:"data_snapshot"`
}

// ScrapingRun is the response of /api/v1/scraping/run.
type ScrapingRun struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health is the response of /health.
type Health struct {
	Status     string     `json:"status" validate:"oneof=ok degraded"`
	Database   string     `json:"database"`
	Scheduler  string     `json:"scheduler"`
	LastScrape *Timestamp `json:"last_scrape"`
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO layout some
// backend fields use (interpreted as UTC).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized layout %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Ptr returns the wrapped time, or nil when unset.
func (t *Timestamp) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	tt := t.Time
	return &tt
}
