package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/campaignwatch/internal/campaign"
)

// Config is the persistent application configuration
type Config struct {
	// Backend analytics API
	API APIConfig `json:"api"`

	// Monitored profiles, in filter cycling order
	Candidates []campaign.Candidate `json:"candidates"`

	// Filter selected at startup ("all" or a candidate key)
	DefaultCandidate string `json:"default_candidate"`

	// Profiles compared on the competitive tab
	Competitive CompetitiveConfig `json:"competitive"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// Background health polling
	Monitor MonitorConfig `json:"monitor"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"` // 0 = unlimited
}

// CompetitiveConfig names the two sides of the competitive analysis
type CompetitiveConfig struct {
	OurUsername        string `json:"our_username"`
	CompetitorUsername string `json:"competitor_username"`
	CompetitorDisplay  string `json:"competitor_display"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	PageSize     int    `json:"page_size"`
	TimelineDays int    `json:"timeline_days"` // 7, 30 or 90
	ThemeView    string `json:"theme_view"`    // "bars" or "share"
}

// MonitorConfig controls the health poller
type MonitorConfig struct {
	HealthIntervalSeconds int `json:"health_interval_seconds"` // 0 disables polling
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			TimeoutSeconds:    30,
			RequestsPerSecond: 10,
		},
		Candidates:       campaign.DefaultCandidates(),
		DefaultCandidate: string(campaign.FilterAll),
		Competitive: CompetitiveConfig{
			OurUsername:        "delegadasheila",
			CompetitorUsername: "delegadaione",
			CompetitorDisplay:  "Delegada Ione",
		},
		UI: UIConfig{
			PageSize:     20,
			TimelineDays: 30,
			ThemeView:    "bars",
		},
		Monitor: MonitorConfig{
			HealthIntervalSeconds: 30,
		},
	}
}

// Dir returns the application data directory. CAMPAIGNWATCH_HOME overrides
// the default ~/.campaignwatch.
func Dir() string {
	if dir := os.Getenv("CAMPAIGNWATCH_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".campaignwatch")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// DBPath returns the path to the local run log database
func DBPath() string {
	return filepath.Join(Dir(), "campaignwatch.db")
}

// EventsPath returns the path of today's JSONL event log
func EventsPath() string {
	return filepath.Join(Dir(), "events", fmt.Sprintf("events-%s.jsonl", time.Now().Format("2006-01-02")))
}

// Load reads config from disk, or returns defaults. Environment overrides
// are applied either way.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides settings from CAMPAIGN_API_URL, CAMPAIGN_API_TIMEOUT
// and CAMPAIGN_CANDIDATE.
func (c *Config) ApplyEnv() error {
	if url := os.Getenv("CAMPAIGN_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if raw := os.Getenv("CAMPAIGN_API_TIMEOUT"); raw != "" {
		secs, err := parseSeconds(raw)
		if err != nil {
			return fmt.Errorf("CAMPAIGN_API_TIMEOUT: %w", err)
		}
		c.API.TimeoutSeconds = secs
	}
	if cand := os.Getenv("CAMPAIGN_CANDIDATE"); cand != "" {
		c.DefaultCandidate = cand
	}
	return nil
}

// parseSeconds accepts "15" or a duration like "15s" / "1m".
func parseSeconds(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", n)
		}
		return n, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < time.Second {
		return 0, fmt.Errorf("must be at least 1s, got %s", d)
	}
	return int(d / time.Second), nil
}

// normalize fills zero values left by a partial config file.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}
	if len(c.Candidates) == 0 {
		c.Candidates = def.Candidates
	}
	if !c.Roster().Valid(campaign.Filter(c.DefaultCandidate)) {
		c.DefaultCandidate = string(campaign.FilterAll)
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = def.UI.PageSize
	}
	switch c.UI.TimelineDays {
	case 7, 30, 90:
	default:
		c.UI.TimelineDays = def.UI.TimelineDays
	}
	if c.UI.ThemeView != "bars" && c.UI.ThemeView != "share" {
		c.UI.ThemeView = def.UI.ThemeView
	}
	if c.Competitive.OurUsername == "" {
		c.Competitive.OurUsername = def.Competitive.OurUsername
	}
	if c.Competitive.CompetitorUsername == "" {
		c.Competitive.CompetitorUsername = def.Competitive.CompetitorUsername
	}
}

// Roster returns the configured candidates.
func (c *Config) Roster() campaign.Roster {
	return campaign.Roster(c.Candidates)
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// HealthInterval returns the health polling interval, zero when disabled.
func (c *Config) HealthInterval() time.Duration {
	if c.Monitor.HealthIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Monitor.HealthIntervalSeconds) * time.Second
}
