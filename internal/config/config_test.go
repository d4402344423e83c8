package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("CAMPAIGN_API_URL", "")
	t.Setenv("CAMPAIGN_API_TIMEOUT", "")
	t.Setenv("CAMPAIGN_CANDIDATE", "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %s", cfg.API.BaseURL)
	}
	if cfg.UI.PageSize != 20 || cfg.UI.TimelineDays != 30 {
		t.Errorf("UI defaults = %+v", cfg.UI)
	}
	if len(cfg.Candidates) != 2 || cfg.DefaultCandidate != "all" {
		t.Errorf("candidates=%d default=%s", len(cfg.Candidates), cfg.DefaultCandidate)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CAMPAIGN_API_URL", "http://backend:9000")
	t.Setenv("CAMPAIGN_API_TIMEOUT", "1m")
	t.Setenv("CAMPAIGN_CANDIDATE", "sheila")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL != "http://backend:9000" {
		t.Errorf("BaseURL = %s", cfg.API.BaseURL)
	}
	if cfg.Timeout() != time.Minute {
		t.Errorf("Timeout() = %s", cfg.Timeout())
	}
	if cfg.DefaultCandidate != "sheila" {
		t.Errorf("DefaultCandidate = %s", cfg.DefaultCandidate)
	}
}

func TestInvalidTimeoutEnv(t *testing.T) {
	t.Setenv("CAMPAIGN_API_TIMEOUT", "soon")
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("CAMPAIGN_API_URL", "")
	t.Setenv("CAMPAIGN_API_TIMEOUT", "")
	t.Setenv("CAMPAIGN_CANDIDATE", "")

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.UI.TimelineDays = 7
	cfg.UI.ThemeView = "share"
	cfg.DefaultCandidate = "charlles"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.UI.TimelineDays != 7 || loaded.UI.ThemeView != "share" || loaded.DefaultCandidate != "charlles" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestNormalizeFixesInvalidValues(t *testing.T) {
	t.Setenv("CAMPAIGN_API_URL", "")
	t.Setenv("CAMPAIGN_API_TIMEOUT", "")
	t.Setenv("CAMPAIGN_CANDIDATE", "")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"api":{"base_url":""},"default_candidate":"nobody","ui":{"timeline_days":14,"theme_view":"pie"}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.API.BaseURL == "" || cfg.DefaultCandidate != "all" || cfg.UI.TimelineDays != 30 || cfg.UI.ThemeView != "bars" {
		t.Errorf("normalized = %+v", cfg)
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{"), 0600)
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CAMPAIGNWATCH_HOME", dir)
	if ConfigPath() != filepath.Join(dir, "config.json") {
		t.Errorf("ConfigPath() = %s", ConfigPath())
	}
	if filepath.Dir(EventsPath()) != filepath.Join(dir, "events") {
		t.Errorf("EventsPath() = %s", EventsPath())
	}
}

func TestHealthIntervalDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Monitor.HealthIntervalSeconds = 0
	if cfg.HealthInterval() != 0 {
		t.Error("zero interval should disable polling")
	}
}
