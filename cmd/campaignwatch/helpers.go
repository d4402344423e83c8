package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/campaign"
	"github.com/abelbrown/campaignwatch/internal/config"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/logging"
)

// env is what every subcommand runs against.
type env struct {
	cfg     *config.Config
	client  *api.Client
	events  *eventlog.Logger
	dbPath  string
	logFile *os.File
}

// setup loads config, applies global flags and opens the client, the
// file logger and the event log.
func setup(cmd *cobra.Command) (*env, error) {
	path := configPath
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if candidate != "" {
		if !cfg.Roster().Valid(campaign.Filter(candidate)) {
			return nil, fmt.Errorf("unknown candidate %q", candidate)
		}
		cfg.DefaultCandidate = candidate
	}

	if err := logging.Init(config.Dir(), logging.ParseLevel(logLevel)); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, dbPath: config.DBPath()}
	e.events, e.logFile = openEvents(config.EventsPath())

	e.client, err = api.New(api.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Events:            e.events,
	})
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

// openEvents appends to the JSONL event log, or discards events when the
// file cannot be opened.
func openEvents(path string) (*eventlog.Logger, *os.File) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logging.Warn("event log disabled", "error", err)
		return eventlog.Discard(), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("event log disabled", "error", err)
		return eventlog.Discard(), nil
	}
	return eventlog.New(f), f
}

func (e *env) close() {
	e.events.Close()
	if e.logFile != nil {
		e.logFile.Close()
	}
	logging.Close()
}

func (e *env) filter() campaign.Filter {
	return campaign.Filter(e.cfg.DefaultCandidate)
}

// resolveCandidate maps the active filter onto a backend id. "all" and
// candidates without metrics resolve to "".
func (e *env) resolveCandidate(ctx context.Context) (string, error) {
	f := e.filter()
	if f == campaign.FilterAll {
		return "", nil
	}
	ov, err := e.client.Overview(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve candidate: %w", err)
	}
	id, _ := e.cfg.Roster().ResolveID(f, ov.Candidates)
	return id, nil
}
