package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/campaignwatch/internal/config"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
)

func newEventsCmd() *cobra.Command {
	var (
		path    string
		tail    int
		kind    string
		level   string
		comp    string
		rid     string
		rawJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.EventsPath()
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run the dashboard first): %w", path, err)
			}
			defer f.Close()

			events, err := eventlog.Tail(f, tail, eventlog.Filter{
				KindPrefix: kind,
				MinLevel:   eventlog.Level(level),
				Comp:       comp,
				RequestID:  rid,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, e := range events {
				if rawJSON {
					line, err := json.Marshal(e)
					if err != nil {
						return err
					}
					fmt.Fprintln(w, string(line))
					continue
				}
				fmt.Fprintln(w, eventlog.Format(e))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Event log path (default today's log)")
	cmd.Flags().IntVar(&tail, "tail", 50, "Number of recent events to show")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by event kind prefix (e.g. 'api')")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&comp, "comp", "", "Filter by component name")
	cmd.Flags().StringVar(&rid, "rid", "", "Filter by request ID")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Output raw JSON lines")
	return cmd
}
