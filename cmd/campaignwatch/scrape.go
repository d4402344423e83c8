package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/campaignwatch/internal/api"
	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/format"
	"github.com/abelbrown/campaignwatch/internal/logging"
	"github.com/abelbrown/campaignwatch/internal/store"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Trigger a collection run",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			st, err := store.Open(e.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			run, err := e.client.TriggerScraping(cmd.Context())
			rec := store.Run{RequestedAt: time.Now()}
			w := cmd.OutOrStdout()
			switch {
			case err == nil:
				rec.Status = store.RunStarted
				rec.RunID, rec.Message = run.RunID, run.Message
				fmt.Fprintln(w, "Coleta iniciada com sucesso!")
				if run.RunID != "" {
					fmt.Fprintf(w, "Execução: %s\n", run.RunID)
				}
			case api.IsConflict(err):
				rec.Status = store.RunAlreadyRunning
				rec.AlreadyRunning = true
				rec.Error = err.Error()
				fmt.Fprintln(w, "Coleta já em andamento.")
			default:
				rec.Status = store.RunFailed
				rec.Error = err.Error()
			}

			e.events.Emit(eventlog.Event{Level: eventlog.LevelInfo, Kind: eventlog.KindScrape, Comp: "main", Msg: rec.Status, Err: rec.Error})
			if _, recErr := st.RecordRun(rec); recErr != nil {
				logging.Warn("record scrape run", "error", recErr)
			}
			if rec.Status == store.RunFailed {
				return fmt.Errorf("iniciar coleta: %w", err)
			}
			return nil
		},
	}
}

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the local log of collection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			st, err := store.Open(e.dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			runs, err := st.Runs(limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "Nenhuma coleta registrada.")
				return nil
			}
			fmt.Fprintf(w, "%-17s %-16s %-38s %s\n", "QUANDO", "STATUS", "EXECUÇÃO", "DETALHE")
			for _, r := range runs {
				detail := r.Message
				if r.Error != "" {
					detail = r.Error
				}
				at := r.RequestedAt
				fmt.Fprintf(w, "%-17s %-16s %-38s %s\n", format.Date(&at), r.Status, r.RunID, format.Truncate(detail, 60))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}
