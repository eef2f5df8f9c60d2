package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprobe/soundprobe/internal/store"
	"github.com/soundprobe/soundprobe/internal/store/migrations"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conformance runs from the history database",
		RunE:  showHistory,
	}
	cmd.Flags().String("history-db", "", "Path to the DuckDB history database")
	cmd.Flags().String("base-url", "", "Only show runs against this server")
	cmd.Flags().Bool("failed-only", false, "Only show runs with at least one failure")
	cmd.Flags().Uint64("limit", 20, "Maximum number of runs to show")
	return cmd
}

func showHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("history-db")
	if path == "" {
		path = cfg.Runner.HistoryDB
	}
	if path == "" {
		return errors.New("no history database configured; pass --history-db")
	}

	db, err := store.NewDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(cmd.Context(), db); err != nil {
		return err
	}

	baseURL, _ := cmd.Flags().GetString("base-url")
	failedOnly, _ := cmd.Flags().GetBool("failed-only")
	limit, _ := cmd.Flags().GetUint64("limit")

	runs, err := store.NewStore(db).Runs().List(cmd.Context(), store.ListParams{
		BaseURL:    baseURL,
		FailedOnly: failedOnly,
		Limit:      limit,
	})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-8s  %-24s  %s\n", "ID", "Started", "Elapsed", "Results", "Server")
	for _, run := range runs {
		fmt.Printf("%-36s  %-19s  %7.1fs  %-24s  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			float64(run.ElapsedMs)/1000,
			fmt.Sprintf("%dP/%dF/%dS", run.Passed, run.Failed, run.Skipped),
			run.BaseURL,
		)
	}
	return nil
}
