package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/soundprobe/soundprobe/internal/config"
	"github.com/soundprobe/soundprobe/internal/conformance"
	"github.com/soundprobe/soundprobe/internal/report"
	"github.com/soundprobe/soundprobe/internal/store"
	"github.com/soundprobe/soundprobe/internal/store/migrations"
	"github.com/soundprobe/soundprobe/pkg/lmclient"
)

func bindRunnerFlags(fs *pflag.FlagSet) {
	fs.String("base-url", "", "API server base URL (default: http://localhost:8001)")
	fs.String("api-key", "", "API key for authenticated requests")
	fs.String("audio-file", "", "Path to an audio file for /lm/understand tests (if omitted, file tests are skipped)")
	fs.String("report", "", "Write an xlsx report of the run to this path")
	fs.String("history-db", "", "Record the run in a DuckDB history database at this path")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the conformance suite against an LM API deployment",
		RunE:  runSuite,
	}
	bindRunnerFlags(cmd.Flags())
	return cmd
}

func runSuite(cmd *cobra.Command, args []string) error {
	applyRunnerFlags(cmd, &cfg.Runner)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []lmclient.Option{}
	if cfg.Runner.APIKey != "" {
		opts = append(opts, lmclient.WithBearerToken(cfg.Runner.APIKey))
	}
	client := lmclient.New(cfg.Runner.BaseURL, opts...)

	rec := conformance.NewRecorder(os.Stdout)
	suite := conformance.New(client, rec, cfg.Runner)

	started := time.Now()
	ok := suite.Run(ctx)
	elapsed := time.Since(started)

	if cfg.Runner.Report != "" {
		if err := report.Write(cfg.Runner.Report, report.Data{
			BaseURL:   cfg.Runner.BaseURL,
			StartedAt: started,
			Elapsed:   elapsed,
			Passed:    rec.Passed(),
			Failed:    rec.Failed(),
			Skipped:   rec.Skipped(),
			Results:   rec.Results(),
		}); err != nil {
			zap.S().Errorw("failed to write report", "path", cfg.Runner.Report, "error", err)
		} else {
			fmt.Printf("Report written to %s\n", cfg.Runner.Report)
		}
	}

	if cfg.Runner.HistoryDB != "" {
		if err := recordRun(ctx, started, elapsed, rec); err != nil {
			zap.S().Errorw("failed to record run history", "path", cfg.Runner.HistoryDB, "error", err)
		}
	}

	if !ok {
		return fmt.Errorf("%d check(s) failed", rec.Failed())
	}
	return nil
}

func applyRunnerFlags(cmd *cobra.Command, runner *config.Runner) {
	if s, _ := cmd.Flags().GetString("base-url"); s != "" {
		runner.BaseURL = s
	}
	if s, _ := cmd.Flags().GetString("api-key"); s != "" {
		runner.APIKey = s
	}
	if s, _ := cmd.Flags().GetString("audio-file"); s != "" {
		runner.AudioFile = s
	}
	if s, _ := cmd.Flags().GetString("report"); s != "" {
		runner.Report = s
	}
	if s, _ := cmd.Flags().GetString("history-db"); s != "" {
		runner.HistoryDB = s
	}
}

func recordRun(ctx context.Context, started time.Time, elapsed time.Duration, rec *conformance.Recorder) error {
	db, err := store.NewDB(cfg.Runner.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return err
	}

	run := &store.Run{
		ID:        uuid.New(),
		BaseURL:   cfg.Runner.BaseURL,
		StartedAt: started,
		ElapsedMs: elapsed.Milliseconds(),
		Passed:    rec.Passed(),
		Failed:    rec.Failed(),
		Skipped:   rec.Skipped(),
	}
	for i, res := range rec.Results() {
		run.Results = append(run.Results, store.CheckResult{
			Position: i,
			Name:     res.Name,
			Status:   string(res.Status),
			Detail:   res.Detail,
		})
	}
	return store.NewStore(db).Runs().Save(ctx, run)
}
