// Package conformance drives the black-box check suite against a running LM
// API deployment. Checks execute strictly in order, one request at a time;
// every check converts its own errors into a FAIL record so a broken backend
// can never crash the suite.
package conformance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/soundprobe/soundprobe/internal/config"
	"github.com/soundprobe/soundprobe/pkg/lmclient"
)

// Suite is the ordered conformance check registry.
type Suite struct {
	client *lmclient.Client
	rec    *Recorder
	cfg    config.Runner
}

// New creates a suite against the given client. The recorder is shared so
// callers can read the outcome log after Run returns.
func New(client *lmclient.Client, rec *Recorder, cfg config.Runner) *Suite {
	return &Suite{client: client, rec: rec, cfg: cfg}
}

// Run executes the whole suite and returns true when no check failed. The
// health gate is a hard precondition: when it fails, no further check runs.
func (s *Suite) Run(ctx context.Context) bool {
	s.banner()
	start := time.Now()

	s.section("Health")
	if !s.healthGate(ctx) {
		fmt.Fprintln(s.rec.out, "\n  Server not reachable — aborting remaining tests.")
		return false
	}

	s.section("/lm/inspire")
	s.checkInspireBasic(ctx)
	s.checkInspireInstrumental(ctx)
	s.checkInspireLanguage(ctx)
	s.checkInspireMissingQuery(ctx)
	s.checkInspireSeedReproducibility(ctx)

	s.section("/lm/format")
	s.checkFormatBasic(ctx)
	s.checkFormatWithConstraints(ctx)
	s.checkFormatCaptionOnly(ctx)
	s.checkFormatMissingBoth(ctx)

	s.section("/lm/understand")
	s.checkUnderstandNoInput(ctx)
	s.checkUnderstandFileUpload(ctx)
	s.checkUnderstandAudioPath(ctx)

	s.rec.Summary(time.Since(start))
	return s.rec.Failed() == 0
}

func (s *Suite) banner() {
	auth := "no"
	if s.cfg.APIKey != "" {
		auth = "yes"
	}
	audio := s.cfg.AudioFile
	if audio == "" {
		audio = "(none — understand file tests will be skipped)"
	}
	rule := strings.Repeat("═", 60)
	fmt.Fprintf(s.rec.out, "\n%s\n", rule)
	fmt.Fprintln(s.rec.out, "  LM Endpoint Conformance")
	fmt.Fprintf(s.rec.out, "  Server: %s\n", s.client.BaseURL())
	fmt.Fprintf(s.rec.out, "  Auth:   %s\n", auth)
	fmt.Fprintf(s.rec.out, "  Audio:  %s\n", audio)
	fmt.Fprintf(s.rec.out, "%s\n", rule)
}

func (s *Suite) section(title string) {
	fmt.Fprintf(s.rec.out, "\n── %s ──\n", title)
}

// healthGate polls GET /health until it answers {code:200} or the health
// deadline passes. A reachable-but-slow server still clears the gate.
func (s *Suite) healthGate(ctx context.Context) bool {
	const name = "health: server reachable"

	gateCtx, cancel := context.WithTimeout(ctx, s.cfg.HealthTimeout)
	defer cancel()

	operation := func() (*lmclient.Response, error) {
		resp, err := s.client.Health(gateCtx)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != 200 || resp.Envelope.Code != 200 {
			return nil, fmt.Errorf("unexpected response: status=%d code=%d", resp.StatusCode, resp.Envelope.Code)
		}
		return resp, nil
	}

	_, err := backoff.Retry(gateCtx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.cfg.HealthTimeout),
	)
	if err != nil {
		s.rec.Fail(name, fmt.Sprintf("cannot connect to %s: %v", s.client.BaseURL(), err))
		return false
	}
	s.rec.Pass(name, "")
	return true
}

func (s *Suite) quickCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.QuickTimeout)
}

func (s *Suite) genCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.GenerateTimeout)
}

func (s *Suite) analyzeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.AnalyzeTimeout)
}
