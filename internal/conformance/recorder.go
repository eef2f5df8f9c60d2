package conformance

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

// Result is one recorded check outcome.
type Result struct {
	Name   string
	Status Status
	Detail string
}

var (
	passLabel = color.New(color.FgGreen).Sprint("[PASS]")
	failLabel = color.New(color.FgRed).Sprint("[FAIL]")
	skipLabel = color.New(color.FgYellow).Sprint("[SKIP]")
)

// Recorder accumulates check outcomes and prints them as they happen. It is
// only ever touched by the single suite goroutine.
type Recorder struct {
	out     io.Writer
	passed  int
	failed  int
	skipped int
	results []Result
}

// NewRecorder creates a recorder writing progress to out.
func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{out: out}
}

// Pass records a passing check.
func (r *Recorder) Pass(name, detail string) {
	r.record(name, StatusPass, detail)
}

// Fail records a failing check.
func (r *Recorder) Fail(name, detail string) {
	r.record(name, StatusFail, detail)
}

// Skip records a skipped check. Skips never count toward pass/fail.
func (r *Recorder) Skip(name, detail string) {
	r.record(name, StatusSkip, detail)
}

func (r *Recorder) record(name string, status Status, detail string) {
	r.results = append(r.results, Result{Name: name, Status: status, Detail: detail})
	var label string
	switch status {
	case StatusPass:
		r.passed++
		label = passLabel
	case StatusFail:
		r.failed++
		label = failLabel
	case StatusSkip:
		r.skipped++
		label = skipLabel
	}
	line := fmt.Sprintf("  %s %s", label, name)
	if detail != "" {
		line += fmt.Sprintf("  — %s", detail)
	}
	fmt.Fprintln(r.out, line)
}

// Passed returns the number of passing checks so far.
func (r *Recorder) Passed() int { return r.passed }

// Failed returns the number of failing checks so far.
func (r *Recorder) Failed() int { return r.failed }

// Skipped returns the number of skipped checks so far.
func (r *Recorder) Skipped() int { return r.skipped }

// Results returns the ordered outcome log.
func (r *Recorder) Results() []Result { return r.results }

// Summary prints the closing count line.
func (r *Recorder) Summary(elapsed time.Duration) {
	rule := strings.Repeat("═", 60)
	fmt.Fprintf(r.out, "\n%s\n", rule)
	fmt.Fprintf(r.out, "  Results:  %d passed, %d failed, %d skipped\n", r.passed, r.failed, r.skipped)
	fmt.Fprintf(r.out, "  Time:     %.1fs\n", elapsed.Seconds())
	fmt.Fprintf(r.out, "%s\n\n", rule)
}

// dump pretty-prints a labelled payload for eyeballing generation output.
func (r *Recorder) dump(label string, v any) {
	rule := strings.Repeat("─", 60)
	fmt.Fprintf(r.out, "\n%s\n  %s\n%s\n", rule, label, rule)
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(r.out, "<unprintable: %v>\n", err)
		return
	}
	fmt.Fprintln(r.out, string(raw))
}
