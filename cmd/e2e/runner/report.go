package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reporter names.
const (
	ReporterList    = "list"
	ReporterJSON    = "json"
	ReporterSummary = "summary"
)

// JSONReportFile is the json reporter's output, relative to the reports
// directory.
const JSONReportFile = "results.json"

var reporterHelp = map[string]string{
	ReporterList:    "one line per test as it finishes, failure output and a summary",
	ReporterJSON:    "writes " + JSONReportFile + " to the reports directory and prints the summary",
	ReporterSummary: "only the final summary",
}

// Reporters lists the reporter names.
func Reporters() []string {
	return []string{ReporterList, ReporterJSON, ReporterSummary}
}

// ReporterHelp describes a reporter.
func ReporterHelp(name string) string {
	return reporterHelp[name]
}

// IsReporter reports whether name is a known reporter.
func IsReporter(name string) bool {
	_, ok := reporterHelp[name]
	return ok
}

// Reporter receives the events of every attempt and the final results.
type Reporter interface {
	Event(ev Event)
	Finish(s Summary, outcomes []Outcome) error
}

// NewReporter returns the named reporter writing to w. reportsDir is where
// the json reporter puts its file.
func NewReporter(name string, w io.Writer, reportsDir string) (Reporter, error) {
	switch name {
	case ReporterList:
		return &listReporter{w: w}, nil
	case ReporterJSON:
		return &jsonReporter{w: w, path: filepath.Join(reportsDir, JSONReportFile)}, nil
	case ReporterSummary:
		return &summaryReporter{w: w}, nil
	}
	return nil, fmt.Errorf("unknown reporter %q", name)
}

type listReporter struct {
	w io.Writer
}

func (l *listReporter) Event(ev Event) {
	switch {
	case ev.Test == "" && ev.Action == "output" && ev.Package == "":
		// Build output.
		fmt.Fprint(l.w, ev.Output)
	case ev.Test != "" && ev.Final():
		indent := strings.Repeat("  ", strings.Count(ev.Test, "/"))
		fmt.Fprintf(l.w, "  %s%-4s %s %s (%.2fs)\n",
			indent, strings.ToUpper(ev.Action), shortPackage(ev.Package), ev.Test, ev.Elapsed)
	}
}

func (l *listReporter) Finish(s Summary, outcomes []Outcome) error {
	for _, o := range outcomes {
		if o.Status != ActionFail || strings.Contains(o.Test, "/") {
			continue
		}
		fmt.Fprintf(l.w, "\n--- %s %s\n", shortPackage(o.Package), o.Test)
		for _, line := range o.Output {
			fmt.Fprint(l.w, line)
		}
	}
	printSummary(l.w, s, outcomes)
	return nil
}

type jsonReporter struct {
	w    io.Writer
	path string
}

func (j *jsonReporter) Event(Event) {}

// jsonReport is the file the json reporter writes.
type jsonReport struct {
	Status  string    `json:"status"`
	Summary Summary   `json:"summary"`
	Tests   []Outcome `json:"tests"`
}

func (j *jsonReporter) Finish(s Summary, outcomes []Outcome) error {
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	data, err := json.MarshalIndent(jsonReport{Status: s.Status(), Summary: s, Tests: outcomes}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	if err := os.WriteFile(j.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printSummary(j.w, s, outcomes)
	fmt.Fprintf(j.w, "Report:            %s\n", j.path)
	return nil
}

type summaryReporter struct {
	w io.Writer
}

func (r *summaryReporter) Event(Event) {}

func (r *summaryReporter) Finish(s Summary, outcomes []Outcome) error {
	printSummary(r.w, s, outcomes)
	return nil
}

// printSummary writes the end-of-run block shared by every reporter.
func printSummary(w io.Writer, s Summary, outcomes []Outcome) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "E2E Run Complete\n")
	fmt.Fprintf(w, "================\n")
	fmt.Fprintf(w, "Duration:          %v\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Attempts:          %d\n", s.Attempts)
	fmt.Fprintf(w, "Tests:             %d\n", s.Total())
	fmt.Fprintf(w, "Passed:            %d\n", s.Passed)
	fmt.Fprintf(w, "Failed:            %d\n", s.Failed)
	fmt.Fprintf(w, "Flaky:             %d\n", s.Flaky)
	fmt.Fprintf(w, "Skipped:           %d\n", s.Skipped)
	fmt.Fprintf(w, "Status:            %s\n", s.Status())

	if s.Flaky > 0 || s.Failed > 0 {
		fmt.Fprintf(w, "\n")
		for _, o := range outcomes {
			if strings.Contains(o.Test, "/") {
				continue
			}
			switch o.Status {
			case ActionFail:
				fmt.Fprintf(w, "  - %s %s: %s\n", shortPackage(o.Package), o.Test, checkMark(false))
			case StatusFlaky:
				fmt.Fprintf(w, "  - %s %s: flaky after %d attempts\n", shortPackage(o.Package), o.Test, o.Attempts)
			}
		}
	}
	for _, pkg := range s.Broken {
		fmt.Fprintf(w, "  - %s: package failed before its tests ran\n", pkg)
	}
}

// shortPackage trims the module path off an import path.
func shortPackage(pkg string) string {
	if i := strings.Index(pkg, "/e2e/"); i >= 0 {
		return pkg[i+1:]
	}
	return pkg
}

func checkMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
