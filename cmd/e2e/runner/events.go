package runner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Event is one line of `go test -json` output.
type Event struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test,omitempty"`
	Elapsed float64   `json:"Elapsed,omitempty"`
	Output  string    `json:"Output,omitempty"`
}

// Test actions that end a test or package.
const (
	ActionPass = "pass"
	ActionFail = "fail"
	ActionSkip = "skip"
)

// Final reports whether e ends a test or a package.
func (e Event) Final() bool {
	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		return true
	}
	return false
}

// TopLevel reports whether e belongs to a top-level test.
func (e Event) TopLevel() bool {
	return e.Test != "" && !strings.Contains(e.Test, "/")
}

// Decode reads test2json events from r and calls fn for each. Lines that are
// not JSON (build output) are passed on as output events of the empty package.
func Decode(r io.Reader, fn func(Event)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if line[0] != '{' || json.Unmarshal(line, &ev) != nil {
			fn(Event{Action: "output", Output: string(line) + "\n"})
			continue
		}
		fn(ev)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read test output: %w", err)
	}
	return nil
}

// Outcome is the final state of one test across all attempts.
type Outcome struct {
	Package  string        `json:"package"`
	Test     string        `json:"test"`
	Status   string        `json:"status"` // pass, fail, skip or flaky
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Output   []string      `json:"output,omitempty"` // Output of the last failed attempt
}

// StatusFlaky marks a test that failed and then passed on a retry.
const StatusFlaky = "flaky"

// Results collects outcomes over all attempts of a run.
type Results struct {
	outcomes map[string]*Outcome
	order    []string
	output   map[string][]string
	pkgFail  map[string]bool
	pkgOut   map[string][]string
}

// NewResults returns empty Results.
func NewResults() *Results {
	return &Results{
		outcomes: make(map[string]*Outcome),
		output:   make(map[string][]string),
		pkgFail:  make(map[string]bool),
		pkgOut:   make(map[string][]string),
	}
}

func key(pkg, test string) string { return pkg + "\x00" + test }

// Add records one event.
func (r *Results) Add(ev Event) {
	if ev.Test == "" {
		r.addPackage(ev)
		return
	}
	k := key(ev.Package, ev.Test)
	switch {
	case ev.Action == "run":
		delete(r.output, k)
	case ev.Action == "output":
		r.output[k] = append(r.output[k], ev.Output)
	case ev.Final():
		o, ok := r.outcomes[k]
		if !ok {
			o = &Outcome{Package: ev.Package, Test: ev.Test}
			r.outcomes[k] = o
			r.order = append(r.order, k)
		}
		o.Attempts++
		o.Elapsed = time.Duration(ev.Elapsed * float64(time.Second))
		switch {
		case ev.Action == ActionPass && (o.Status == ActionFail || o.Status == StatusFlaky):
			o.Status = StatusFlaky
		default:
			o.Status = ev.Action
		}
		if ev.Action == ActionFail {
			o.Output = r.output[k]
		}
		delete(r.output, k)
	}
}

func (r *Results) addPackage(ev Event) {
	switch ev.Action {
	case "start":
		delete(r.pkgOut, ev.Package)
	case "output":
		r.pkgOut[ev.Package] = append(r.pkgOut[ev.Package], ev.Output)
	case ActionFail:
		r.pkgFail[ev.Package] = true
	case ActionPass, ActionSkip:
		r.pkgFail[ev.Package] = false
	}
}

// Outcomes returns the recorded outcomes in first-seen order.
func (r *Results) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, *r.outcomes[k])
	}
	return out
}

// FailedTests returns the failing top-level tests of every package.
func (r *Results) FailedTests() map[string][]string {
	failed := make(map[string][]string)
	for _, k := range r.order {
		o := r.outcomes[k]
		if o.Status == ActionFail && !strings.Contains(o.Test, "/") {
			failed[o.Package] = append(failed[o.Package], o.Test)
		}
	}
	return failed
}

// BrokenPackages returns packages that failed without a failing test, such
// as build failures or a failing TestMain.
func (r *Results) BrokenPackages() []string {
	failed := r.FailedTests()
	var broken []string
	for pkg, bad := range r.pkgFail {
		if bad && len(failed[pkg]) == 0 {
			broken = append(broken, pkg)
		}
	}
	sort.Strings(broken)
	return broken
}

// PackageOutput returns the package-level output of the last attempt.
func (r *Results) PackageOutput(pkg string) []string {
	return r.pkgOut[pkg]
}

// Summary counts top-level outcomes.
type Summary struct {
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Flaky    int           `json:"flaky"`
	Broken   []string      `json:"broken_packages,omitempty"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
}

// Total is the number of top-level tests.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Skipped + s.Flaky
}

// OK reports whether the run passed. Flaky tests do not fail it.
func (s Summary) OK() bool {
	return s.Failed == 0 && len(s.Broken) == 0
}

// Status is PASS or FAIL.
func (s Summary) Status() string {
	return checkMark(s.OK())
}

// Summary counts the top-level outcomes.
func (r *Results) Summary() Summary {
	var s Summary
	for _, k := range r.order {
		o := r.outcomes[k]
		if strings.Contains(o.Test, "/") {
			continue
		}
		switch o.Status {
		case ActionPass:
			s.Passed++
		case ActionFail:
			s.Failed++
		case ActionSkip:
			s.Skipped++
		case StatusFlaky:
			s.Flaky++
		}
	}
	s.Broken = r.BrokenPackages()
	return s
}
