// Package runner drives `go test` over the e2e tests and reports the results.
//
// It builds the go test invocation from the run options, streams the
// test2json events through a reporter, and reruns failing tests up to the
// configured number of retries. Tests that pass only on a retry are
// reported as flaky.
package runner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/thompsonoloko-droid/automation-e2e/pkg/browser"
)

// Test packages.
const (
	UIPackage  = "./e2e/ui/..."
	APIPackage = "./e2e/api/..."
)

// BuildTag gates the e2e test packages.
const BuildTag = "e2e"

// CI defaults, applied when the flags were not given explicitly.
const (
	CIRetries = 1
	CIWorkers = 2
)

// Options describes one run.
type Options struct {
	Tags     []string // Tag filter (E2E_TAGS); empty runs everything
	Project  string   // Browser project (E2E_PROJECT)
	Reporter string   // list, json or summary
	Headed   bool     // Show the browser
	Grep     string   // go test -run pattern
	Workers  int      // Packages and parallel tests at once; 0 leaves go test's default
	Retries  int      // Reruns of failing tests
	UIOnly   bool     // Only the UI tests
	APIOnly  bool     // Only the API tests
	BaseURL  string   // Site under test (E2E_BASE_URL); empty keeps the configured one
	APIURL   string   // API root (E2E_API_URL); empty keeps the configured one
	Timeout  string   // go test -timeout, e.g. "20m"
	Verbose  bool     // Pass -v through (list reporter shows output of passing tests)
}

// DefaultOptions returns the options of a plain `e2e run`.
func DefaultOptions() Options {
	return Options{
		Reporter: ReporterList,
		Timeout:  "30m",
	}
}

// ApplyCI sets the CI defaults for the flags that were not set explicitly.
func (o *Options) ApplyCI(retriesSet, workersSet bool) {
	if !retriesSet {
		o.Retries = CIRetries
	}
	if !workersSet {
		o.Workers = CIWorkers
	}
}

// Validate checks the option combination.
func (o Options) Validate() error {
	if o.UIOnly && o.APIOnly {
		return fmt.Errorf("--ui and --api are mutually exclusive")
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	if o.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", o.Retries)
	}
	if !IsReporter(o.Reporter) {
		return fmt.Errorf("unknown reporter %q (known: %s)", o.Reporter, strings.Join(Reporters(), ", "))
	}
	if o.Project != "" {
		if _, err := browser.LookupProject(o.Project); err != nil {
			return err
		}
	}
	return nil
}

// Packages returns the test packages the run covers.
func (o Options) Packages() []string {
	switch {
	case o.UIOnly:
		return []string{UIPackage}
	case o.APIOnly:
		return []string{APIPackage}
	default:
		return []string{APIPackage, UIPackage}
	}
}

// Args builds the go test arguments for packages, restricted to the run
// pattern when it is not empty.
func (o Options) Args(run string, packages ...string) []string {
	args := []string{"test", "-tags", BuildTag, "-json", "-count=1"}
	if o.Timeout != "" {
		args = append(args, "-timeout", o.Timeout)
	}
	if o.Workers > 0 {
		w := strconv.Itoa(o.Workers)
		args = append(args, "-p", w, "-parallel", w)
	}
	if o.Verbose {
		args = append(args, "-v")
	}
	if run != "" {
		args = append(args, "-run", run)
	}
	return append(args, packages...)
}

// Environ returns the variables the test binaries read, as KEY=VALUE.
func (o Options) Environ() []string {
	var env []string
	if len(o.Tags) > 0 {
		env = append(env, "E2E_TAGS="+strings.Join(o.Tags, ","))
	}
	if o.Project != "" {
		env = append(env, "E2E_PROJECT="+o.Project)
	}
	if o.Headed {
		env = append(env, "E2E_HEADLESS=false")
	}
	if o.BaseURL != "" {
		env = append(env, "E2E_BASE_URL="+o.BaseURL)
	}
	if o.APIURL != "" {
		env = append(env, "E2E_API_URL="+o.APIURL)
	}
	return env
}

// RetryPattern matches exactly the given top-level tests.
func RetryPattern(tests []string) string {
	sorted := append([]string(nil), tests...)
	sort.Strings(sorted)
	return "^(" + strings.Join(sorted, "|") + ")$"
}
