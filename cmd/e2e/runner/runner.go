package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/internal/clock"
	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/suite"
)

// Executor runs `go args...` in dir with env, writing stdout to w. A non-zero
// exit is reported as an error implementing ExitCode() int.
type Executor func(ctx context.Context, dir string, env, args []string, w io.Writer) error

// GoExecutor runs the go tool found on PATH. Its stderr goes to stderr.
func GoExecutor(stderr io.Writer) Executor {
	return func(ctx context.Context, dir string, env, args []string, w io.Writer) error {
		cmd := exec.CommandContext(ctx, "go", args...)
		cmd.Dir = dir
		cmd.Env = env
		cmd.Stdout = w
		cmd.Stderr = stderr
		return cmd.Run()
	}
}

type exitCoder interface {
	ExitCode() int
}

// Runner drives go test over the e2e packages.
type Runner struct {
	Dir      string   // Module root; go test runs here
	Exec     Executor // Default: GoExecutor(os.Stderr)
	Reporter Reporter
	Clock    clock.Clock
	Log      *zap.Logger
	Environ  []string // Base environment (default: os.Environ())
}

// Run executes the tests, rerunning failed tests up to opts.Retries times.
// The returned error covers problems running go test itself; test failures
// are reported through the Summary.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	if err := opts.Validate(); err != nil {
		return Summary{}, err
	}
	if r.Reporter == nil {
		return Summary{}, errors.New("runner: no reporter")
	}
	exe := r.Exec
	if exe == nil {
		exe = GoExecutor(os.Stderr)
	}
	clk := r.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	log := logging.OrNop(r.Log)
	base := r.Environ
	if base == nil {
		base = os.Environ()
	}
	env := append(append(append([]string(nil), base...), opts.Environ()...), suite.EnvNoClean+"=1")

	start := clk.Now()
	results := NewResults()
	var exitErr error

	attempt := func(args []string) error {
		log.Debug("go test", zap.Strings("args", args))
		err := r.attempt(ctx, exe, env, args, results)
		var ec exitCoder
		if errors.As(err, &ec) {
			exitErr = fmt.Errorf("go test exited with code %d", ec.ExitCode())
			return nil
		}
		return err
	}

	rounds := 1
	if err := attempt(opts.Args(opts.Grep, opts.Packages()...)); err != nil {
		return Summary{}, err
	}

	for retry := 1; retry <= opts.Retries; retry++ {
		failed := results.FailedTests()
		broken := results.BrokenPackages()
		if len(failed) == 0 && len(broken) == 0 {
			break
		}
		rounds++
		log.Info("retrying failed tests",
			zap.Int("retry", retry),
			zap.Int("packages", len(failed)+len(broken)))

		exitErr = nil
		for _, pkg := range sortedKeys(failed) {
			if err := attempt(opts.Args(RetryPattern(failed[pkg]), pkg)); err != nil {
				return Summary{}, err
			}
		}
		for _, pkg := range broken {
			if err := attempt(opts.Args(opts.Grep, pkg)); err != nil {
				return Summary{}, err
			}
		}
	}

	s := results.Summary()
	s.Attempts = rounds
	s.Duration = clk.Now().Sub(start)
	if exitErr != nil && s.OK() {
		// go test failed without a failing test or package event.
		s.Broken = append(s.Broken, exitErr.Error())
	}
	if err := r.Reporter.Finish(s, results.Outcomes()); err != nil {
		return s, err
	}
	return s, nil
}

// attempt runs one go test invocation and feeds its events to the results
// and the reporter as they arrive.
func (r *Runner) attempt(ctx context.Context, exe Executor, env, args []string, results *Results) error {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := Decode(pr, func(ev Event) {
			results.Add(ev)
			r.Reporter.Event(ev)
		})
		// Keep the writer unblocked if decoding stopped early.
		_, _ = io.Copy(io.Discard, pr)
		done <- err
	}()

	runErr := exe(ctx, r.Dir, env, args, pw)
	_ = pw.Close()
	if err := <-done; err != nil {
		return err
	}
	return runErr
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
