// E2E runner
//
// Runs the browser and API tests through `go test -tags e2e` with the
// suite's environment set from flags, reruns failures and reports the
// results:
//
//	go run ./cmd/e2e run                          # everything, list reporter
//	go run ./cmd/e2e run --tag smoke --project firefox
//	go run ./cmd/e2e run --api --reporter json
//	go run ./cmd/e2e run --stub --ui --headed     # against a local shop stub
//	go run ./cmd/e2e projects
//	go run ./cmd/e2e clean
//
// Under CI (the CI variable is set) a run defaults to one retry and two
// workers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/config"
)

// errTestsFailed makes the process exit non-zero after the report was
// printed.
var errTestsFailed = errors.New("tests failed")

type rootOptions struct {
	root     string
	logLevel string
}

// app carries the initialized dependencies through the command tree.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

type appKey struct{}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	switch {
	case errors.Is(err, errTestsFailed):
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "e2e",
		Short: "Run the end-to-end suite",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.root, "root", "", "repository root (default: located from go.mod)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error; default from E2E_LOG_LEVEL)")

	cmd.AddCommand(
		newRunCommand(),
		newReportersCommand(),
		newProjectsCommand(),
		newCleanCommand(),
	)
	return cmd
}

// persistentPreRun loads the configuration and the logger and stores them in
// the command context.
func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.root)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log, err := logging.New(level)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{cfg: cfg, log: log}))
	return nil
}

// appFrom returns the dependencies stored by persistentPreRun.
func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok {
		return nil, errors.New("command context not initialized")
	}
	return a, nil
}
