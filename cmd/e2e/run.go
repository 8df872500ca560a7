package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/cmd/e2e/runner"
	"github.com/thompsonoloko-droid/automation-e2e/cmd/shopstub/server"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/config"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/suite"
)

type runFlags struct {
	opts  runner.Options
	stub  bool
	flaky bool
}

func newRunCommand() *cobra.Command {
	f := &runFlags{opts: runner.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the e2e tests",
		Long: "Run the e2e tests through go test -tags e2e. Tags, project and headed mode are\n" +
			"passed to the test binaries through E2E_TAGS, E2E_PROJECT and E2E_HEADLESS.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if a.cfg.CI {
				fl := cmd.Flags()
				f.opts.ApplyCI(fl.Changed("retries"), fl.Changed("workers"))
			}
			return runTests(cmd, a, f)
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVar(&f.opts.Tags, "tag", nil, "run only tests with this tag (repeatable; default from E2E_TAGS)")
	fl.StringVar(&f.opts.Project, "project", "", "browser project (default from E2E_PROJECT)")
	fl.StringVar(&f.opts.Reporter, "reporter", f.opts.Reporter, "reporter (list, json, summary)")
	fl.BoolVar(&f.opts.Headed, "headed", false, "show the browser")
	fl.StringVar(&f.opts.Grep, "grep", "", "run only tests matching this go test -run pattern")
	fl.IntVar(&f.opts.Workers, "workers", 0, "packages and parallel tests at once (CI default 2)")
	fl.IntVar(&f.opts.Retries, "retries", 0, "reruns of failing tests (CI default 1)")
	fl.BoolVar(&f.opts.UIOnly, "ui", false, "run only the browser tests")
	fl.BoolVar(&f.opts.APIOnly, "api", false, "run only the API tests")
	fl.StringVar(&f.opts.Timeout, "timeout", f.opts.Timeout, "go test timeout")
	fl.BoolVarP(&f.opts.Verbose, "verbose", "v", false, "pass -v to go test")
	fl.BoolVar(&f.stub, "stub", false, "serve a local shop stub and run against it")
	fl.BoolVar(&f.flaky, "flaky", false, "with --stub, reproduce the public site's UI quirks")
	cmd.MarkFlagsMutuallyExclusive("ui", "api")
	return cmd
}

func runTests(cmd *cobra.Command, a *app, f *runFlags) error {
	opts := f.opts
	if len(opts.Tags) > 0 {
		opts.Tags = config.ParseTags(strings.Join(opts.Tags, ","))
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	if err := suite.CleanArtifacts(a.cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	if f.stub {
		srv, err := startStub(a, f.flaky)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		opts.BaseURL = srv.URL()
		opts.APIURL = srv.URL() + "/api"
	}

	rep, err := runner.NewReporter(opts.Reporter, cmd.OutOrStdout(), a.cfg.ReportsDir)
	if err != nil {
		return err
	}
	r := &runner.Runner{
		Dir:      a.cfg.Root,
		Exec:     runner.GoExecutor(cmd.ErrOrStderr()),
		Reporter: rep,
		Log:      a.log,
	}

	a.log.Info("running tests",
		zap.Strings("packages", opts.Packages()),
		zap.Strings("tags", opts.Tags),
		zap.String("project", opts.Project),
		zap.Int("workers", opts.Workers),
		zap.Int("retries", opts.Retries))

	s, err := r.Run(ctx, opts)
	if err != nil {
		return err
	}
	if !s.OK() {
		return errTestsFailed
	}
	return nil
}

// startStub serves the shop stub on a free port with the configured account
// registered.
func startStub(a *app, flaky bool) (*server.Server, error) {
	cfg := server.DefaultConfig()
	if flaky {
		cfg = server.FlakyConfig()
	}
	cfg.Addr = "127.0.0.1:0"
	cfg.Logger = a.log.Named("shopstub")

	srv, err := server.NewServer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create shop stub: %w", err)
	}
	if u := a.cfg.User; len(u.MissingCredentials()) == 0 {
		name := u.Name
		if name == "" {
			name = "Test User"
		}
		srv.Store().CreateAccount(server.Account{Name: name, Email: u.Email, Password: u.Password})
	}
	if _, err := srv.Start(); err != nil {
		return nil, fmt.Errorf("failed to start shop stub: %w", err)
	}
	a.log.Info("shop stub listening", zap.String("url", srv.URL()), zap.Bool("flaky", flaky))
	return srv, nil
}
