// Shop stub server
//
// Serves a local copy of the shop's pages and JSON API so the suite can run
// without the public site:
//
//	go run ./cmd/shopstub --addr :8080
//	E2E_BASE_URL=http://localhost:8080 E2E_API_URL=http://localhost:8080/api go test -tags e2e ./e2e/...
//
// --flaky reproduces the public site's UI quirks (consent overlay, a failing
// first product detail request, a missing add-to-cart modal).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/cmd/shopstub/server"
	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
)

type options struct {
	addr           string
	flaky          bool
	detailFailures int
	logLevel       string
	seedEmail      string
	seedPassword   string
	seedName       string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "shopstub",
		Short:         "Serve a local stand-in for the shop under test",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", ":8080", "listen address")
	f.BoolVar(&opts.flaky, "flaky", false, "reproduce the public site's UI quirks")
	f.IntVar(&opts.detailFailures, "detail-failures", 1, "product detail requests answered 503 when --flaky")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.StringVar(&opts.seedEmail, "seed-email", os.Getenv("TEST_USER_EMAIL"), "register this account at startup")
	f.StringVar(&opts.seedPassword, "seed-password", os.Getenv("TEST_USER_PASSWORD"), "password of the seeded account")
	f.StringVar(&opts.seedName, "seed-name", os.Getenv("TEST_USER_NAME"), "name of the seeded account")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	logger, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg := server.DefaultConfig()
	if opts.flaky {
		cfg = server.FlakyConfig()
		cfg.Flaky.DetailFailures = opts.detailFailures
	}
	cfg.Addr = opts.addr
	cfg.Logger = logger

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if opts.seedEmail != "" && opts.seedPassword != "" {
		name := opts.seedName
		if name == "" {
			name = "Test User"
		}
		srv.Store().CreateAccount(server.Account{Name: name, Email: opts.seedEmail, Password: opts.seedPassword})
		logger.Info("seeded account", zap.String("email", opts.seedEmail))
	}

	addr, err := srv.Start()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info("shop stub listening",
		zap.String("addr", addr),
		zap.String("url", srv.URL()),
		zap.Bool("flaky", opts.flaky))

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down", zap.Int64("ad_hits", srv.AdHits()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
