// Package suite is the fixture layer the e2e tests are written against.
//
// An e2e test package wires it in from TestMain:
//
//	func TestMain(m *testing.M) {
//		suite.Main(m)
//	}
//
// Run loads the configuration and the fixture file once per test binary,
// clears stale artifacts and shares one browser between the package's
// tests; every UI test still gets its own isolated browser context.
// Tests then ask for what they need:
//
//	ui := suite.NewUI(t)      // fresh page + page objects, screenshot on failure
//	client := suite.NewAPI(t) // throttled API client
//	suite.Tags(t, "smoke")    // skip unless selected by E2E_TAGS
//	user := suite.RequireUser(t)
package suite

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/api"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/browser"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/config"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/fixtures"
)

// EnvNoClean, when set to a non-empty value, keeps the artifacts of earlier
// runs. The runner sets it after cleaning once for all packages.
const EnvNoClean = "E2E_NO_CLEAN"

// ErrNotInitialized is returned when a fixture is requested outside Run.
var ErrNotInitialized = errors.New("suite: Run was not called from TestMain")

// Launcher starts a browser; browser.Launch is the default.
type Launcher func(browser.Config) (browser.Browser, error)

// Options configures Setup.
type Options struct {
	Root        string         // Repository root (default: located from go.mod)
	Launch      Launcher       // Browser launcher (default: browser.Launch)
	Logger      *zap.Logger    // Suite logger (default: built from the config's log level)
	Config      *config.Config // Preloaded configuration (default: config.Load(Root))
	Data        *fixtures.Data // Preloaded fixtures (default: loaded from Config.DataFile)
	NoClean     bool           // Keep earlier artifacts
	KillOrphans bool           // Kill leftover browser processes on teardown (always in CI)
}

// Option mutates Options.
type Option func(*Options)

// WithRoot sets the repository root.
func WithRoot(root string) Option {
	return func(o *Options) { o.Root = root }
}

// WithLauncher replaces the browser launcher.
func WithLauncher(l Launcher) Option {
	return func(o *Options) { o.Launch = l }
}

// WithLogger sets the suite logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithConfig skips configuration loading.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) { o.Config = cfg }
}

// WithData skips fixture loading.
func WithData(d *fixtures.Data) Option {
	return func(o *Options) { o.Data = d }
}

// WithoutClean keeps artifacts of earlier runs.
func WithoutClean() Option {
	return func(o *Options) { o.NoClean = true }
}

// WithKillOrphans kills leftover browser processes on teardown.
func WithKillOrphans() Option {
	return func(o *Options) { o.KillOrphans = true }
}

// Env is the state shared by the tests of one test binary.
type Env struct {
	Config *config.Config
	Data   *fixtures.Data
	Log    *zap.Logger

	launch      Launcher
	limiter     *rate.Limiter
	killOrphans bool

	mu        sync.Mutex
	browser   browser.Browser
	launchErr error
}

var (
	currentMu sync.RWMutex
	current   *Env
)

// Current returns the Env installed by Run.
func Current() (*Env, error) {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

func setCurrent(e *Env) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = e
}

// Setup resolves configuration and fixtures and clears stale artifacts.
func Setup(opts ...Option) (*Env, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(o.Root); err != nil {
			return nil, err
		}
	}

	log := o.Logger
	if log == nil {
		var err error
		if log, err = logging.New(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	data := o.Data
	if data == nil {
		var err error
		if data, err = fixtures.Load(cfg.DataFile); err != nil {
			return nil, err
		}
	}

	if !o.NoClean && os.Getenv(EnvNoClean) == "" {
		if err := CleanArtifacts(cfg); err != nil {
			return nil, err
		}
	}

	launch := o.Launch
	if launch == nil {
		launch = browser.Launch
	}

	return &Env{
		Config:      cfg,
		Data:        data,
		Log:         log,
		launch:      launch,
		limiter:     rate.NewLimiter(rate.Limit(api.DefaultRateLimit), api.DefaultBurst),
		killOrphans: o.KillOrphans || cfg.CI,
	}, nil
}

// CleanArtifacts removes the artifacts directory and the HTML report left by
// an earlier run.
func CleanArtifacts(cfg *config.Config) error {
	for _, dir := range []string{cfg.ArtifactsDir, filepath.Join(cfg.ReportsDir, "html")} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	return nil
}

// M is the part of *testing.M that Run needs.
type M interface {
	Run() int
}

// Run sets the suite up, runs the tests and tears down. It returns the exit
// code for os.Exit.
func Run(m M, opts ...Option) int {
	env, err := Setup(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "suite setup failed: %v\n", err)
		return 1
	}
	setCurrent(env)
	defer setCurrent(nil)

	env.Log.Debug("suite ready",
		zap.String("base_url", env.Config.BaseURL),
		zap.String("api_url", env.APIURL()),
		zap.String("project", env.Config.Project),
		zap.Strings("tags", env.Config.Tags))

	code := m.Run()

	if err := env.Close(); err != nil {
		env.Log.Warn("suite teardown", zap.Error(err))
	}
	_ = env.Log.Sync()
	return code
}

// Main is Run followed by os.Exit, for use as the body of TestMain.
func Main(m M, opts ...Option) {
	os.Exit(Run(m, opts...))
}

// APIURL is the API root: the configured E2E_API_URL, else the fixture's
// api.base_url, else the public API.
func (e *Env) APIURL() string {
	if e.Config.APIURL != "" {
		return e.Config.APIURL
	}
	if e.Data != nil && e.Data.API.BaseURL != "" {
		return strings.TrimRight(e.Data.API.BaseURL, "/")
	}
	return api.DefaultBaseURL
}

// Browser returns the shared browser, launching it on first use. A failed
// launch is remembered so every test reports the same error quickly.
func (e *Env) Browser() (browser.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil || e.launchErr != nil {
		return e.browser, e.launchErr
	}
	b, err := e.launch(browser.Config{
		Project:  e.Config.Project,
		Headless: e.Config.Headless,
		Timeout:  e.Config.Timeout,
	})
	if err != nil {
		e.launchErr = fmt.Errorf("failed to launch %s: %w", e.Config.Project, err)
		return nil, e.launchErr
	}
	e.Log.Debug("browser launched", zap.String("project", e.Config.Project))
	e.browser = b
	return b, nil
}

// Close shuts the shared browser down. In CI it also kills browser
// processes that a panicking test may have orphaned.
func (e *Env) Close() error {
	e.mu.Lock()
	b := e.browser
	e.browser = nil
	e.mu.Unlock()

	if b == nil {
		return nil
	}
	err := b.Close()
	if e.killOrphans {
		cleanupOrphanedBrowsers()
	}
	return err
}

// cleanupOrphanedBrowsers attempts to kill browser processes that may have
// been left behind by failed tests. This is best-effort cleanup.
func cleanupOrphanedBrowsers() {
	switch runtime.GOOS {
	case "darwin", "linux":
		// pkill returns non-zero if no processes matched, ignore error
		_ = exec.Command("pkill", "-f", "chromium|chrome|firefox|webkit").Run()
	case "windows":
		_ = exec.Command("taskkill", "/F", "/IM", "chrome.exe").Run()
		_ = exec.Command("taskkill", "/F", "/IM", "chromium.exe").Run()
	}
}
