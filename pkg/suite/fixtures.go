package suite

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/thompsonoloko-droid/automation-e2e/pkg/api"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/browser"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/config"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/fixtures"
	"github.com/thompsonoloko-droid/automation-e2e/pkg/pages"
)

// UI is the per-test browser fixture: one page in its own context plus the
// page objects bound to it.
type UI struct {
	Page     browser.Page
	Base     *pages.BasePage
	Login    *pages.LoginPage
	Product  *pages.ProductPage
	Cart     *pages.CartPage
	Checkout *pages.CheckoutPage
	Payment  *pages.PaymentPage

	t        testing.TB
	homeOnce sync.Once
	home     *pages.HomePage
}

// Home returns the home page object, opening the site root on first use.
func (u *UI) Home() *pages.HomePage {
	u.homeOnce.Do(func() {
		u.home = pages.NewHomePage(u.Base)
		require.NoError(u.t, u.home.Open(), "open home page")
	})
	return u.home
}

// env returns the installed Env or stops the test.
func env(t testing.TB) *Env {
	t.Helper()
	e, err := Current()
	require.NoError(t, err)
	return e
}

// NewUI opens a fresh page for t. Ads are blocked, a screenshot lands in the
// artifacts directory if t fails, and the page is closed on cleanup.
func NewUI(t testing.TB) *UI {
	t.Helper()
	return env(t).NewUI(t)
}

// NewUI is the package-level NewUI against e.
func (e *Env) NewUI(t testing.TB) *UI {
	t.Helper()

	b, err := e.Browser()
	require.NoError(t, err)
	page, err := b.NewPage()
	require.NoError(t, err, "open page")

	log := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	if err := browser.BlockAds(page); err != nil {
		log.Warn("ad blocking unavailable", zap.Error(err))
	}

	base := pages.NewBasePage(page, pages.Options{
		BaseURL:       e.Config.BaseURL,
		Timeout:       e.Config.Timeout,
		ScreenshotDir: e.Config.ScreenshotDir(),
		Logger:        log,
	})

	t.Cleanup(func() {
		if t.Failed() {
			if path, err := e.failureScreenshot(page, t.Name()); err != nil {
				t.Logf("failure screenshot: %v", err)
			} else {
				t.Logf("failure screenshot: %s", path)
			}
		}
		if err := page.Close(); err != nil {
			t.Logf("page close: %v", err)
		}
	})

	return &UI{
		Page:     page,
		Base:     base,
		Login:    pages.NewLoginPage(base),
		Product:  pages.NewProductPage(base),
		Cart:     pages.NewCartPage(base),
		Checkout: pages.NewCheckoutPage(base),
		Payment:  pages.NewPaymentPage(base),
		t:        t,
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// failureScreenshot writes <artifacts>/<test name>.png.
func (e *Env) failureScreenshot(page browser.Page, name string) (string, error) {
	if err := os.MkdirAll(e.Config.ArtifactsDir, 0o755); err != nil {
		return "", err
	}
	file := strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_") + ".png"
	path := filepath.Join(e.Config.ArtifactsDir, file)
	if err := page.Screenshot(path); err != nil {
		return "", err
	}
	return path, nil
}

// NewAPI returns an API client for the configured API root. Clients of one
// test binary share a rate limiter.
func NewAPI(t testing.TB) *api.Client {
	t.Helper()
	return env(t).NewAPI(t)
}

// NewAPI is the package-level NewAPI against e.
func (e *Env) NewAPI(t testing.TB) *api.Client {
	t.Helper()
	timeout := api.DefaultTimeout
	if e.Data != nil {
		timeout = e.Data.API.RequestTimeout()
	}
	return api.NewClient(e.APIURL(),
		api.WithTimeout(timeout),
		api.WithLimiter(e.limiter),
		api.WithLogger(zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))),
	)
}

// Tags skips t unless the run's tag filter selects one of tags.
func Tags(t testing.TB, tags ...string) {
	t.Helper()
	env(t).Tags(t, tags...)
}

// Tags is the package-level Tags against e.
func (e *Env) Tags(t testing.TB, tags ...string) {
	t.Helper()
	if !e.Config.HasTag(tags...) {
		t.Skipf("tags %v not selected by filter %v", tags, e.Config.Tags)
	}
}

// skipMissing skips t naming every missing variable.
func skipMissing(t testing.TB, missing []string) {
	t.Helper()
	if len(missing) > 0 {
		t.Skipf("Missing env vars: %s", strings.Join(missing, ", "))
	}
}

// RequireUser returns the configured account, skipping t if any of
// TEST_USER_NAME, TEST_USER_EMAIL or TEST_USER_PASSWORD is unset.
func RequireUser(t testing.TB) config.User {
	t.Helper()
	u := env(t).Config.User
	skipMissing(t, u.Missing())
	return u
}

// RequireCredentials is RequireUser without the name.
func RequireCredentials(t testing.TB) config.User {
	t.Helper()
	u := env(t).Config.User
	skipMissing(t, u.MissingCredentials())
	return u
}

// RequireCard returns the configured payment card, skipping t if any CARD_*
// variable is unset.
func RequireCard(t testing.TB) pages.CardDetails {
	t.Helper()
	c := env(t).Config.Card
	skipMissing(t, c.Missing())
	return pages.CardDetails{
		Name:   c.Name,
		Number: c.Number,
		CVC:    c.CVC,
		Month:  c.Month,
		Year:   c.Year,
	}
}

// Fixtures returns the loaded fixture file.
func Fixtures(t testing.TB) *fixtures.Data {
	t.Helper()
	return env(t).Data
}

// Config returns the resolved configuration.
func Config(t testing.TB) *config.Config {
	t.Helper()
	return env(t).Config
}
