// Package pages implements the Page Object Model for the shop.
//
// Every page object embeds BasePage, which owns the flake handling shared
// by all of them: visibility waits, overlay dismissal and bounded retries.
// Page objects return errors; tests decide whether an error fails the run.
package pages

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/pkg/browser"
	"github.com/thompsonoloko-droid/automation-e2e/internal/clock"
	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
)

// DefaultBaseURL is the public site the suite targets.
const DefaultBaseURL = "https://automationexercise.com"

// DefaultTimeout bounds element waits when no timeout is given.
const DefaultTimeout = 30 * time.Second

// overlaySelectors are removed from the DOM before a retry.
const overlaySelectors = ".fc-consent-root, .fc-dialog-overlay, [class*='overlay'], .modal-backdrop"

// consentButtons are tried in order; the first visible one is clicked.
var consentButtons = []string{
	"button[aria-label='Consent']",
	"button[aria-label='Close']",
	"button:has-text('Consent')",
	"button:has-text('Accept')",
	".fc-cta-consent",
}

const (
	overlayButtonTimeout = 2 * time.Second
	expectPollInterval   = 250 * time.Millisecond
)

// Options configures a BasePage.
type Options struct {
	BaseURL       string        // Site root (default: DefaultBaseURL)
	Timeout       time.Duration // Element wait timeout (default: 30s)
	ScreenshotDir string        // Where TakeScreenshot writes (default: reports/screenshots)
	Clock         clock.Clock   // Source of time and sleeps (default: real clock)
	Logger        *zap.Logger   // Warning sink (default: no-op)
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		ScreenshotDir: filepath.Join("reports", "screenshots"),
		Clock:         clock.Real{},
	}
}

// ClickOptions tunes BasePage.ClickWith.
type ClickOptions struct {
	Timeout    time.Duration // Visibility wait per attempt (default: page timeout)
	MaxRetries int           // Attempts before giving up (default: 3)
	RetryDelay time.Duration // Pause between attempts (default: 1s)
}

// DefaultClickOptions returns 3 attempts one second apart.
func DefaultClickOptions() ClickOptions {
	return ClickOptions{MaxRetries: 3, RetryDelay: time.Second}
}

// BasePage is the foundation every page object embeds.
type BasePage struct {
	page          browser.Page
	baseURL       string
	timeout       time.Duration
	screenshotDir string
	clock         clock.Clock
	log           *zap.Logger
}

// NewBasePage wraps p. Zero fields in opts fall back to DefaultOptions.
func NewBasePage(p browser.Page, opts Options) *BasePage {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = def.ScreenshotDir
	}
	if opts.Clock == nil {
		opts.Clock = def.Clock
	}

	return &BasePage{
		page:          p,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		timeout:       opts.Timeout,
		screenshotDir: opts.ScreenshotDir,
		clock:         opts.Clock,
		log:           logging.OrNop(opts.Logger),
	}
}

// Page returns the underlying browser page.
func (b *BasePage) Page() browser.Page {
	return b.page
}

// BaseURL returns the site root without a trailing slash.
func (b *BasePage) BaseURL() string {
	return b.baseURL
}

// Timeout returns the default element timeout.
func (b *BasePage) Timeout() time.Duration {
	return b.timeout
}

func (b *BasePage) orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return b.timeout
	}
	return timeout
}

// Goto opens path relative to the base URL and returns the HTTP status.
func (b *BasePage) Goto(path string) (int, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = b.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	return b.page.Goto(url)
}

// WaitForElement waits for selector to become visible.
func (b *BasePage) WaitForElement(selector string, timeout time.Duration) error {
	return b.page.WaitVisible(selector, b.orDefault(timeout))
}

// Click clicks selector with DefaultClickOptions.
func (b *BasePage) Click(selector string) error {
	return b.ClickWith(selector, DefaultClickOptions())
}

// ClickWith waits for selector to be visible and clicks it. When an attempt
// fails (typically an overlay intercepting the click) it dismisses overlays,
// waits RetryDelay and tries again, up to MaxRetries attempts.
func (b *BasePage) ClickWith(selector string, opts ClickOptions) error {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultClickOptions().MaxRetries
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	timeout := b.orDefault(opts.Timeout)

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		err := b.page.Click(selector, timeout)
		if err == nil {
			return nil
		}
		lastErr = err
		b.log.Warn("click attempt failed",
			zap.Int("attempt", attempt),
			zap.String("selector", selector),
			zap.Error(err))
		b.DismissOverlays()
		b.clock.Sleep(opts.RetryDelay)
	}
	return fmt.Errorf("unable to click element '%s' after %d attempts: %w", selector, opts.MaxRetries, lastErr)
}

// DismissOverlays removes known consent/ad overlays and clicks the first
// visible consent or close button. It never fails.
func (b *BasePage) DismissOverlays() {
	js := fmt.Sprintf(`() => {
		document.querySelectorAll(%q).forEach((el) => el.remove());
	}`, overlaySelectors)
	if _, err := b.page.Eval(js); err != nil {
		b.log.Debug("overlay removal script failed", zap.Error(err))
	}

	for _, sel := range consentButtons {
		visible, err := b.page.IsVisible(sel)
		if err != nil || !visible {
			continue
		}
		if err := b.page.Click(sel, overlayButtonTimeout); err != nil {
			b.log.Debug("consent button click failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		return
	}
}

// Fill waits for selector and replaces its value with text. If the first
// attempt fails it dismisses overlays and tries once more.
func (b *BasePage) Fill(selector, text string) error {
	timeout := b.timeout
	err := b.page.Fill(selector, text, timeout)
	if err == nil {
		return nil
	}

	b.log.Warn("fill failed, dismissing overlays and retrying",
		zap.String("selector", selector), zap.Error(err))
	b.DismissOverlays()
	if retryErr := b.page.Fill(selector, text, timeout); retryErr == nil {
		return nil
	}
	return fmt.Errorf("failed to fill element '%s': %w", selector, err)
}

// Text returns the trimmed text of selector.
func (b *BasePage) Text(selector string) (string, error) {
	text, err := b.page.Text(selector, b.timeout)
	if err != nil {
		return "", fmt.Errorf("failed to get text from element '%s': %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

// TakeScreenshot saves the viewport as <dir>/<name>_<unix-ms>.png and
// returns the path.
func (b *BasePage) TakeScreenshot(name string) (string, error) {
	path := filepath.Join(b.screenshotDir, fmt.Sprintf("%s_%d.png", name, b.clock.Now().UnixMilli()))
	if err := b.page.Screenshot(path); err != nil {
		return "", err
	}
	return path, nil
}

// VerifyURLContains waits until the page URL matches the regular
// expression text.
func (b *BasePage) VerifyURLContains(text string, timeout time.Duration) error {
	re, err := regexp.Compile(text)
	if err != nil {
		return fmt.Errorf("invalid url pattern %q: %w", text, err)
	}
	var url string
	ok := b.poll(b.orDefault(timeout), func() bool {
		url = b.page.URL()
		return re.MatchString(url)
	})
	if !ok {
		return fmt.Errorf("expected url to match %q, got %q", text, url)
	}
	return nil
}

// ExpectText waits until selector's text contains want (case-insensitive).
func (b *BasePage) ExpectText(selector, want string, timeout time.Duration) error {
	var got string
	ok := b.poll(b.orDefault(timeout), func() bool {
		visible, err := b.page.IsVisible(selector)
		if err != nil || !visible {
			return false
		}
		text, err := b.page.Text(selector, expectPollInterval)
		if err != nil {
			return false
		}
		got = text
		return browser.MatchesText(text, want)
	})
	if !ok {
		return fmt.Errorf("expected '%s' to contain %q, got %q", selector, want, strings.TrimSpace(got))
	}
	return nil
}

// ExpectVisible waits until selector is visible.
func (b *BasePage) ExpectVisible(selector string, timeout time.Duration) error {
	ok := b.poll(b.orDefault(timeout), func() bool {
		visible, err := b.page.IsVisible(selector)
		return err == nil && visible
	})
	if !ok {
		return fmt.Errorf("expected '%s' to be visible", selector)
	}
	return nil
}

// ExpectHidden waits until selector is not visible.
func (b *BasePage) ExpectHidden(selector string, timeout time.Duration) error {
	ok := b.poll(b.orDefault(timeout), func() bool {
		visible, err := b.page.IsVisible(selector)
		return err == nil && !visible
	})
	if !ok {
		return fmt.Errorf("expected '%s' not to be visible", selector)
	}
	return nil
}

// poll evaluates cond until it holds or timeout elapses on b.clock.
// cond is always evaluated at least once.
func (b *BasePage) poll(timeout time.Duration, cond func() bool) bool {
	deadline := b.clock.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if !b.clock.Now().Before(deadline) {
			return false
		}
		b.clock.Sleep(expectPollInterval)
	}
}

// sleep pauses on the page clock.
func (b *BasePage) sleep(d time.Duration) {
	b.clock.Sleep(d)
}

// ExpectTimeout is the default wait for Expect* assertions.
const ExpectTimeout = 5 * time.Second

// TextSelector matches elements whose own text contains text.
func TextSelector(text string) string {
	return fmt.Sprintf("//*[contains(text(), %s)]", xpathLiteral(text))
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	default:
		parts := strings.Split(s, "'")
		quoted := make([]string, len(parts))
		for i, p := range parts {
			quoted[i] = "'" + p + "'"
		}
		return "concat(" + strings.Join(quoted, `, "'", `) + ")"
	}
}

// classXPath matches elements carrying the CSS class name.
func classXPath(tag, class string) string {
	return fmt.Sprintf("%s[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", tag, class)
}
