package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// pwBrowser wraps a playwright-managed browser of any engine.
type pwBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	device  *playwright.DeviceDescriptor
	project Project
	timeout time.Duration
}

// launchPlaywright starts the playwright driver and the project's browser.
// Browsers must be installed beforehand:
//
//	go run github.com/playwright-community/playwright-go/cmd/playwright install --with-deps
func launchPlaywright(cfg Config, project Project) (*pwBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch project.Browser {
	case "chromium":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("project %q: unsupported browser %q", project.Name, project.Browser)
	}

	var device *playwright.DeviceDescriptor
	if project.Device != "" {
		d, ok := pw.Devices[project.Device]
		if !ok {
			_ = pw.Stop()
			return nil, fmt.Errorf("project %q: unknown device %q", project.Name, project.Device)
		}
		device = d
	}

	browser, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", project.Browser, err)
	}

	return &pwBrowser{
		pw:      pw,
		browser: browser,
		device:  device,
		project: project,
		timeout: cfg.Timeout,
	}, nil
}

// NewPage opens a page in a new browser context, applying device emulation.
func (b *pwBrowser) NewPage() (Page, error) {
	opts := playwright.BrowserNewContextOptions{}
	if d := b.device; d != nil {
		opts.UserAgent = playwright.String(d.UserAgent)
		opts.Viewport = d.Viewport
		opts.DeviceScaleFactor = playwright.Float(d.DeviceScaleFactor)
		opts.IsMobile = playwright.Bool(d.IsMobile)
		opts.HasTouch = playwright.Bool(d.HasTouch)
	}

	ctx, err := b.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page.SetDefaultTimeout(ms(b.timeout))

	return &pwPage{
		page:    page,
		context: ctx,
		timeout: b.timeout,
	}, nil
}

func (b *pwBrowser) Project() Project {
	return b.project
}

// Close shuts down the browser and the playwright driver process.
func (b *pwBrowser) Close() error {
	var firstErr error
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close browser: %w", err)
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return firstErr
}

// ms converts d to the float milliseconds playwright expects.
func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// pwPage implements Page on a playwright page. Playwright natively
// understands every form accepted by ParseSelector, so selectors are passed
// through with only XPath made explicit.
type pwPage struct {
	page    playwright.Page
	context playwright.BrowserContext
	timeout time.Duration
}

func (p *pwPage) first(selector string) playwright.Locator {
	return p.page.Locator(playwrightSelector(selector)).First()
}

// playwrightSelector marks a lone XPath explicitly; playwright only infers
// XPath for selectors starting with "//" or "..".
func playwrightSelector(raw string) string {
	sel := ParseSelector(raw)
	if len(sel.Alternatives) == 1 && sel.Alternatives[0].XPath != "" {
		return "xpath=" + sel.Alternatives[0].XPath
	}
	return raw
}

func (p *pwPage) waitVisible(selector string, timeout time.Duration) (playwright.Locator, error) {
	loc := p.first(selector)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q after %v: %v", ErrNotVisible, selector, timeout, err)
	}
	return loc, nil
}

func (p *pwPage) Goto(url string) (int, error) {
	resp, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(ms(p.timeout)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

func (p *pwPage) Reload() error {
	_, err := p.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(ms(p.timeout)),
	})
	if err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	return nil
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Title() (string, error) {
	title, err := p.page.Title()
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}

func (p *pwPage) WaitVisible(selector string, timeout time.Duration) error {
	_, err := p.waitVisible(selector, timeout)
	return err
}

func (p *pwPage) IsVisible(selector string) (bool, error) {
	return p.first(selector).IsVisible()
}

func (p *pwPage) Click(selector string, timeout time.Duration) error {
	loc, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(ms(timeout))}); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

func (p *pwPage) ForceClick(selector string) error {
	err := p.first(selector).Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(ms(p.timeout)),
	})
	if err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

func (p *pwPage) Fill(selector, text string, timeout time.Duration) error {
	loc, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	if err := loc.Fill(text, playwright.LocatorFillOptions{Timeout: playwright.Float(ms(timeout))}); err != nil {
		return fmt.Errorf("failed to input text into %q: %w", selector, err)
	}
	return nil
}

func (p *pwPage) Text(selector string, timeout time.Duration) (string, error) {
	loc, err := p.waitVisible(selector, timeout)
	if err != nil {
		return "", err
	}
	text, err := loc.TextContent()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %q: %w", selector, err)
	}
	return text, nil
}

func (p *pwPage) Count(selector string) (int, error) {
	return p.page.Locator(playwrightSelector(selector)).Count()
}

func (p *pwPage) Hover(selector string, timeout time.Duration) error {
	loc, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	if err := loc.Hover(playwright.LocatorHoverOptions{Timeout: playwright.Float(ms(timeout))}); err != nil {
		return fmt.Errorf("failed to hover %q: %w", selector, err)
	}
	return nil
}

func (p *pwPage) ScrollIntoView(selector string, timeout time.Duration) error {
	loc, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	err = loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil {
		return fmt.Errorf("failed to scroll to %q: %w", selector, err)
	}
	return nil
}

func (p *pwPage) Eval(js string) (interface{}, error) {
	v, err := p.page.Evaluate(js)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return v, nil
}

func (p *pwPage) EvalOn(selector, js string, timeout time.Duration) (interface{}, error) {
	loc, err := p.waitVisible(selector, timeout)
	if err != nil {
		return nil, err
	}
	v, err := loc.Evaluate(js, nil)
	if err != nil {
		return nil, fmt.Errorf("eval on %q failed: %w", selector, err)
	}
	return v, nil
}

func (p *pwPage) WaitURL(pattern string, timeout time.Duration) error {
	err := p.page.WaitForURL(GlobToRegexp(pattern), playwright.PageWaitForURLOptions{
		Timeout:   playwright.Float(ms(timeout)),
		WaitUntil: playwright.WaitUntilStateCommit,
	})
	if err != nil {
		return fmt.Errorf("%w: %q (at %s after %v): %v", ErrURLMismatch, pattern, p.page.URL(), timeout, err)
	}
	return nil
}

func (p *pwPage) WaitLoad(timeout time.Duration) error {
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil {
		return fmt.Errorf("page did not finish loading within %v: %w", timeout, err)
	}
	return nil
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return nil
}

func (p *pwPage) Block(patterns []string) error {
	for _, pattern := range patterns {
		err := p.page.Route(pattern, func(route playwright.Route) {
			_ = route.Abort()
		})
		if err != nil {
			return fmt.Errorf("failed to block %s: %w", pattern, err)
		}
	}
	return nil
}

func (p *pwPage) Close() error {
	if err := p.page.Close(); err != nil {
		_ = p.context.Close()
		return fmt.Errorf("failed to close page: %w", err)
	}
	return p.context.Close()
}
