package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/devices"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// rodDevices maps project device names to rod's emulation presets.
var rodDevices = map[string]devices.Device{
	"Pixel 2": devices.Pixel2,
}

// rodBrowser wraps a Chrome instance launched by rod.
type rodBrowser struct {
	browser *rod.Browser
	project Project
	timeout time.Duration
}

// launchRod starts a headless Chrome configured for container use:
//   - no sandbox
//   - no GPU
//   - no first-run or default-browser prompts
func launchRod(cfg Config, project Project) (*rodBrowser, error) {
	if project.Device != "" {
		if _, ok := rodDevices[project.Device]; !ok {
			return nil, fmt.Errorf("project %q: no rod emulation for device %q", project.Name, project.Device)
		}
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("no-default-browser-check")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	return &rodBrowser{
		browser: browser,
		project: project,
		timeout: cfg.Timeout,
	}, nil
}

// NewPage opens a tab inside a fresh incognito context.
func (b *rodBrowser) NewPage() (Page, error) {
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if device, ok := rodDevices[b.project.Device]; ok {
		if err := page.Emulate(device); err != nil {
			_ = incognito.Close()
			return nil, fmt.Errorf("failed to emulate %s: %w", b.project.Device, err)
		}
	}

	return &rodPage{
		page:    page,
		context: incognito,
		timeout: b.timeout,
	}, nil
}

func (b *rodBrowser) Project() Project {
	return b.project
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (b *rodBrowser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}

// rodPage implements Page on a rod tab. Waiting is done by polling
// non-blocking queries so that comma alternatives and text filters behave
// the same as in the playwright engine.
type rodPage struct {
	page    *rod.Page
	context *rod.Browser
	router  *rod.HijackRouter
	timeout time.Duration
}

func (p *rodPage) Goto(url string) (int, error) {
	if err := p.page.Timeout(p.timeout).Navigate(url); err != nil {
		return 0, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(p.timeout); err != nil {
		return 0, err
	}

	res, err := p.page.Eval(navigationStatusJS)
	if err != nil {
		return 0, nil
	}
	return res.Value.Int(), nil
}

func (p *rodPage) Reload() error {
	if err := p.page.Timeout(p.timeout).Reload(); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	return p.WaitLoad(p.timeout)
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) Title() (string, error) {
	res, err := p.page.Eval(`() => document.title`)
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return res.Value.Str(), nil
}

// query returns every element matching any alternative of sel, without waiting.
func (p *rodPage) query(sel Selector) (rod.Elements, error) {
	var out rod.Elements
	for _, alt := range sel.Alternatives {
		var (
			els rod.Elements
			err error
		)
		if alt.XPath != "" {
			els, err = p.page.ElementsX(alt.XPath)
		} else {
			els, err = p.page.Elements(alt.CSS)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %q: %w", sel.Raw, err)
		}

		for _, el := range els {
			if alt.Text != "" {
				text, err := el.Text()
				if err != nil || !MatchesText(text, alt.Text) {
					continue
				}
			}
			out = append(out, el)
		}
	}
	return out, nil
}

// firstVisible returns the first visible match, or nil if none is visible.
func (p *rodPage) firstVisible(sel Selector) (*rod.Element, error) {
	els, err := p.query(sel)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		visible, err := el.Visible()
		if err == nil && visible {
			return el, nil
		}
	}
	return nil, nil
}

// waitVisible polls until a match is visible or timeout elapses.
func (p *rodPage) waitVisible(selector string, timeout time.Duration) (*rod.Element, error) {
	sel := ParseSelector(selector)
	deadline := time.Now().Add(timeout)

	var lastErr error
	for {
		el, err := p.firstVisible(sel)
		if err != nil {
			// Queries fail transiently while the page navigates.
			lastErr = err
		} else if el != nil {
			return el, nil
		}

		if !time.Now().Before(deadline) {
			if lastErr != nil {
				return nil, fmt.Errorf("%w: %q after %v: %v", ErrNotVisible, selector, timeout, lastErr)
			}
			return nil, fmt.Errorf("%w: %q after %v", ErrNotVisible, selector, timeout)
		}
		time.Sleep(pollInterval)
	}
}

func (p *rodPage) WaitVisible(selector string, timeout time.Duration) error {
	_, err := p.waitVisible(selector, timeout)
	return err
}

func (p *rodPage) IsVisible(selector string) (bool, error) {
	el, err := p.firstVisible(ParseSelector(selector))
	if err != nil {
		return false, err
	}
	return el != nil, nil
}

func (p *rodPage) Click(selector string, timeout time.Duration) error {
	el, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	if err := el.Timeout(timeout).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) ForceClick(selector string) error {
	els, err := p.query(ParseSelector(selector))
	if err != nil {
		return err
	}
	if len(els) == 0 {
		return fmt.Errorf("failed to click %q: no matching element", selector)
	}
	if _, err := els[0].Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Fill(selector, text string, timeout time.Duration) error {
	el, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	el = el.Timeout(timeout)

	// Clear first: Input("") would leave a selected value in place.
	if _, err := el.Eval(`() => {
		this.value = '';
		this.dispatchEvent(new Event('input', { bubbles: true }));
	}`); err != nil {
		return fmt.Errorf("failed to clear %q: %w", selector, err)
	}
	if text == "" {
		return nil
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("failed to input text into %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Text(selector string, timeout time.Duration) (string, error) {
	el, err := p.waitVisible(selector, timeout)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %q: %w", selector, err)
	}
	return text, nil
}

func (p *rodPage) Count(selector string) (int, error) {
	els, err := p.query(ParseSelector(selector))
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (p *rodPage) Hover(selector string, timeout time.Duration) error {
	el, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	if err := el.Timeout(timeout).Hover(); err != nil {
		return fmt.Errorf("failed to hover %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) ScrollIntoView(selector string, timeout time.Duration) error {
	el, err := p.waitVisible(selector, timeout)
	if err != nil {
		return err
	}
	if err := el.Timeout(timeout).ScrollIntoView(); err != nil {
		return fmt.Errorf("failed to scroll to %q: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Eval(js string) (interface{}, error) {
	res, err := p.page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return res.Value.Val(), nil
}

func (p *rodPage) EvalOn(selector, js string, timeout time.Duration) (interface{}, error) {
	el, err := p.waitVisible(selector, timeout)
	if err != nil {
		return nil, err
	}
	res, err := el.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("eval on %q failed: %w", selector, err)
	}
	return res.Value.Val(), nil
}

func (p *rodPage) WaitURL(pattern string, timeout time.Duration) error {
	re := GlobToRegexp(pattern)
	deadline := time.Now().Add(timeout)
	for {
		url := p.URL()
		if re.MatchString(url) {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %q (at %s after %v)", ErrURLMismatch, pattern, url, timeout)
		}
		time.Sleep(pollInterval)
	}
}

func (p *rodPage) WaitLoad(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		res, err := p.page.Eval(documentReadyJS)
		if err == nil && res.Value.Str() != "loading" {
			return nil
		}
		if !time.Now().Before(deadline) {
			if err != nil {
				return fmt.Errorf("page did not finish loading within %v: %w", timeout, err)
			}
			return fmt.Errorf("page did not finish loading within %v", timeout)
		}
		time.Sleep(pollInterval)
	}
}

func (p *rodPage) Screenshot(path string) error {
	data, err := p.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Block hijacks matching requests and fails them as blocked by the client.
func (p *rodPage) Block(patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	if p.router != nil {
		return errors.New("request blocking already installed on this page")
	}

	router := p.page.HijackRequests()
	for _, pattern := range patterns {
		err := router.Add(cdpPattern(pattern), "", func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
		if err != nil {
			_ = router.Stop()
			return fmt.Errorf("failed to block %s: %w", strings.TrimSpace(pattern), err)
		}
	}
	go router.Run()

	p.router = router
	return nil
}

// Close stops request hijacking and disposes the incognito context.
func (p *rodPage) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
		p.router = nil
	}
	if err := p.page.Close(); err != nil {
		_ = p.context.Close()
		return fmt.Errorf("failed to close page: %w", err)
	}
	return p.context.Close()
}
