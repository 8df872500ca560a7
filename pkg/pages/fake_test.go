package pages

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/thompsonoloko-droid/automation-e2e/pkg/browser"
	"github.com/thompsonoloko-droid/automation-e2e/internal/clock"
)

const testBaseURL = "http://shop.test"

// fakePage is a scriptable browser.Page. Elements are visible only when
// listed in visible; queued errors are consumed one call at a time.
type fakePage struct {
	mu sync.Mutex

	url     string
	title   string
	visible map[string]bool
	texts   map[string]string
	counts  map[string]int

	clickErrs  map[string][]error
	fillErrs   map[string][]error
	gotoStatus []int
	gotoErrs   []error
	evalResult interface{}
	evalErr    error
	waitURLErr error

	// Hooks let a test change page state in response to an action.
	onClick  func(selector string)
	onGoto   func(url string)
	onReload func()

	calls       []string
	gotos       []string
	clicks      []string
	forceClicks []string
	fills       map[string]string
	evals       []string
	screenshots []string
	reloads     int
	closed      bool
}

func newFakePage() *fakePage {
	return &fakePage{
		url:       "about:blank",
		visible:   map[string]bool{},
		texts:     map[string]string{},
		counts:    map[string]int{},
		clickErrs: map[string][]error{},
		fillErrs:  map[string][]error{},
		fills:     map[string]string{},
	}
}

var _ browser.Page = (*fakePage)(nil)

func (f *fakePage) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func pop(queue map[string][]error, key string) error {
	errs := queue[key]
	if len(errs) == 0 {
		return nil
	}
	queue[key] = errs[1:]
	return errs[0]
}

func (f *fakePage) show(selectors ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range selectors {
		f.visible[s] = true
	}
}

func (f *fakePage) hide(selectors ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range selectors {
		delete(f.visible, s)
	}
}

func (f *fakePage) Goto(url string) (int, error) {
	f.mu.Lock()
	f.record("goto %s", url)
	f.gotos = append(f.gotos, url)
	var err error
	if len(f.gotoErrs) > 0 {
		err, f.gotoErrs = f.gotoErrs[0], f.gotoErrs[1:]
	}
	status := 200
	if len(f.gotoStatus) > 0 {
		status, f.gotoStatus = f.gotoStatus[0], f.gotoStatus[1:]
	}
	if err == nil {
		f.url = url
	}
	hook := f.onGoto
	f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if hook != nil {
		hook(url)
	}
	return status, nil
}

func (f *fakePage) Reload() error {
	f.mu.Lock()
	f.record("reload")
	f.reloads++
	hook := f.onReload
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (f *fakePage) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *fakePage) Title() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title, nil
}

func (f *fakePage) WaitVisible(selector string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("wait %s", selector)
	if !f.visible[selector] {
		return fmt.Errorf("%w: %q after %v", browser.ErrNotVisible, selector, timeout)
	}
	return nil
}

func (f *fakePage) IsVisible(selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[selector], nil
}

func (f *fakePage) Click(selector string, timeout time.Duration) error {
	f.mu.Lock()
	f.record("click %s", selector)
	err := pop(f.clickErrs, selector)
	if err == nil && !f.visible[selector] {
		err = fmt.Errorf("%w: %q after %v", browser.ErrNotVisible, selector, timeout)
	}
	if err == nil {
		f.clicks = append(f.clicks, selector)
	}
	hook := f.onClick
	f.mu.Unlock()

	if err == nil && hook != nil {
		hook(selector)
	}
	return err
}

func (f *fakePage) ForceClick(selector string) error {
	f.mu.Lock()
	f.record("force-click %s", selector)
	f.forceClicks = append(f.forceClicks, selector)
	hook := f.onClick
	f.mu.Unlock()

	if hook != nil {
		hook(selector)
	}
	return nil
}

func (f *fakePage) Fill(selector, text string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fill %s", selector)
	if err := pop(f.fillErrs, selector); err != nil {
		return err
	}
	if !f.visible[selector] {
		return fmt.Errorf("%w: %q after %v", browser.ErrNotVisible, selector, timeout)
	}
	f.fills[selector] = text
	return nil
}

func (f *fakePage) Text(selector string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.visible[selector] {
		return "", fmt.Errorf("%w: %q after %v", browser.ErrNotVisible, selector, timeout)
	}
	return f.texts[selector], nil
}

func (f *fakePage) Count(selector string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[selector], nil
}

func (f *fakePage) Hover(selector string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("hover %s", selector)
	return nil
}

func (f *fakePage) ScrollIntoView(selector string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("scroll %s", selector)
	if !f.visible[selector] {
		return fmt.Errorf("%w: %q after %v", browser.ErrNotVisible, selector, timeout)
	}
	return nil
}

func (f *fakePage) Eval(js string) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evals = append(f.evals, js)
	return f.evalResult, f.evalErr
}

func (f *fakePage) EvalOn(selector, js string, timeout time.Duration) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evals = append(f.evals, js)
	return f.evalResult, f.evalErr
}

func (f *fakePage) WaitURL(pattern string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("wait-url %s", pattern)
	if f.waitURLErr != nil {
		return f.waitURLErr
	}
	if !browser.MatchURL(pattern, f.url) {
		return fmt.Errorf("%w: %q", browser.ErrURLMismatch, pattern)
	}
	return nil
}

func (f *fakePage) WaitLoad(timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("wait-load")
	return nil
}

func (f *fakePage) Screenshot(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshots = append(f.screenshots, path)
	return nil
}

func (f *fakePage) Block(patterns []string) error {
	return nil
}

func (f *fakePage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

var errIntercepted = errors.New("element click intercepted")

// newTestBase wires a fake page to a BasePage driven by a mock clock.
func newTestBase(t *testing.T) (*BasePage, *fakePage, *clock.Mock) {
	t.Helper()
	fp := newFakePage()
	clk := clock.NewMock(time.Time{})
	base := NewBasePage(fp, Options{
		BaseURL:       testBaseURL + "/",
		Timeout:       3 * time.Second,
		ScreenshotDir: t.TempDir(),
		Clock:         clk,
		Logger:        zaptest.NewLogger(t),
	})
	return base, fp, clk
}
