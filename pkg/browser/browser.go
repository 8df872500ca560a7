// Package browser is the automation layer under the page objects.
//
// It exposes a small Page interface (navigate, wait, click, fill, read,
// evaluate) with two engines behind it:
//   - rod: Chromium over the DevTools protocol (default)
//   - playwright: Chromium, Firefox and WebKit via playwright-go
//
// Both engines accept the same selector grammar, see ParseSelector.
package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotVisible is returned when an element does not become visible in time.
	ErrNotVisible = errors.New("element not visible")

	// ErrURLMismatch is returned when the page URL never matches an expected pattern.
	ErrURLMismatch = errors.New("url did not match")

	// ErrUnknownProject is returned for a project name that is not registered.
	ErrUnknownProject = errors.New("unknown browser project")
)

// Page is a single browser tab in its own isolated context.
type Page interface {
	// Goto navigates to url and waits for DOMContentLoaded.
	// It returns the HTTP status of the main document, or 0 if unknown.
	Goto(url string) (int, error)
	// Reload reloads the page and waits for DOMContentLoaded.
	Reload() error
	// URL returns the current page URL.
	URL() string
	// Title returns the document title.
	Title() (string, error)

	// WaitVisible waits until the first element matching selector is visible.
	WaitVisible(selector string, timeout time.Duration) error
	// IsVisible reports whether an element matching selector is visible now.
	IsVisible(selector string) (bool, error)
	// Click waits for selector to be visible and clicks it.
	Click(selector string, timeout time.Duration) error
	// ForceClick clicks the first match without actionability checks.
	ForceClick(selector string) error
	// Fill waits for an input to be visible and replaces its value with text.
	Fill(selector, text string, timeout time.Duration) error
	// Text returns the text content of the first visible match.
	Text(selector string, timeout time.Duration) (string, error)
	// Count returns the number of elements matching selector.
	Count(selector string) (int, error)
	// Hover moves the mouse over the first visible match.
	Hover(selector string, timeout time.Duration) error
	// ScrollIntoView scrolls the first visible match into the viewport.
	ScrollIntoView(selector string, timeout time.Duration) error

	// Eval runs a JavaScript function expression in the page.
	Eval(js string) (interface{}, error)
	// EvalOn runs js against the first visible match. The function receives
	// the element as its first argument and as this.
	EvalOn(selector, js string, timeout time.Duration) (interface{}, error)

	// WaitURL waits until the page URL matches the glob pattern.
	WaitURL(pattern string, timeout time.Duration) error
	// WaitLoad waits until the document is no longer loading.
	WaitLoad(timeout time.Duration) error

	// Screenshot writes a PNG of the viewport to path.
	Screenshot(path string) error
	// Block aborts every request whose URL matches one of the glob patterns.
	Block(patterns []string) error
	// Close releases the page and its context.
	Close() error
}

// Browser launches isolated pages.
type Browser interface {
	// NewPage opens a page in a fresh browser context.
	NewPage() (Page, error)
	// Close shuts the browser down.
	Close() error
	// Project returns the project the browser was launched for.
	Project() Project
}

// Config configures browser launch options.
type Config struct {
	Project  string        // Project name, see Projects (default: "chromium")
	Headless bool          // Run in headless mode (default: true)
	Timeout  time.Duration // Default operation timeout (default: 30s)
}

// DefaultConfig returns sensible defaults for E2E testing.
func DefaultConfig() Config {
	return Config{
		Project:  "chromium",
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// Launch starts the browser for cfg.Project.
func Launch(cfg Config) (Browser, error) {
	if cfg.Project == "" {
		cfg.Project = DefaultConfig().Project
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	project, err := LookupProject(cfg.Project)
	if err != nil {
		return nil, err
	}

	switch project.Engine {
	case EngineRod:
		return launchRod(cfg, project)
	case EnginePlaywright:
		return launchPlaywright(cfg, project)
	default:
		return nil, fmt.Errorf("project %q has unsupported engine %q", project.Name, project.Engine)
	}
}

// pollInterval is how often the rod engine re-checks a waiting condition.
const pollInterval = 100 * time.Millisecond

// documentReadyJS returns document.readyState.
const documentReadyJS = `() => document.readyState`

// navigationStatusJS reads the HTTP status of the current document.
const navigationStatusJS = `() => {
	const entries = performance.getEntriesByType('navigation');
	if (!entries.length || !entries[0].responseStatus) {
		return 0;
	}
	return entries[0].responseStatus;
}`
