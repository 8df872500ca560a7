package browser

import (
	"fmt"
	"strings"
)

// Engine names the automation library driving a project.
type Engine string

const (
	EngineRod        Engine = "rod"
	EnginePlaywright Engine = "playwright"
)

// Project is a named browser/device combination a run can target.
type Project struct {
	Name    string
	Engine  Engine
	Browser string // chromium, firefox or webkit
	Device  string // emulated device name, empty for desktop
}

// Mobile reports whether the project emulates a mobile device.
func (p Project) Mobile() bool {
	return p.Device != ""
}

var projects = []Project{
	{Name: "chromium", Engine: EngineRod, Browser: "chromium"},
	{Name: "firefox", Engine: EnginePlaywright, Browser: "firefox"},
	{Name: "webkit", Engine: EnginePlaywright, Browser: "webkit"},
	{Name: "mobile-chrome", Engine: EngineRod, Browser: "chromium", Device: "Pixel 2"},
	{Name: "mobile-safari", Engine: EnginePlaywright, Browser: "webkit", Device: "iPhone 13"},
	{Name: "pw-chromium", Engine: EnginePlaywright, Browser: "chromium"},
}

// Projects returns every registered project in display order.
func Projects() []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	return out
}

// LookupProject finds a project by name (case-insensitive).
func LookupProject(name string) (Project, error) {
	for _, p := range projects {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	return Project{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProject, name, strings.Join(names, ", "))
}
