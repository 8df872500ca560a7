// Package config resolves suite settings from the environment, a .env file at
// the repository root and an optional e2e.yaml.
//
// Precedence, highest first: real environment, .env, e2e.yaml, defaults.
// Suite knobs use the E2E_ prefix (E2E_BASE_URL, E2E_PROJECT, ...); the
// credential variables keep their historical names (TEST_USER_*, CARD_*).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for suite knobs.
const envPrefix = "E2E"

// Defaults.
const (
	DefaultBaseURL      = "https://automationexercise.com"
	DefaultProject      = "chromium"
	DefaultTimeout      = 30 * time.Second
	DefaultArtifactsDir = "test-results"
	DefaultReportsDir   = "reports"
	DefaultLogLevel     = "info"
)

// ErrNoRoot is returned when no go.mod is found above the start directory.
var ErrNoRoot = errors.New("repository root not found")

// User is the account the logged-in flows use.
type User struct {
	Name     string
	Email    string
	Password string
}

// Missing lists the environment variables of every empty field.
func (u User) Missing() []string {
	return missing([][2]string{
		{"TEST_USER_NAME", u.Name},
		{"TEST_USER_EMAIL", u.Email},
		{"TEST_USER_PASSWORD", u.Password},
	})
}

// MissingCredentials lists the variables needed to log in (email and
// password) that are empty.
func (u User) MissingCredentials() []string {
	return missing([][2]string{
		{"TEST_USER_EMAIL", u.Email},
		{"TEST_USER_PASSWORD", u.Password},
	})
}

// Card is the payment card used by the order flow.
type Card struct {
	Name   string
	Number string
	CVC    string
	Month  string
	Year   string
}

// Missing lists the environment variables of every empty field.
func (c Card) Missing() []string {
	return missing([][2]string{
		{"CARD_NAME", c.Name},
		{"CARD_NUMBER", c.Number},
		{"CARD_CVC", c.CVC},
		{"CARD_EXPIRY_MONTH", c.Month},
		{"CARD_EXPIRY_YEAR", c.Year},
	})
}

func missing(fields [][2]string) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			out = append(out, f[0])
		}
	}
	return out
}

// Config is the resolved suite configuration.
type Config struct {
	Root         string        // Repository root; relative paths resolve against it
	BaseURL      string        // Site under test
	APIURL       string        // API root; empty means the fixture's api.base_url
	Project      string        // Browser project, see browser.Projects
	Headless     bool          // Run browsers headless
	Timeout      time.Duration // Default element timeout
	Tags         []string      // Tag filter; empty runs everything
	DataFile     string        // Fixture file
	ArtifactsDir string        // Per-run artifacts (failure screenshots)
	ReportsDir   string        // Reports and page-object screenshots
	LogLevel     string        // zap level
	CI           bool          // Running under CI

	User User
	Card Card
}

// ScreenshotDir is where page objects write screenshots.
func (c *Config) ScreenshotDir() string {
	return filepath.Join(c.ReportsDir, "screenshots")
}

// newViper builds a viper with defaults, the E2E_ prefix and the
// credential bindings.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("api_url", "")
	v.SetDefault("project", DefaultProject)
	v.SetDefault("headless", true)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("tags", "")
	v.SetDefault("data_file", filepath.Join("test_data", "test_data.json"))
	v.SetDefault("artifacts_dir", DefaultArtifactsDir)
	v.SetDefault("reports_dir", DefaultReportsDir)
	v.SetDefault("log_level", DefaultLogLevel)

	bind := map[string]string{
		"user.name":     "TEST_USER_NAME",
		"user.email":    "TEST_USER_EMAIL",
		"user.password": "TEST_USER_PASSWORD",
		"card.name":     "CARD_NAME",
		"card.number":   "CARD_NUMBER",
		"card.cvc":      "CARD_CVC",
		"card.month":    "CARD_EXPIRY_MONTH",
		"card.year":     "CARD_EXPIRY_YEAR",
		"ci":            "CI",
	}
	for key, env := range bind {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load resolves the configuration for the repository at root. An empty root
// is located by walking up from the working directory to go.mod; if none is
// found the working directory is used.
func Load(root string) (*Config, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root, err = FindRoot(wd)
		if err != nil {
			root = wd
		}
	}

	if err := LoadDotEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("e2e")
	v.AddConfigPath(root)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read e2e.yaml: %w", err)
		}
	}

	cfg := &Config{
		Root:         root,
		BaseURL:      strings.TrimRight(v.GetString("base_url"), "/"),
		APIURL:       strings.TrimRight(v.GetString("api_url"), "/"),
		Project:      v.GetString("project"),
		Headless:     v.GetBool("headless"),
		Timeout:      v.GetDuration("timeout"),
		Tags:         ParseTags(strings.Join(v.GetStringSlice("tags"), ",")),
		DataFile:     resolve(root, v.GetString("data_file")),
		ArtifactsDir: resolve(root, v.GetString("artifacts_dir")),
		ReportsDir:   resolve(root, v.GetString("reports_dir")),
		LogLevel:     v.GetString("log_level"),
		CI:           v.GetBool("ci"),
		User: User{
			Name:     v.GetString("user.name"),
			Email:    v.GetString("user.email"),
			Password: v.GetString("user.password"),
		},
		Card: Card{
			Name:   v.GetString("card.name"),
			Number: v.GetString("card.number"),
			CVC:    v.GetString("card.cvc"),
			Month:  v.GetString("card.month"),
			Year:   v.GetString("card.year"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base url is empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base url %q must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// HasTag reports whether the run's tag filter selects any of tags. An empty
// filter selects everything.
func (c *Config) HasTag(tags ...string) bool {
	if len(c.Tags) == 0 {
		return true
	}
	for _, want := range c.Tags {
		for _, have := range tags {
			if strings.EqualFold(strings.TrimPrefix(have, "@"), want) {
				return true
			}
		}
	}
	return false
}

// ParseTags splits a tag filter on commas and whitespace, dropping a leading
// "@" and duplicates.
func ParseTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		tag := strings.ToLower(strings.TrimPrefix(f, "@"))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FindRoot walks up from start to the first directory containing go.mod.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w from %s", ErrNoRoot, start)
		}
		dir = parent
	}
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
