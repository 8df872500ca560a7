// Package fixtures loads the static test data file shared by the UI and API
// tests.
//
// The file is JSON (test_data/test_data.json) or YAML with the same shape.
// String values starting with "$" name an environment variable and are
// resolved with ResolveEnv at the point of use.
package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the fixture file relative to the repository root.
var DefaultPath = filepath.Join("test_data", "test_data.json")

// DefaultSearchTerms are used when the fixture lists none.
var DefaultSearchTerms = []string{"Top"}

// DefaultRequestTimeout applies when api.timeout is unset.
const DefaultRequestTimeout = 30 * time.Second

// User is a login fixture.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Valid    bool   `json:"valid" yaml:"valid"`
}

// InvalidCredential is a UI login attempt expected to fail.
type InvalidCredential struct {
	ID            string `json:"id" yaml:"id"`
	Email         string `json:"email" yaml:"email"`
	Password      string `json:"password" yaml:"password"`
	ErrorContains string `json:"error_contains" yaml:"error_contains"`
}

// LoginAttempt is an API login attempt with its expected envelope.
type LoginAttempt struct {
	ID              string `json:"id" yaml:"id"`
	Email           string `json:"email" yaml:"email"`
	Password        string `json:"password" yaml:"password"`
	ExpectedCode    int    `json:"expected_code" yaml:"expected_code"`
	ExpectedMessage string `json:"expected_message" yaml:"expected_message"`
}

// API holds the API test settings.
type API struct {
	BaseURL              string            `json:"base_url" yaml:"base_url"`
	TimeoutSeconds       int               `json:"timeout" yaml:"timeout"`
	TestUserTemplate     map[string]string `json:"test_user_template" yaml:"test_user_template"`
	UpdateUserTemplate   map[string]string `json:"update_user_template" yaml:"update_user_template"`
	SearchTerms          []string          `json:"search_terms" yaml:"search_terms"`
	InvalidLoginAttempts []LoginAttempt    `json:"invalid_login_attempts" yaml:"invalid_login_attempts"`
}

// Data is the whole fixture file.
type Data struct {
	Users              []User              `json:"users" yaml:"users"`
	InvalidCredentials []InvalidCredential `json:"invalid_credentials" yaml:"invalid_credentials"`
	API                API                 `json:"api" yaml:"api"`
}

// Load reads the fixture file at path. The format follows the extension:
// .yaml and .yml are YAML, anything else is JSON.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	data := &Data{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, data)
	default:
		err = json.Unmarshal(raw, data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}
	return data, nil
}

// ValidUsers returns the users marked valid.
func (d *Data) ValidUsers() []User {
	var out []User
	for _, u := range d.Users {
		if u.Valid {
			out = append(out, u)
		}
	}
	return out
}

// SearchTermsOrDefault returns the configured search terms, or
// DefaultSearchTerms when there are none.
func (a API) SearchTermsOrDefault() []string {
	if len(a.SearchTerms) == 0 {
		return DefaultSearchTerms
	}
	return a.SearchTerms
}

// RequestTimeout returns the per-request timeout.
func (a API) RequestTimeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// UserForm builds a createAccount form from the user template with email and
// password filled in. The template itself is not modified.
func (a API) UserForm(email, password string) map[string]string {
	return merge(a.TestUserTemplate, email, password)
}

// UpdateForm builds an updateAccount form from the update template.
func (a API) UpdateForm(email, password string) map[string]string {
	return merge(a.UpdateUserTemplate, email, password)
}

// TemplatePassword is the password the user template registers with.
func (a API) TemplatePassword() string {
	return ResolveEnv(a.TestUserTemplate["password"])
}

func merge(template map[string]string, email, password string) map[string]string {
	out := make(map[string]string, len(template)+2)
	for k, v := range template {
		out[k] = ResolveEnv(v)
	}
	out["email"] = email
	if password != "" {
		out["password"] = password
	}
	return out
}

// ResolveEnv returns the environment variable named by a "$NAME" value.
// Other values, and names that are not set, are returned unchanged.
func ResolveEnv(value string) string {
	if !strings.HasPrefix(value, "$") || len(value) == 1 {
		return value
	}
	if v, ok := os.LookupEnv(value[1:]); ok {
		return v
	}
	return value
}

// UniqueEmail returns a throwaway address such as testbot_1a2b3c4d5e6f@example.com.
func UniqueEmail() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "testbot_" + id[:12] + "@example.com"
}
