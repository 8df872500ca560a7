package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Alternative
	}{
		{
			name: "plain css",
			raw:  "input[data-qa='login-email']",
			want: []Alternative{{CSS: "input[data-qa='login-email']"}},
		},
		{
			name: "xpath",
			raw:  "//a[contains(text(),'Logged in as')]",
			want: []Alternative{{XPath: "//a[contains(text(),'Logged in as')]"}},
		},
		{
			name: "parenthesised xpath",
			raw:  "(//div[@class='x'])[2]",
			want: []Alternative{{XPath: "(//div[@class='x'])[2]"}},
		},
		{
			name: "has-text single quotes",
			raw:  "button:has-text('Consent')",
			want: []Alternative{{CSS: "button", Text: "Consent"}},
		},
		{
			name: "has-text double quotes after attribute",
			raw:  `a[href='/view_cart']:has-text("View Cart")`,
			want: []Alternative{{CSS: "a[href='/view_cart']", Text: "View Cart"}},
		},
		{
			name: "bare has-text",
			raw:  ":has-text('Continue')",
			want: []Alternative{{CSS: "*", Text: "Continue"}},
		},
		{
			name: "alternatives",
			raw:  "#checkoutModal .close, #checkoutModal a[href='/login']",
			want: []Alternative{
				{CSS: "#checkoutModal .close"},
				{CSS: "#checkoutModal a[href='/login']"},
			},
		},
		{
			name: "comma inside attribute and text is not a separator",
			raw:  "a[title='a,b'], a:has-text('x, y')",
			want: []Alternative{
				{CSS: "a[title='a,b']"},
				{CSS: "a", Text: "x, y"},
			},
		},
		{
			name: "comma inside pseudo class",
			raw:  ".fc-consent-root, :is(.a, .b)",
			want: []Alternative{
				{CSS: ".fc-consent-root"},
				{CSS: ":is(.a, .b)"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSelector(tt.raw)
			assert.Equal(t, tt.raw, got.Raw)
			assert.Equal(t, tt.want, got.Alternatives)
		})
	}
}

func TestParseSelector_EmptyParts(t *testing.T) {
	got := ParseSelector(" , .a ,")
	require.Len(t, got.Alternatives, 1)
	assert.Equal(t, ".a", got.Alternatives[0].CSS)
}

func TestMatchesText(t *testing.T) {
	assert.True(t, MatchesText("  Logged in as   Jane ", "logged in as jane"))
	assert.True(t, MatchesText("View\nCart", "view cart"))
	assert.False(t, MatchesText("Login", "Logout"))
	assert.True(t, MatchesText("anything", ""))
}

func TestGlobToRegexp(t *testing.T) {
	tests := []struct {
		glob  string
		url   string
		match bool
	}{
		{"**/checkout**", "https://automationexercise.com/checkout", true},
		{"**/checkout**", "https://automationexercise.com/checkout?x=1", true},
		{"**/checkout**", "https://automationexercise.com/view_cart", false},
		{"**/googleads**", "https://googleads.g.doubleclick.net/pagead/id", true},
		{"**/*.ads.**", "https://cdn.ads.example.com/x.js", true},
		{"**/*.ads.**", "https://example.com/ads/x.js", false},
		{"https://*.com/login", "https://shop.com/login", true},
		{"https://*.com/login", "https://shop.com/a/login", false},
		{"**/product_details/?", "http://h/product_details/1", true},
		{"**/product_details/?", "http://h/product_details/33", false},
	}

	for _, tt := range tests {
		t.Run(tt.glob+" "+tt.url, func(t *testing.T) {
			assert.Equal(t, tt.match, MatchURL(tt.glob, tt.url))
		})
	}
}

func TestGlobToRegexp_EscapesLiterals(t *testing.T) {
	re := GlobToRegexp("**/fc.yahoo.com**")
	assert.True(t, re.MatchString("https://fc.yahoo.com/x"))
	assert.False(t, re.MatchString("https://fcxyahooxcom/x"))
}

func TestCDPPattern(t *testing.T) {
	assert.Equal(t, "*/googleads*", cdpPattern("**/googleads**"))
	assert.Equal(t, "*/*.ads.*", cdpPattern("**/*.ads.**"))
	assert.Equal(t, "*", cdpPattern("****"))
}

func TestPlaywrightSelector(t *testing.T) {
	assert.Equal(t, "xpath=(//div)[2]//a", playwrightSelector("(//div)[2]//a"))
	assert.Equal(t, "xpath=//h2", playwrightSelector("//h2"))
	assert.Equal(t, "a:has-text('Continue')", playwrightSelector("a:has-text('Continue')"))
	assert.Equal(t, ".a, .b", playwrightSelector(".a, .b"))
}
