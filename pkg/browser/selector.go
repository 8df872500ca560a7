package browser

import (
	"regexp"
	"strings"
)

// Selector is a parsed element selector. A selector string is a list of
// top-level comma-separated alternatives; each alternative is either
//   - XPath, when it starts with "//", "(/" or "./"
//   - CSS, optionally followed by :has-text('...') to keep only elements
//     whose text contains the given string (case-insensitive)
type Selector struct {
	Raw          string
	Alternatives []Alternative
}

// Alternative is one branch of a Selector.
type Alternative struct {
	CSS   string
	XPath string
	Text  string
}

const hasTextPrefix = ":has-text("

// ParseSelector splits raw into its alternatives.
func ParseSelector(raw string) Selector {
	sel := Selector{Raw: raw}
	for _, part := range splitTopLevel(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sel.Alternatives = append(sel.Alternatives, parseAlternative(part))
	}
	return sel
}

func parseAlternative(part string) Alternative {
	if isXPath(part) {
		return Alternative{XPath: part}
	}

	idx := strings.LastIndex(part, hasTextPrefix)
	if idx < 0 || !strings.HasSuffix(part, ")") {
		return Alternative{CSS: part}
	}

	css := strings.TrimSpace(part[:idx])
	if css == "" {
		css = "*"
	}
	text := unquote(strings.TrimSpace(part[idx+len(hasTextPrefix) : len(part)-1]))
	return Alternative{CSS: css, Text: text}
}

func isXPath(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "(/") || strings.HasPrefix(s, "./")
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' || first == '"') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// splitTopLevel splits s on sep, ignoring separators inside quotes,
// brackets and parentheses.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(parts, s[start:])
}

// MatchesText reports whether text contains want, ignoring case and
// collapsing whitespace the way a reader sees it.
func MatchesText(text, want string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return strings.Contains(norm(text), norm(want))
}

// GlobToRegexp converts a URL glob into an anchored regular expression.
// "**" matches any run of characters, "*" any run without "/", "?" one
// character. Everything else is literal.
func GlobToRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// MatchURL reports whether url matches the glob pattern.
func MatchURL(pattern, url string) bool {
	return GlobToRegexp(pattern).MatchString(url)
}

// cdpPattern converts a URL glob to the DevTools Fetch domain syntax,
// where "*" already matches any run of characters.
func cdpPattern(glob string) string {
	for strings.Contains(glob, "**") {
		glob = strings.ReplaceAll(glob, "**", "*")
	}
	return glob
}
