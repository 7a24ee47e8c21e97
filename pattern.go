package jsonsuggest

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	anySequence         = ".*"
	caseInsensitiveFlag = "(?i)"
)

// PatternSettings is the part of Options that shapes how a query is compiled.
type PatternSettings struct {
	// WildCard is translated to "any sequence". Empty disables wildcards.
	WildCard string

	// NotCharacter negates the query when it is its first character. Empty disables negation.
	NotCharacter string

	// CaseSensitive controls the case flag of the compiled pattern.
	CaseSensitive bool

	// Exact anchors patterns at the start of the candidate string.
	Exact bool
}

// CompiledPattern is the matchable form of one query. User text only ever
// reaches the regular expression through regexp.QuoteMeta; the wildcard
// expansion, the anchors and the case flag are the only live syntax.
type CompiledPattern struct {
	re       *regexp.Regexp
	fragment string

	// Negate inverts the match result.
	Negate bool

	// MatchAll is set when the query body is empty: every candidate matches.
	MatchAll bool
}

// Compile turns raw query text into a CompiledPattern. forceExact anchors the
// pattern at both ends and is used by the blur auto-match path.
func Compile(query string, settings PatternSettings, forceExact bool) CompiledPattern {
	body := normalize(query)

	var p CompiledPattern
	if settings.NotCharacter != "" && strings.HasPrefix(body, settings.NotCharacter) {
		body = strings.TrimPrefix(body, settings.NotCharacter)
		p.Negate = true
	}

	if body == "" {
		p.MatchAll = true
		return p
	}

	p.fragment = escapeLiteral(body, settings.WildCard)

	expr := p.fragment
	switch {
	case forceExact:
		expr = "^" + expr + "$"
	case settings.Exact:
		expr = "^" + expr
	}
	if !settings.CaseSensitive {
		expr = caseInsensitiveFlag + expr
	}

	// Every piece of user text went through QuoteMeta, so this cannot fail.
	p.re = regexp.MustCompile(expr)
	return p
}

// normalize puts text in the form both sides of a match are compared in:
// invalid bytes become U+FFFD and the result is NFC.
func normalize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return norm.NFC.String(s)
}

// escapeLiteral quotes text for use inside a regular expression and
// expands every occurrence of wildCard to an "any sequence" token.
func escapeLiteral(text, wildCard string) string {
	if wildCard == "" {
		return regexp.QuoteMeta(text)
	}
	parts := strings.Split(text, wildCard)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, anySequence)
}

// Matches reports whether s satisfies the pattern, negation included. s is
// normalized the same way as the query.
func (p CompiledPattern) Matches(s string) bool {
	if p.MatchAll {
		return true
	}
	return p.re.MatchString(normalize(s)) != p.Negate
}

// Fragment returns the escaped, wildcard-expanded, non-anchored body used to
// locate highlight spans. Negated and match-all patterns highlight nothing.
func (p CompiledPattern) Fragment() string {
	if p.Negate || p.MatchAll {
		return ""
	}
	return p.fragment
}

// String returns the full regular expression, or "" for match-all patterns.
func (p CompiledPattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}
