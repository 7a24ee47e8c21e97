package jsonsuggest

import (
	"html"
	"regexp"
	"strings"
)

const (
	emphasisOpen  = "<em>"
	emphasisClose = "</em>"
)

// Entry is one rendered row: the display markup and the item it came from.
type Entry struct {
	// Index is the row position within the ResultSet.
	Index int

	// Markup is the escaped display text with matches wrapped in <em>.
	Markup string

	// Image and Extra carry the optional display fields, unescaped.
	Image string
	Extra string

	Item Item
}

// Highlighter marks matched substrings in display text.
type Highlighter struct {
	// Enabled wraps matches in emphasis markers. When false text is only escaped.
	Enabled bool

	// CaseSensitive is used for locating spans, independently of the flag that
	// produced the match itself.
	CaseSensitive bool
}

// Highlight builds one Entry per item, highlighting fragment in its display property.
func (h Highlighter) Highlight(items []Item, fragment, property string) []Entry {
	re := h.compile(fragment)

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entry := Entry{
			Index:  i,
			Markup: markup(item.String(property), re),
			Item:   item,
		}
		entry.Image, _ = item.Image()
		entry.Extra, _ = item.Extra()
		entries = append(entries, entry)
	}
	return entries
}

// Markup highlights fragment in a single text.
func (h Highlighter) Markup(text, fragment string) string {
	return markup(text, h.compile(fragment))
}

func (h Highlighter) compile(fragment string) *regexp.Regexp {
	if !h.Enabled || fragment == "" {
		return nil
	}
	expr := "(?:" + fragment + ")"
	if !h.CaseSensitive {
		expr = caseInsensitiveFlag + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}

// markup escapes text and wraps every non-empty, non-overlapping match of re.
// Spans are located before escaping, so escaping never splits an entity.
// Text is normalized like the query first; NFC text passes through unchanged.
func markup(text string, re *regexp.Regexp) string {
	if re == nil {
		return html.EscapeString(text)
	}
	text = normalize(text)

	var b strings.Builder
	last := 0
	for _, span := range re.FindAllStringIndex(text, -1) {
		if span[0] == span[1] {
			continue
		}
		b.WriteString(html.EscapeString(text[last:span[0]]))
		b.WriteString(emphasisOpen)
		b.WriteString(html.EscapeString(text[span[0]:span[1]]))
		b.WriteString(emphasisClose)
		last = span[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// StripMarkup removes emphasis markers and unescapes the result, giving back
// the original display text.
func StripMarkup(s string) string {
	s = strings.ReplaceAll(s, emphasisOpen, "")
	s = strings.ReplaceAll(s, emphasisClose, "")
	return html.UnescapeString(s)
}
