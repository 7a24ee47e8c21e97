package jsonsuggest

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two items: negative when a sorts first, positive when b
// does, zero when they are equivalent. A nil Comparator keeps input order.
type Comparator func(a, b Item) int

// ByProperty orders items by the byte order of a property.
func ByProperty(property string) Comparator {
	return func(a, b Item) int {
		return strings.Compare(a.String(property), b.String(property))
	}
}

// CollateByProperty orders items by a property using the collation rules of tag,
// ignoring case.
func CollateByProperty(tag language.Tag, property string) Comparator {
	var mu sync.Mutex
	c := collate.New(tag, collate.IgnoreCase)
	return func(a, b Item) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(a.String(property), b.String(property))
	}
}

// Reverse inverts a comparator.
func Reverse(cmp Comparator) Comparator {
	return func(a, b Item) int {
		return cmp(b, a)
	}
}

// Pipeline turns raw matches into a ResultSet.
type Pipeline struct {
	// Comparator sorts the full match set. Nil keeps match order.
	Comparator Comparator

	// MaxResults caps the ResultSet after sorting. Zero means no cap.
	MaxResults int
}

// Run sorts matches and truncates them to MaxResults. Sorting always
// happens first so the cap keeps the top-ranked entries. The returned slice
// is never nil; an empty slice is the "no results" outcome.
func (p Pipeline) Run(matches []Item) []Item {
	results := make([]Item, len(matches))
	copy(results, matches)

	if p.Comparator != nil {
		slices.SortStableFunc(results, p.Comparator)
	}
	return limitResults(results, p.MaxResults)
}

func limitResults(items []Item, maxResults int) []Item {
	if maxResults > 0 && len(items) > maxResults {
		return items[:maxResults]
	}
	return items
}
