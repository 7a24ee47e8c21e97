// Package providers defines the interface that all remote suggestion providers must implement.
package providers

import (
	"context"
	"fmt"
	"strconv"
)

// DefaultProperty is the display property used when none is configured.
const DefaultProperty = "text"

// Item is a single suggestion record. Only the display property is
// interpreted; "image" and "extra" are optional display fields and every other
// field is passed through to the consumer untouched.
type Item map[string]any

// String returns the value of property formatted as display text.
// Missing or null properties yield an empty string.
func (i Item) String(property string) string {
	switch v := i[property].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Image returns the optional image field, if it is a string.
func (i Item) Image() (string, bool) {
	s, ok := i["image"].(string)
	return s, ok
}

// Extra returns the optional extra field, if it is a string.
func (i Item) Extra() (string, bool) {
	s, ok := i["extra"].(string)
	return s, ok
}

// ID returns the "id" field formatted as a string.
func (i Item) ID() string {
	return i.String("id")
}

// QueryOptions contains options for search operations.
type QueryOptions struct {
	// Property is the display property results are matched on.
	Property string

	// MaxResults limits the number of results returned. Zero means no limit.
	MaxResults int

	// CaseSensitive controls whether searches are case-sensitive.
	CaseSensitive bool
}

// IndexOptions contains options for indexing operations.
type IndexOptions struct {
	// Property is the display property whose value gets indexed.
	Property string

	// Score is the relevance score for this entry.
	// Higher scores indicate more relevant results.
	Score float64

	// CaseSensitive determines if the indexed text preserves case.
	CaseSensitive bool
}

// Provider defines the interface that all remote providers must implement.
// All methods must be safe for concurrent use.
type Provider interface {
	// Search returns the items matching query. The results are treated as
	// already filtered: the caller sorts, truncates and highlights them but
	// does not match them again.
	// A nil slice with a nil error means the backend answered with nothing
	// to show; an empty non-nil slice means "no results".
	Search(ctx context.Context, query string, options QueryOptions) ([]Item, error)

	// Close releases resources held by the provider.
	// It is safe to call multiple times.
	Close() error
}

// Indexer is implemented by providers that own a searchable index
// and can be populated from Go code.
type Indexer interface {
	// Index adds or replaces an item in the provider's namespace.
	// The item's "id" field identifies it.
	Index(ctx context.Context, item Item, options IndexOptions) error

	// DeleteAll removes every item of the provider's namespace.
	// This operation cannot be undone.
	DeleteAll(ctx context.Context) error
}
