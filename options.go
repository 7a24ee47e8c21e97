package jsonsuggest

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"

	"github.com/remiges-tech/jsonsuggest/providers"
)

// defaultMinCharacters is the query length floor.
const defaultMinCharacters = 1

// defaultNotCharacter is the negation prefix.
const defaultNotCharacter = "!"

// defaultMaxHeight is the result panel height hint, in pixels or rows.
const defaultMaxHeight = 350

// defaultDebounce is the quiet period before a remote search is issued.
const defaultDebounce = 500 * time.Millisecond

// defaultFetchTimeout bounds a single remote search.
const defaultFetchTimeout = 10 * time.Second

// httpProviderName is the provider used when only Options.URL is set.
const httpProviderName = "http"

// Source says where the widget's candidates come from: either an Inline
// dataset held by the widget or a Remote provider.
type Source interface {
	isSource()
}

// Inline is a dataset held and matched locally.
type Inline struct {
	Items []Item
}

// Remote is a registered provider queried through the Fetch Orchestrator.
type Remote struct {
	// Name is the registered provider type, e.g. "http" or "redis".
	Name string

	// Config is handed to the provider factory, which type-asserts it.
	Config interface{}
}

func (Inline) isSource() {}
func (Remote) isSource() {}

// ParseInline decodes a JSON-encoded array of items.
// A malformed document yields a *ParseError.
func ParseInline(data string) (Inline, error) {
	var items []Item
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return Inline{}, &ParseError{Source: "data", Err: err}
	}
	return Inline{Items: items}, nil
}

// RemoteURL is the Remote source for the plain HTTP search protocol.
// The http provider package must be imported for it to resolve.
func RemoteURL(url string) Remote {
	return Remote{Name: httpProviderName, Config: url}
}

// Config holds configuration for the widget.
type Config struct {
	// Source selects local or remote matching. When nil it is derived from
	// Options.Data, then Options.URL.
	Source Source

	// Options contains behavior settings.
	Options Options
}

// Options contains behavior settings.
// Use DefaultOptions() for default values.
type Options struct {
	// URL is the remote search endpoint, used when Source is nil and Data is empty.
	URL string

	// Data is the inline dataset when Source is nil: a []Item, a
	// []map[string]any, a []any of objects or a JSON-encoded string.
	Data any

	// MinCharacters is the minimum input length before a search runs.
	// Default: 1.
	MinCharacters int

	// MaxResults caps the ResultSet. Zero means no cap.
	MaxResults int

	// WildCard is a match-all token inside queries. Empty disables it.
	WildCard string

	// Exact anchors matching at the start of the display text.
	// Nil means "anchor when WildCard is set".
	Exact *bool

	// CaseSensitive makes matching and highlighting case-sensitive.
	// Default: false.
	CaseSensitive bool

	// NotCharacter at the start of a query negates it. Empty disables negation.
	// Default: "!".
	NotCharacter string

	// MaxHeight and Width are passed through to the renderer.
	MaxHeight int
	Width     int

	// HighlightMatches wraps matched text in <em>. Default: true.
	HighlightMatches bool

	// Property is the item field shown and matched. Default: "text".
	Property string

	// BubbleReturn lets Enter inside the input reach the surrounding form.
	BubbleReturn bool

	// AutoMatchOnBlur commits the single exact match when the input loses focus.
	AutoMatchOnBlur bool

	// SortResults orders the matches before truncation. Nil keeps match order.
	SortResults Comparator

	// OnSelect is registered as a selection observer.
	OnSelect func(Item)

	// Debounce is the quiet period before a remote search. Default: 500ms.
	Debounce time.Duration

	// FetchTimeout bounds each remote search. Default: 10s.
	FetchTimeout time.Duration

	// Logger overrides the default stderr logger.
	Logger *log.Logger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		MinCharacters:    defaultMinCharacters,
		NotCharacter:     defaultNotCharacter,
		MaxHeight:        defaultMaxHeight,
		HighlightMatches: true,
		Property:         providers.DefaultProperty,
		Debounce:         defaultDebounce,
		FetchTimeout:     defaultFetchTimeout,
	}
}

// NewConfig creates a new configuration with default options.
func NewConfig(source Source) Config {
	return Config{
		Source:  source,
		Options: DefaultOptions(),
	}
}

// NewConfigWithOptions creates a new configuration with custom options.
func NewConfigWithOptions(source Source, options Options) Config {
	return Config{
		Source:  source,
		Options: options,
	}
}

// exact resolves the Exact default.
func (o Options) exact() bool {
	if o.Exact != nil {
		return *o.Exact
	}
	return o.WildCard != ""
}

// patternSettings is the settings snapshot fed to the Pattern Compiler.
func (o Options) patternSettings() PatternSettings {
	return PatternSettings{
		WildCard:      o.WildCard,
		NotCharacter:  o.NotCharacter,
		CaseSensitive: o.CaseSensitive,
		Exact:         o.exact(),
	}
}

// withDefaults fills the fields whose zero value is not usable.
func (o Options) withDefaults() Options {
	if o.Property == "" {
		o.Property = providers.DefaultProperty
	}
	if o.Debounce <= 0 {
		o.Debounce = defaultDebounce
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = defaultFetchTimeout
	}
	if o.MinCharacters < 0 {
		o.MinCharacters = 0
	}
	return o
}

// resolveSource picks the Source of a Config.
func resolveSource(config Config) (Source, error) {
	if config.Source != nil {
		return config.Source, nil
	}

	switch data := config.Options.Data.(type) {
	case nil:
	case string:
		if data != "" {
			return ParseInline(data)
		}
	case []Item:
		return Inline{Items: data}, nil
	case []map[string]any:
		items := make([]Item, len(data))
		for i, m := range data {
			items[i] = m
		}
		return Inline{Items: items}, nil
	case []any:
		items := make([]Item, len(data))
		for i, v := range data {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, &ParseError{Source: "data", Err: fmt.Errorf("element %d: %w", i, errUnsupportedData(v))}
			}
			items[i] = m
		}
		return Inline{Items: items}, nil
	default:
		return nil, &ParseError{Source: "data", Err: errUnsupportedData(data)}
	}

	if config.Options.URL != "" {
		return RemoteURL(config.Options.URL), nil
	}
	return nil, ErrNoSource
}
