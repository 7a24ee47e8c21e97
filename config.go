package jsonsuggest

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// fileOptions mirrors the option names of a TOML config file:
//
//	url = "https://example.com/search"
//	minCharacters = 2
//	maxResults = 10
//	wildCard = "*"
//	caseSensitive = false
//	notCharacter = "!"
//	highlightMatches = true
//	property = "name"
//	autoMatchOnBlur = true
//	debounce = "300ms"
//
//	[[data]]
//	id = 1
//	text = "Thomas"
//
// data may also be an inline array of tables or a JSON-encoded string.
type fileOptions struct {
	URL              string   `toml:"url"`
	Data             any      `toml:"data"`
	MinCharacters    int      `toml:"minCharacters"`
	MaxResults       int      `toml:"maxResults"`
	WildCard         string   `toml:"wildCard"`
	Exact            *bool    `toml:"exact"`
	CaseSensitive    bool     `toml:"caseSensitive"`
	NotCharacter     string   `toml:"notCharacter"`
	MaxHeight        int      `toml:"maxHeight"`
	Width            int      `toml:"width"`
	HighlightMatches bool     `toml:"highlightMatches"`
	Property         string   `toml:"property"`
	BubbleReturn     bool     `toml:"bubbleReturn"`
	AutoMatchOnBlur  bool     `toml:"autoMatchOnBlur"`
	Debounce         duration `toml:"debounce"`
	FetchTimeout     duration `toml:"fetchTimeout"`
}

// duration decodes TOML strings such as "500ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoadConfigFile reads Options from a TOML file. Keys missing from the file
// keep their DefaultOptions values. Inline data in the file is decoded
// eagerly, so a malformed dataset fails here with a *ParseError.
// Code-only options (OnSelect, SortResults, Logger) are left unset.
func LoadConfigFile(path string) (Config, error) {
	fo := defaultFileOptions()
	if _, err := toml.DecodeFile(path, &fo); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return fo.config(path)
}

// ParseConfig is LoadConfigFile for TOML held in memory.
func ParseConfig(data string) (Config, error) {
	fo := defaultFileOptions()
	if _, err := toml.Decode(data, &fo); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return fo.config("")
}

func defaultFileOptions() fileOptions {
	d := DefaultOptions()
	return fileOptions{
		MinCharacters:    d.MinCharacters,
		NotCharacter:     d.NotCharacter,
		MaxHeight:        d.MaxHeight,
		HighlightMatches: d.HighlightMatches,
		Property:         d.Property,
		Debounce:         duration{d.Debounce},
		FetchTimeout:     duration{d.FetchTimeout},
	}
}

func (fo fileOptions) config(path string) (Config, error) {
	opts := Options{
		URL:              fo.URL,
		Data:             fo.Data,
		MinCharacters:    fo.MinCharacters,
		MaxResults:       fo.MaxResults,
		WildCard:         fo.WildCard,
		Exact:            fo.Exact,
		CaseSensitive:    fo.CaseSensitive,
		NotCharacter:     fo.NotCharacter,
		MaxHeight:        fo.MaxHeight,
		Width:            fo.Width,
		HighlightMatches: fo.HighlightMatches,
		Property:         fo.Property,
		BubbleReturn:     fo.BubbleReturn,
		AutoMatchOnBlur:  fo.AutoMatchOnBlur,
		Debounce:         fo.Debounce.Duration,
		FetchTimeout:     fo.FetchTimeout.Duration,
	}
	config := NewConfigWithOptions(nil, opts)

	source, err := resolveSource(config)
	switch {
	case err == nil:
		config.Source = source
	case errors.Is(err, ErrNoSource):
		// Left for the caller to fill in.
	default:
		var pe *ParseError
		if errors.As(err, &pe) && path != "" {
			pe.Source = path
		}
		return Config{}, err
	}
	return config, nil
}
