// Package jsonsuggest turns a text input into an autosuggest control.
//
// As the user types, the widget matches the input against a dataset it holds
// or against a remote provider, builds a sorted, truncated and highlighted
// result list, and lets the user commit a choice with the keyboard or the
// pointer. Presentation is delegated to a Renderer; commits and dataset
// changes are reported to Observers.
//
// Remote providers self-register during package initialization, the same way
// database/sql drivers do.
//
// Basic usage:
//
//	import (
//		"github.com/remiges-tech/jsonsuggest"
//		_ "github.com/remiges-tech/jsonsuggest/providers/http"
//	)
//
//	config := jsonsuggest.NewConfig(jsonsuggest.Inline{Items: []jsonsuggest.Item{
//		{"id": 1, "text": "Thomas"},
//		{"id": 2, "text": "Frederic"},
//	}})
//	config.Options.MaxResults = 10
//	config.Options.OnSelect = func(item jsonsuggest.Item) {
//		fmt.Println("picked", item.String("text"))
//	}
//
//	w, err := jsonsuggest.New(config, renderer)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer w.Close()
//
//	w.Input("om")              // renders Th<em>om</em>as
//	w.Key(jsonsuggest.KeyDown) // highlights Thomas
//	w.Key(jsonsuggest.KeyEnter)
//
// For a remote endpoint, use jsonsuggest.RemoteURL("https://example.com/search")
// as the source; the endpoint receives the raw input as the "search" query
// parameter and answers with a JSON array.
package jsonsuggest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/remiges-tech/jsonsuggest/providers"
)

// Item is a single suggestion record. See providers.Item.
type Item = providers.Item

// ProviderFactory creates a Provider instance from a configuration.
// The factory must type-assert the config parameter to its expected type.
type ProviderFactory func(config interface{}) (providers.Provider, error)

var (
	factoriesMu       sync.RWMutex
	providerFactories = make(map[string]ProviderFactory)
)

// RegisterProvider registers a remote provider factory.
// Typically called from a provider's init() function. The name is
// case-insensitive. Registering with an existing name overwrites it.
//
// Example:
//
//	package myprovider
//
//	func init() {
//	    jsonsuggest.RegisterProvider("myprovider", NewProvider)
//	}
//
//	func NewProvider(config interface{}) (providers.Provider, error) {
//	    cfg, ok := config.(Config)
//	    if !ok {
//	        return nil, errors.New("invalid config type")
//	    }
//	    return &Provider{config: cfg}, nil
//	}
func RegisterProvider(name string, factory ProviderFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	providerFactories[strings.ToLower(name)] = factory
}

// OpenProvider builds the provider a Remote source names.
// Returns ErrProviderNotFound if the provider is not registered.
func OpenProvider(remote Remote) (providers.Provider, error) {
	factoriesMu.RLock()
	factory, exists := providerFactories[strings.ToLower(remote.Name)]
	factoriesMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, remote.Name)
	}

	provider, err := factory(remote.Config)
	if err != nil {
		return nil, fmt.Errorf("open %s provider: %w", remote.Name, err)
	}
	return provider, nil
}
