package http

import (
	"fmt"

	"github.com/remiges-tech/jsonsuggest"
	"github.com/remiges-tech/jsonsuggest/providers"
)

// init registers the HTTP provider. Import this package with a blank identifier
// to resolve Options.URL and jsonsuggest.RemoteURL sources:
//
//	import _ "github.com/remiges-tech/jsonsuggest/providers/http"
//
//nolint:gochecknoinits // init() is the idiomatic pattern for provider registration
func init() {
	jsonsuggest.RegisterProvider("http", NewProvider)
}

// NewProvider creates a new HTTP provider from the given configuration.
// It implements ProviderFactory and accepts an http.Config, a *http.Config
// or a bare endpoint URL string.
func NewProvider(config interface{}) (providers.Provider, error) {
	switch cfg := config.(type) {
	case Config:
		return New(cfg)
	case *Config:
		return New(*cfg)
	case string:
		return New(Config{URL: cfg})
	default:
		return nil, fmt.Errorf("invalid configuration type for HTTP provider: expected http.Config, got %T", config)
	}
}
