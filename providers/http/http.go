// Package http implements the suggest Provider interface over the plain
// JSON search protocol: a GET request carrying the raw search text as a
// single query parameter, answered by a JSON array of items.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/remiges-tech/jsonsuggest/providers"
)

const (
	// defaultParam is the query parameter holding the search text.
	defaultParam = "search"

	// defaultTimeout bounds a request when the caller's context does not.
	defaultTimeout = 30 * time.Second

	// maxErrorBody is how much of a failed response body is quoted in errors.
	maxErrorBody = 512
)

// ErrEmptyURL is returned when no endpoint is configured.
var ErrEmptyURL = errors.New("empty endpoint URL")

// Config holds the endpoint parameters.
type Config struct {
	// URL is the search endpoint. Existing query parameters are preserved.
	URL string

	// Param is the query parameter carrying the search text. Default: "search".
	Param string

	// Header is added to every request.
	Header http.Header

	// Client overrides the HTTP client. Default: a client with a 30s timeout.
	Client *http.Client
}

// Provider implements the suggest Provider interface over HTTP.
// All methods are safe for concurrent use.
type Provider struct {
	endpoint *url.URL
	param    string
	header   http.Header
	client   *http.Client
}

// New creates a new HTTP provider. The endpoint is parsed but not contacted.
func New(config Config) (*Provider, error) {
	if config.URL == "" {
		return nil, ErrEmptyURL
	}
	endpoint, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	param := config.Param
	if param == "" {
		param = defaultParam
	}
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Provider{
		endpoint: endpoint,
		param:    param,
		header:   config.Header.Clone(),
		client:   client,
	}, nil
}

// Search issues one GET request carrying query unescaped in the search
// parameter. A JSON null body yields a nil slice.
func (p *Provider) Search(ctx context.Context, query string, _ providers.QueryOptions) ([]providers.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range p.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, fmt.Errorf("search failed: %s: %s", res.Status, body)
	}

	var items []providers.Item
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return items, nil
}

// Close releases idle connections of the underlying client.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Provider) requestURL(query string) string {
	u := *p.endpoint
	values := u.Query()
	values.Set(p.param, query)
	u.RawQuery = values.Encode()
	return u.String()
}
