package elasticsearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	json "github.com/goccy/go-json"

	"github.com/remiges-tech/jsonsuggest/providers"
)

const (
	// maxResultWindow is the largest page Elasticsearch serves by default.
	// It bounds searches that ask for no limit.
	maxResultWindow = 10000

	// indexMappingTemplate is the Elasticsearch index mapping for suggestion documents.
	// The item payload is stored but not indexed.
	indexMappingTemplate = `{
		"settings": {
			"number_of_shards": %d,
			"number_of_replicas": %d
		},
		"mappings": {
			"properties": {
				"id": {"type": "keyword"},
				"key": {"type": "keyword"},
				"text": {
					"type": "text",
					"fields": {
						"keyword": {"type": "keyword"}
					}
				},
				"score": {"type": "float"},
				"case_sensitive": {"type": "boolean"},
				"item": {"type": "object", "enabled": false}
			}
		}
	}`
)

// ErrMissingID is returned by Index for items without an "id" field.
var ErrMissingID = errors.New("item has no id")

// Provider implements the suggest Provider and Indexer interfaces using Elasticsearch.
type Provider struct {
	client        *elasticsearch.Client
	index         string
	namespace     string
	refreshPolicy string
}

// document represents the structure stored in Elasticsearch.
type document struct {
	ID            string          `json:"id"`
	Key           string          `json:"key"`
	Text          string          `json:"text"`
	Score         float64         `json:"score"`
	CaseSensitive bool            `json:"case_sensitive"`
	Item          json.RawMessage `json:"item"`
}

// searchHit represents a single search result from Elasticsearch.
type searchHit struct {
	Source document `json:"_source"`
}

// searchResponse represents the Elasticsearch search response.
type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// New creates a new Elasticsearch provider with the given configuration.
func New(config *Config) (*Provider, error) {
	config.setDefaults()

	esConfig := elasticsearch.Config{
		Addresses: config.URLs,
		Username:  config.Username,
		Password:  config.Password,
		CloudID:   config.CloudID,
		APIKey:    config.APIKey,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	// Test connection
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("Elasticsearch connection error: %s", res.String())
	}

	provider := &Provider{
		client:        client,
		index:         config.Index,
		namespace:     config.Namespace,
		refreshPolicy: config.RefreshPolicy,
	}

	if err := provider.createIndexIfNotExists(config); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return provider, nil
}

// createIndexIfNotExists creates the index with appropriate mappings if it doesn't exist.
func (p *Provider) createIndexIfNotExists(config *Config) error {
	exists, err := p.indexExists()
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	mapping := fmt.Sprintf(indexMappingTemplate, config.NumberOfShards, config.NumberOfReplicas)

	req := esapi.IndicesCreateRequest{
		Index: p.index,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(context.Background(), p.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	return nil
}

// indexExists checks if the index exists.
func (p *Provider) indexExists() (bool, error) {
	req := esapi.IndicesExistsRequest{
		Index: []string{p.index},
	}

	res, err := req.Do(context.Background(), p.client)
	if err != nil {
		return false, err
	}
	defer func() { _ = res.Body.Close() }()

	const httpOK = 200
	return res.StatusCode == httpOK, nil
}

// Index adds or replaces an item. The item's "id" field identifies it and
// options.Property names the field whose text is searchable.
func (p *Provider) Index(ctx context.Context, item providers.Item, options providers.IndexOptions) error {
	id := item.ID()
	if id == "" {
		return ErrMissingID
	}
	property := options.Property
	if property == "" {
		property = providers.DefaultProperty
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", id, err)
	}

	docJSON, err := json.Marshal(document{
		ID:            id,
		Key:           p.namespace,
		Text:          item.String(property),
		Score:         options.Score,
		CaseSensitive: options.CaseSensitive,
		Item:          payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      p.index,
		DocumentID: p.documentID(id),
		Body:       bytes.NewReader(docJSON),
		Refresh:    p.refreshPolicy,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("failed to index document: %s", res.String())
	}

	return nil
}

// Search returns the items whose text contains query, highest index score
// first. An empty query returns every item of the namespace.
func (p *Provider) Search(ctx context.Context, query string, options providers.QueryOptions) ([]providers.Item, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p.buildQuery(query, options)); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	size := options.MaxResults
	if size <= 0 || size > maxResultWindow {
		size = maxResultWindow
	}

	req := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  &buf,
		Size:  &size,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	return parseSearchResponse(res.Body)
}

// buildQuery constructs a substring query on the exact text, restricted to
// the provider's namespace.
func (p *Provider) buildQuery(query string, options providers.QueryOptions) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{
				"term": map[string]interface{}{
					"key": p.namespace,
				},
			},
		},
	}

	if query != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"wildcard": map[string]interface{}{
					"text.keyword": map[string]interface{}{
						"value":            "*" + escapeWildcard(query) + "*",
						"case_insensitive": !options.CaseSensitive,
					},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"sort": []interface{}{
			map[string]interface{}{"score": "desc"},
			map[string]interface{}{"text.keyword": "asc"},
		},
	}
}

// parseSearchResponse decodes the stored item payloads of every hit.
func parseSearchResponse(body io.Reader) ([]providers.Item, error) {
	var response searchResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]providers.Item, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		var item providers.Item
		if err := json.Unmarshal(hit.Source.Item, &item); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", hit.Source.ID, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// Delete removes an item from the index.
func (p *Provider) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      p.index,
		DocumentID: p.documentID(id),
		Refresh:    p.refreshPolicy,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	// 404 is not an error for delete (idempotent)
	const httpNotFound = 404
	if res.IsError() && res.StatusCode != httpNotFound {
		return fmt.Errorf("failed to delete document: %s", res.String())
	}

	return nil
}

// DeleteAll removes every item of the provider's namespace.
func (p *Provider) DeleteAll(ctx context.Context) error {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"key": p.namespace,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	refresh := p.refreshPolicy == "true"
	req := esapi.DeleteByQueryRequest{
		Index:   []string{p.index},
		Body:    &buf,
		Refresh: &refresh,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("failed to delete by query: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("failed to delete by query: %s", res.String())
	}

	return nil
}

// Close closes the provider connection.
func (p *Provider) Close() error {
	// The Elasticsearch Go client doesn't have a Close method
	// as it uses standard HTTP connections that are managed by Go's http package
	return nil
}

// documentID creates a unique document ID from the namespace and item id.
func (p *Provider) documentID(id string) string {
	return p.namespace + ":" + id
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// escapeWildcard makes every character of s match literally in a wildcard query.
func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
