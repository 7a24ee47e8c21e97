package elasticsearch

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/remiges-tech/jsonsuggest/providers"
)

const testImage = "docker.elastic.co/elasticsearch/elasticsearch:8.18.1"

var (
	sharedContainer testcontainers.Container
	sharedURL       string
)

// TestMain starts a single-node Elasticsearch shared by the integration tests.
// With -short only the request-building tests run.
func TestMain(m *testing.M) {
	flag.Parse()
	ctx := context.Background()

	if !testing.Short() {
		container, url, err := setupSharedContainer(ctx)
		if err != nil {
			log.Fatalf("Failed to setup test container: %v", err)
		}
		sharedContainer = container
		sharedURL = url
	}

	code := m.Run()

	if sharedContainer != nil {
		if err := sharedContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}

	os.Exit(code)
}

func setupSharedContainer(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        testImage,
		ExposedPorts: []string{"9200/tcp"},
		Env: map[string]string{
			"discovery.type":         "single-node",
			"xpack.security.enabled": "false",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		},
		WaitingFor: wait.ForHTTP("/").WithPort("9200/tcp").WithStartupTimeout(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, "9200")
	if err != nil {
		return nil, "", err
	}

	return container, fmt.Sprintf("http://%s:%s", host, port.Port()), nil
}

func newTestProvider(t *testing.T, namespace string) *Provider {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Elasticsearch integration test in short mode")
	}

	p, err := New(&Config{
		URLs:          []string{sharedURL},
		Index:         "jsonsuggest-test",
		Namespace:     namespace,
		RefreshPolicy: "true",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func resultIDs(items []providers.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID()
	}
	return ids
}

func TestElasticsearchProvider_Search(t *testing.T) {
	p := newTestProvider(t, "people")
	ctx := context.Background()

	for i, item := range []providers.Item{
		{"id": "1", "text": "John Doe", "extra": "Sales"},
		{"id": "2", "text": "John Smith"},
		{"id": "3", "text": "Jane Doe"},
		{"id": "4", "text": "What? *Really*"},
	} {
		if err := p.Index(ctx, item, providers.IndexOptions{Score: float64(10 - i)}); err != nil {
			t.Fatalf("Index() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		query   string
		options providers.QueryOptions
		want    []string
	}{
		{"substring", "doe", providers.QueryOptions{}, []string{"1", "3"}},
		{"case-insensitive", "JOHN", providers.QueryOptions{}, []string{"1", "2"}},
		{"case-sensitive miss", "JOHN", providers.QueryOptions{CaseSensitive: true}, []string{}},
		{"limited", "o", providers.QueryOptions{MaxResults: 2}, []string{"1", "2"}},
		{"literal wildcard characters", "?", providers.QueryOptions{}, []string{"4"}},
		{"literal star", "*r", providers.QueryOptions{}, []string{"4"}},
		{"empty query", "", providers.QueryOptions{}, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := p.Search(ctx, tt.query, tt.options)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if got := resultIDs(items); !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q) IDs = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	items, err := p.Search(ctx, "john doe", providers.QueryOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Search() got %d results, want 1", len(items))
	}
	if extra, ok := items[0].Extra(); !ok || extra != "Sales" {
		t.Errorf("Extra() = %q, %v, want %q, true", extra, ok, "Sales")
	}
}

func TestElasticsearchProvider_DeleteAll(t *testing.T) {
	ctx := context.Background()
	a := newTestProvider(t, "a")
	b := newTestProvider(t, "b")

	for _, p := range []*Provider{a, b} {
		if err := p.Index(ctx, providers.Item{"id": "1", "text": "Thomas"}, providers.IndexOptions{}); err != nil {
			t.Fatalf("Index() error = %v", err)
		}
	}

	if err := a.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if err := a.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}

	got, err := a.Search(ctx, "thom", providers.QueryOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("namespace a after DeleteAll got %d results, want 0", len(got))
	}

	got, err = b.Search(ctx, "thom", providers.QueryOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("namespace b got %d results, want 1", len(got))
	}
}

func TestElasticsearchProvider_IndexMissingID(t *testing.T) {
	p := &Provider{namespace: "default"}
	if err := p.Index(context.Background(), providers.Item{"text": "x"}, providers.IndexOptions{}); err != ErrMissingID {
		t.Errorf("Index() error = %v, want %v", err, ErrMissingID)
	}
}

func TestEscapeWildcard(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a*b", `a\*b`},
		{"why?", `why\?`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeWildcard(tt.in); got != tt.want {
			t.Errorf("escapeWildcard(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildQuery(t *testing.T) {
	p := &Provider{namespace: "people"}

	tests := []struct {
		name    string
		query   string
		options providers.QueryOptions
		want    string
	}{
		{
			name:  "empty query filters namespace only",
			query: "",
			want:  `{"query":{"bool":{"filter":[{"term":{"key":"people"}}]}},"sort":[{"score":"desc"},{"text.keyword":"asc"}]}`,
		},
		{
			name:  "case-insensitive wildcard",
			query: "om",
			want: `{"query":{"bool":{"filter":[{"term":{"key":"people"}}],` +
				`"must":[{"wildcard":{"text.keyword":{"case_insensitive":true,"value":"*om*"}}}]}},` +
				`"sort":[{"score":"desc"},{"text.keyword":"asc"}]}`,
		},
		{
			name:    "case-sensitive escaped",
			query:   "a*",
			options: providers.QueryOptions{CaseSensitive: true},
			want: `{"query":{"bool":{"filter":[{"term":{"key":"people"}}],` +
				`"must":[{"wildcard":{"text.keyword":{"case_insensitive":false,"value":"*a\\**"}}}]}},` +
				`"sort":[{"score":"desc"},{"text.keyword":"asc"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(p.buildQuery(tt.query, tt.options))
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("buildQuery() = %s, want %s", got, tt.want)
			}
		})
	}
}
