package jsonsuggest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/remiges-tech/jsonsuggest/internal/logger"
	"github.com/remiges-tech/jsonsuggest/providers"
)

func testLogger() *log.Logger {
	return logger.Discard()
}

// mockProvider is an in-memory provider for testing. Queries listed in block
// wait for their channel to close, ignoring the context.
type mockProvider struct {
	mu     sync.Mutex
	items  []Item
	calls  []string
	block  map[string]chan struct{}
	err    error
	null   bool
	closed int
}

func newMockProvider(items ...Item) *mockProvider {
	return &mockProvider{
		items: items,
		block: make(map[string]chan struct{}),
	}
}

func (m *mockProvider) Search(_ context.Context, query string, options providers.QueryOptions) ([]Item, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	wait := m.block[query]
	m.mu.Unlock()

	if wait != nil {
		<-wait
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.null {
		return nil, nil
	}

	results := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		if strings.Contains(strings.ToLower(item.String(options.Property)), strings.ToLower(query)) {
			results = append(results, item)
		}
	}
	return results, nil
}

func (m *mockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// hold makes searches for query wait until the returned function is called.
func (m *mockProvider) hold(query string) func() {
	ch := make(chan struct{})
	m.mu.Lock()
	m.block[query] = ch
	m.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (m *mockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

//nolint:gochecknoinits // test provider registration
func init() {
	RegisterProvider("mock", func(config interface{}) (providers.Provider, error) {
		m, ok := config.(*mockProvider)
		if !ok {
			return nil, errors.New("invalid config type")
		}
		return m, nil
	})
}

func TestProviderRegistration(t *testing.T) {
	m := newMockProvider()

	tests := []struct {
		name    string
		remote  Remote
		wantErr error
	}{
		{name: "registered", remote: Remote{Name: "mock", Config: m}},
		{name: "case-insensitive name", remote: Remote{Name: "MOCK", Config: m}},
		{name: "unknown provider", remote: Remote{Name: "nonexistent"}, wantErr: ErrProviderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := OpenProvider(tt.remote)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("OpenProvider() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenProvider() error = %v", err)
			}
			if p != m {
				t.Errorf("OpenProvider() = %v, want the configured mock", p)
			}
		})
	}

	_, err := OpenProvider(Remote{Name: "mock", Config: "wrong"})
	if err == nil || !strings.Contains(err.Error(), "open mock provider") {
		t.Errorf("OpenProvider() with bad config error = %v, want wrapped factory error", err)
	}
}

func TestNew_Sources(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantErr    error
		wantParse  bool
		wantItems  int
		wantRemote bool
	}{
		{
			name:      "inline source",
			config:    NewConfig(Inline{Items: []Item{{"text": "a"}, {"text": "b"}}}),
			wantItems: 2,
		},
		{
			name: "data as JSON string",
			config: func() Config {
				c := NewConfig(nil)
				c.Options.Data = `[{"id":1,"text":"Thomas"}]`
				return c
			}(),
			wantItems: 1,
		},
		{
			name: "data as maps",
			config: func() Config {
				c := NewConfig(nil)
				c.Options.Data = []map[string]any{{"text": "x"}}
				return c
			}(),
			wantItems: 1,
		},
		{
			name: "malformed JSON",
			config: func() Config {
				c := NewConfig(nil)
				c.Options.Data = `[{"text":`
				return c
			}(),
			wantParse: true,
		},
		{
			name: "unsupported data type",
			config: func() Config {
				c := NewConfig(nil)
				c.Options.Data = 42
				return c
			}(),
			wantParse: true,
		},
		{
			name:    "no source",
			config:  NewConfig(nil),
			wantErr: ErrNoSource,
		},
		{
			name:    "unregistered provider",
			config:  NewConfig(Remote{Name: "gopher"}),
			wantErr: ErrProviderNotFound,
		},
		{
			name:       "remote source",
			config:     NewConfig(Remote{Name: "mock", Config: newMockProvider()}),
			wantRemote: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.config, nil)
			switch {
			case tt.wantParse:
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("New() error = %v, want *ParseError", err)
				}
				return
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			case err != nil:
				t.Fatalf("New() error = %v", err)
			}
			defer w.Close()

			if got := len(w.Data()); got != tt.wantItems {
				t.Errorf("len(Data()) = %d, want %d", got, tt.wantItems)
			}
			if got := w.fetch != nil; got != tt.wantRemote {
				t.Errorf("remote = %v, want %v", got, tt.wantRemote)
			}
		})
	}
}
