package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remiges-tech/jsonsuggest"
	"github.com/remiges-tech/jsonsuggest/providers"
)

func TestProvider_Search(t *testing.T) {
	var gotQuery, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search")
		gotHeader = r.Header.Get("X-Tenant")
		assert.Equal(t, "1", r.URL.Query().Get("v"), "existing query parameters are kept")
		fmt.Fprint(w, `[{"id":1,"text":"Thomas","image":"t.png"},{"id":2,"text":"Tom & Jerry"}]`)
	}))
	defer srv.Close()

	p, err := New(Config{
		URL:    srv.URL + "/people?v=1",
		Header: http.Header{"X-Tenant": []string{"acme"}},
	})
	require.NoError(t, err)
	defer p.Close()

	items, err := p.Search(context.Background(), "om & !x", providers.QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, "om & !x", gotQuery)
	assert.Equal(t, "acme", gotHeader)
	require.Len(t, items, 2)
	assert.Equal(t, "Thomas", items[0].String("text"))
	assert.Equal(t, "1", items[0].ID())
	img, ok := items[0].Image()
	assert.True(t, ok)
	assert.Equal(t, "t.png", img)
}

func TestProvider_SearchResponses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantNil   bool
		wantLen   int
		wantError bool
	}{
		{name: "array", status: http.StatusOK, body: `[{"text":"a"}]`, wantLen: 1},
		{name: "empty array", status: http.StatusOK, body: `[]`, wantLen: 0},
		{name: "null", status: http.StatusOK, body: `null`, wantNil: true},
		{name: "malformed", status: http.StatusOK, body: `[{`, wantError: true},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p, err := New(Config{URL: srv.URL})
			require.NoError(t, err)

			items, err := p.Search(context.Background(), "q", providers.QueryOptions{})
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, items)
				return
			}
			assert.NotNil(t, items)
			assert.Len(t, items, tt.wantLen)
		})
	}
}

func TestProvider_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p, err := New(Config{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = p.Search(ctx, "q", providers.QueryOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "error = %v", err)
}

func TestParamOverride(t *testing.T) {
	p, err := New(Config{URL: "https://example.com/find", Param: "q"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/find?q=a+b%2Fc", p.requestURL("a b/c"))
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  interface{}
		wantErr error
	}{
		{name: "string", config: "https://example.com"},
		{name: "value", config: Config{URL: "https://example.com"}},
		{name: "pointer", config: &Config{URL: "https://example.com"}},
		{name: "empty URL", config: "", wantErr: ErrEmptyURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, p.Close())
		})
	}

	_, err := NewProvider(42)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	p, err := jsonsuggest.OpenProvider(jsonsuggest.RemoteURL("https://example.com/search"))
	require.NoError(t, err)
	assert.IsType(t, &Provider{}, p)
}
