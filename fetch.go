package jsonsuggest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/remiges-tech/jsonsuggest/providers"
)

// fetcher issues remote searches for the widget. token is guarded by the
// widget's lock: every qualifying keystroke takes a new one, and a response
// is applied only while its token is still the latest.
type fetcher struct {
	provider providers.Provider
	debounce *debouncer
	timeout  time.Duration
	query    providers.QueryOptions

	// ctx is cancelled on Close, abandoning in-flight debounced searches.
	ctx  context.Context
	stop context.CancelFunc

	token uint64
}

type searchResult struct {
	items []Item
	err   error
}

func newFetcher(provider providers.Provider, opts Options) *fetcher {
	ctx, stop := context.WithCancel(context.Background())
	return &fetcher{
		provider: provider,
		debounce: newDebouncer(opts.Debounce),
		timeout:  opts.FetchTimeout,
		query: providers.QueryOptions{
			Property:      opts.Property,
			MaxResults:    opts.MaxResults,
			CaseSensitive: opts.CaseSensitive,
		},
		ctx:  ctx,
		stop: stop,
	}
}

// next invalidates every earlier request and returns the new latest token.
func (f *fetcher) next() uint64 {
	f.token++
	return f.token
}

func (f *fetcher) latest(token uint64) bool {
	return token == f.token
}

// cancel drops the pending debounce and invalidates in-flight requests.
func (f *fetcher) cancel() {
	f.debounce.Cancel()
	f.token++
}

// search runs one provider query bounded by the fetch timeout. The wait is
// abandoned on timeout even if the provider ignores its context.
func (f *fetcher) search(parent context.Context, query string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(parent, f.timeout)
	defer cancel()

	done := make(chan searchResult, 1)
	go func() {
		items, err := f.provider.Search(ctx, query, f.query)
		done <- searchResult{items: items, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s: %v", ErrFetchTimeout, f.timeout, r.err)
			}
			return nil, fmt.Errorf("remote search %q: %w", query, r.err)
		}
		return r.items, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrFetchTimeout, f.timeout)
		}
		return nil, ctx.Err()
	}
}

func (f *fetcher) close() error {
	f.debounce.Cancel()
	f.stop()
	return f.provider.Close()
}

// scheduleSearch restarts the debounce window for text. Must hold w.mu.
func (w *Widget) scheduleSearch(text string) {
	token := w.fetch.next()
	w.fetch.debounce.Call(func() {
		w.runSearch(token, text)
	})
}

// runSearch is the debounce callback: it issues the query and applies the
// response if nothing newer happened meanwhile.
func (w *Widget) runSearch(token uint64, text string) {
	w.mu.Lock()
	if w.closed || !w.fetch.latest(token) {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.log.Debug("remote search", "query", text, "token", token)
	items, err := w.fetch.search(w.fetch.ctx, text)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if !w.fetch.latest(token) {
		w.log.Debug("discarding stale response", "query", text, "token", token)
		return
	}
	if err != nil {
		w.log.Warn("remote search failed", "query", text, "err", err)
		w.showError(err)
		return
	}
	if items == nil {
		w.clearAndHide()
		return
	}

	p := Compile(text, w.settings, false)
	w.showResults(w.pipeline.Run(items), p.Fragment())
}

// blurSearch is the immediate, non-debounced query of the remote
// auto-match path. The caller checks the returned token before using items.
func (w *Widget) blurSearch(ctx context.Context, text string) ([]Item, uint64, error) {
	w.mu.Lock()
	w.fetch.debounce.Cancel()
	token := w.fetch.next()
	w.mu.Unlock()

	items, err := w.fetch.search(ctx, text)
	if err != nil {
		w.log.Warn("auto-match search failed", "query", text, "err", err)
		return nil, token, err
	}
	return items, token, nil
}
