package jsonsuggest

import (
	"context"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/remiges-tech/jsonsuggest/internal/logger"
)

// Key is a navigation key the widget reacts to. Every other key should be
// reported as an Input with the new text.
type Key int

const (
	// KeyDown highlights the next row.
	KeyDown Key = iota + 1
	// KeyUp highlights the previous row.
	KeyUp
	// KeyEnter commits the highlighted row.
	KeyEnter
	// KeyTab commits the highlighted row and lets focus move on.
	KeyTab
)

// Widget is one autosuggest control. All methods are safe for concurrent
// use; state changes are applied one at a time in arrival order.
type Widget struct {
	mu sync.Mutex

	opts        Options
	settings    PatternSettings
	pipeline    Pipeline
	highlighter Highlighter
	renderer    Renderer
	observer    observers
	log         *log.Logger

	data  []Item
	fetch *fetcher

	value   string
	results []Item
	entries []Entry
	nav     Navigator
	state   ViewState
	err     error
	closed  bool
}

// New creates a widget. The renderer may be nil when only events matter.
// Returns a *ParseError for malformed inline data, ErrNoSource when no data
// source is configured, or ErrProviderNotFound for unregistered providers.
//
//nolint:gocritic // hugeParam: Config is copied once at construction
func New(config Config, renderer Renderer, obs ...Observer) (*Widget, error) {
	opts := config.Options.withDefaults()
	config.Options = opts

	source, err := resolveSource(config)
	if err != nil {
		return nil, err
	}

	if renderer == nil {
		renderer = nopRenderer{}
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.New("jsonsuggest")
	}

	w := &Widget{
		opts:     opts,
		settings: opts.patternSettings(),
		pipeline: Pipeline{
			Comparator: opts.SortResults,
			MaxResults: opts.MaxResults,
		},
		highlighter: Highlighter{
			Enabled:       opts.HighlightMatches,
			CaseSensitive: opts.CaseSensitive,
		},
		renderer: renderer,
		log:      lg,
		state:    ViewHidden,
	}

	if opts.OnSelect != nil {
		w.observer = append(w.observer, ObserverFuncs{OnSelect: opts.OnSelect})
	}
	for _, o := range obs {
		if o != nil {
			w.observer = append(w.observer, o)
		}
	}

	remote, isRemote := source.(Remote)
	if inline, ok := source.(Inline); ok {
		w.data = slices.Clone(inline.Items)
		if opts.URL != "" {
			remote, isRemote = RemoteURL(opts.URL), true
		}
	}
	if isRemote {
		provider, err := OpenProvider(remote)
		if err != nil {
			return nil, err
		}
		w.fetch = newFetcher(provider, opts)
	}

	w.log.Debug("widget created", "items", len(w.data), "remote", w.fetch != nil)
	return w, nil
}

// Input reports the new text of the input control after a keystroke.
//
// Below MinCharacters the results are cleared and hidden. With a non-empty
// dataset the query is matched locally and rendered at once; otherwise the
// Searching view is rendered and a remote search is scheduled after the
// debounce window.
func (w *Widget) Input(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.value = text

	if utf8.RuneCountInString(text) < w.opts.MinCharacters {
		if w.fetch != nil {
			w.fetch.cancel()
		}
		w.clearAndHide()
		return
	}

	if len(w.data) > 0 {
		if w.fetch != nil {
			w.fetch.cancel()
		}
		p := Compile(text, w.settings, false)
		matches := Match(w.data, p, w.opts.Property)
		w.showResults(w.pipeline.Run(matches), p.Fragment())
		return
	}

	if w.fetch != nil {
		w.results, w.entries, w.err = nil, nil, nil
		w.nav.Reset(0)
		w.state = ViewSearching
		w.render(false)
		w.scheduleSearch(text)
	}
}

// Key handles a navigation key and reports whether the key's default
// action should be suppressed.
func (w *Widget) Key(k Key) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}

	var notify func()
	prevent := false
	switch k {
	case KeyDown:
		w.nav.Down()
		w.render(true)
		prevent = true
	case KeyUp:
		w.nav.Up()
		w.render(true)
		prevent = true
	case KeyEnter:
		if i, ok := w.nav.Selected(); ok {
			notify = w.commit(w.results[i])
		}
		prevent = !w.opts.BubbleReturn
	case KeyTab:
		if i, ok := w.nav.Selected(); ok {
			notify = w.commit(w.results[i])
		}
	}
	w.mu.Unlock()

	if notify != nil {
		notify()
	}
	return prevent
}

// Hover highlights row j. It reports false when j is not a current row.
func (w *Widget) Hover(j int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.nav.Hover(j) {
		return false
	}
	w.render(false)
	return true
}

// Click commits row j regardless of the current selection.
func (w *Widget) Click(j int) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if j < 0 || j >= len(w.results) {
		w.mu.Unlock()
		return ErrIndexOutOfRange
	}
	notify := w.commit(w.results[j])
	w.mu.Unlock()

	notify()
	return nil
}

// Focus shows the last result list again if there is one.
func (w *Widget) Focus() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || len(w.entries) == 0 {
		return
	}
	w.state = ViewResults
	w.render(false)
}

// Blur reports that the input lost focus. The panel is hidden unless the
// pointer is inside it (the blur was caused by clicking a row).
//
// With AutoMatchOnBlur the current text is matched exactly: a single match
// is committed, no match emits NoMatch. In remote mode the query is issued
// immediately, bypassing the debounce window.
func (w *Widget) Blur(ctx context.Context, pointerInside bool) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if !pointerInside && w.state != ViewHidden {
		w.state = ViewHidden
		w.render(false)
	}

	text := w.value
	if !w.opts.AutoMatchOnBlur || text == "" {
		w.mu.Unlock()
		return nil
	}

	if len(w.data) > 0 {
		p := Compile(text, w.settings, true)
		notify := w.autoMatch(text, Match(w.data, p, w.opts.Property))
		w.mu.Unlock()
		notify()
		return nil
	}
	if w.fetch == nil {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	items, token, err := w.blurSearch(ctx, text)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.closed || !w.fetch.latest(token) || items == nil {
		w.mu.Unlock()
		return nil
	}
	p := Compile(text, w.settings, true)
	notify := w.autoMatch(text, Match(items, p, w.opts.Property))
	w.mu.Unlock()

	notify()
	return nil
}

// Append adds one item to the dataset.
func (w *Widget) Append(item Item) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.data = append(w.data, item)
	w.mu.Unlock()

	w.observer.DataAdded(item)
	return nil
}

// Replace swaps the whole dataset. Results built from the previous dataset
// stay on screen until the next query.
func (w *Widget) Replace(items []Item) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.data = slices.Clone(items)
	w.mu.Unlock()

	w.observer.DataReplaced(items)
	return nil
}

// Value returns the current input text.
func (w *Widget) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Data returns a copy of the dataset.
func (w *Widget) Data() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.data)
}

// Results returns the rows of the current ResultSet.
func (w *Widget) Results() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.entries)
}

// Selection returns the highlighted item, if any.
func (w *Widget) Selection() (Item, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i, ok := w.nav.Selected()
	if !ok {
		return nil, false
	}
	return w.results[i], true
}

// View returns what the panel currently shows.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view(false)
}

// Close stops pending searches and closes the remote provider.
// It is safe to call multiple times.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	fetch := w.fetch
	w.mu.Unlock()

	if fetch != nil {
		return fetch.close()
	}
	return nil
}

// commit writes the item into the input, clears the panel and returns the
// notification to run once the lock is released. Must hold w.mu.
func (w *Widget) commit(item Item) func() {
	text := item.String(w.opts.Property)
	w.value = text
	if w.fetch != nil {
		w.fetch.cancel()
	}
	w.renderer.SetInput(text)
	w.clearAndHide()
	w.log.Debug("item selected", "text", text)

	return func() {
		w.observer.ItemSelected(item)
	}
}

// autoMatch commits a single exact match or reports that there is none.
// Must hold w.mu.
func (w *Widget) autoMatch(text string, matches []Item) func() {
	switch len(matches) {
	case 0:
		return func() {
			w.observer.NoMatch(text)
		}
	case 1:
		return w.commit(matches[0])
	default:
		return func() {}
	}
}

// showResults installs a new ResultSet, which resets the selection. Must hold w.mu.
func (w *Widget) showResults(results []Item, fragment string) {
	w.results = results
	w.entries = w.highlighter.Highlight(results, fragment, w.opts.Property)
	w.nav.Reset(len(results))
	w.err = nil
	if len(results) == 0 {
		w.state = ViewEmpty
	} else {
		w.state = ViewResults
	}
	w.render(false)
}

// showError replaces the panel with a failed search. Must hold w.mu.
func (w *Widget) showError(err error) {
	w.results, w.entries = nil, nil
	w.nav.Reset(0)
	w.err = err
	w.state = ViewError
	w.render(false)
}

// clearAndHide drops the ResultSet and hides the panel. Must hold w.mu.
func (w *Widget) clearAndHide() {
	w.results, w.entries, w.err = nil, nil, nil
	w.nav.Reset(0)
	w.state = ViewHidden
	w.render(false)
}

func (w *Widget) render(scroll bool) {
	w.renderer.Render(w.view(scroll))
}

func (w *Widget) view(scroll bool) View {
	selected, _ := w.nav.Selected()
	return View{
		State:     w.state,
		Entries:   w.entries,
		Selected:  selected,
		ScrollTo:  scroll,
		Err:       w.err,
		MaxHeight: w.opts.MaxHeight,
		Width:     w.opts.Width,
	}
}
