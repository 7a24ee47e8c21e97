package jsonsuggest

// ViewState is what the result panel should currently show.
type ViewState int

const (
	// ViewHidden means the panel is cleared and hidden.
	ViewHidden ViewState = iota
	// ViewSearching shows the transient placeholder while a remote search is pending.
	ViewSearching
	// ViewResults shows Entries.
	ViewResults
	// ViewEmpty is the "no results" state: a search ran and matched nothing.
	ViewEmpty
	// ViewError reports a failed or timed out remote search in Err.
	ViewError
)

func (s ViewState) String() string {
	switch s {
	case ViewHidden:
		return "hidden"
	case ViewSearching:
		return "searching"
	case ViewResults:
		return "results"
	case ViewEmpty:
		return "empty"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// View is a complete description of the result panel.
type View struct {
	State   ViewState
	Entries []Entry

	// Selected is the highlighted row, or -1.
	Selected int

	// ScrollTo asks the renderer to bring Selected into view. It is set on
	// keyboard-driven selection changes only.
	ScrollTo bool

	Err error

	// MaxHeight and Width are presentation hints copied from Options.
	MaxHeight int
	Width     int
}

// Renderer presents the widget. Its methods are called while the widget
// holds its lock and must not call back into the widget synchronously.
type Renderer interface {
	// Render replaces whatever the panel shows with view.
	Render(view View)

	// SetInput writes text into the input control. Called on commit.
	SetInput(text string)
}

type nopRenderer struct{}

func (nopRenderer) Render(View)     {}
func (nopRenderer) SetInput(string) {}
