package jsonsuggest

// Observer receives the widget's outward events. Callbacks run on the
// goroutine that caused the event, after the widget has released its lock,
// so they may call back into the widget.
type Observer interface {
	// ItemSelected is called with the full item when the user commits a choice.
	ItemSelected(item Item)

	// NoMatch is called when blur auto-match finds nothing for query.
	NoMatch(query string)

	// DataAdded is called after Append.
	DataAdded(item Item)

	// DataReplaced is called after Replace.
	DataReplaced(items []Item)
}

// ObserverFuncs adapts optional functions to the Observer interface.
// Nil fields are skipped.
type ObserverFuncs struct {
	OnSelect       func(Item)
	OnNoMatch      func(string)
	OnDataAdded    func(Item)
	OnDataReplaced func([]Item)
}

func (o ObserverFuncs) ItemSelected(item Item) {
	if o.OnSelect != nil {
		o.OnSelect(item)
	}
}

func (o ObserverFuncs) NoMatch(query string) {
	if o.OnNoMatch != nil {
		o.OnNoMatch(query)
	}
}

func (o ObserverFuncs) DataAdded(item Item) {
	if o.OnDataAdded != nil {
		o.OnDataAdded(item)
	}
}

func (o ObserverFuncs) DataReplaced(items []Item) {
	if o.OnDataReplaced != nil {
		o.OnDataReplaced(items)
	}
}

// EventKind identifies an Event.
type EventKind int

const (
	// EventSelected carries the committed Item.
	EventSelected EventKind = iota
	// EventNoMatch carries the Query that found nothing.
	EventNoMatch
	// EventDataAdded carries the appended Item.
	EventDataAdded
	// EventDataReplaced carries the new Items.
	EventDataReplaced
)

func (k EventKind) String() string {
	switch k {
	case EventSelected:
		return "selected"
	case EventNoMatch:
		return "no-match"
	case EventDataAdded:
		return "data-added"
	case EventDataReplaced:
		return "data-replaced"
	default:
		return "unknown"
	}
}

// Event is the value delivered by a ChannelObserver.
type Event struct {
	Kind  EventKind
	Item  Item
	Items []Item
	Query string
}

// ChannelObserver delivers events on a channel. Sends block, so the
// receiver must keep draining it.
type ChannelObserver chan Event

// NewChannelObserver returns a ChannelObserver with the given buffer size.
func NewChannelObserver(buffer int) ChannelObserver {
	return make(ChannelObserver, buffer)
}

func (c ChannelObserver) ItemSelected(item Item) {
	c <- Event{Kind: EventSelected, Item: item}
}

func (c ChannelObserver) NoMatch(query string) {
	c <- Event{Kind: EventNoMatch, Query: query}
}

func (c ChannelObserver) DataAdded(item Item) {
	c <- Event{Kind: EventDataAdded, Item: item}
}

func (c ChannelObserver) DataReplaced(items []Item) {
	c <- Event{Kind: EventDataReplaced, Items: items}
}

// observers fans events out to every registered Observer.
type observers []Observer

func (obs observers) ItemSelected(item Item) {
	for _, o := range obs {
		o.ItemSelected(item)
	}
}

func (obs observers) NoMatch(query string) {
	for _, o := range obs {
		o.NoMatch(query)
	}
}

func (obs observers) DataAdded(item Item) {
	for _, o := range obs {
		o.DataAdded(item)
	}
}

func (obs observers) DataReplaced(items []Item) {
	for _, o := range obs {
		o.DataReplaced(items)
	}
}
