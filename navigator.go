package jsonsuggest

// Navigator tracks which row of the current ResultSet is highlighted.
// The zero value is an unselected navigator over an empty ResultSet.
//
// Moving past either end clears the selection; there is no wraparound.
type Navigator struct {
	n int
	// pos is the selected row plus one; zero means unselected.
	pos int
}

// NewNavigator returns an unselected navigator over n rows.
func NewNavigator(n int) *Navigator {
	nav := &Navigator{}
	nav.Reset(n)
	return nav
}

// Reset binds the navigator to a new ResultSet of n rows and clears the selection.
func (nav *Navigator) Reset(n int) {
	nav.n = max(n, 0)
	nav.pos = 0
}

// Clear drops the selection without changing the row count.
func (nav *Navigator) Clear() {
	nav.pos = 0
}

// Len returns the number of rows.
func (nav *Navigator) Len() int {
	return nav.n
}

// Selected returns the highlighted row, if any.
func (nav *Navigator) Selected() (int, bool) {
	if nav.pos == 0 {
		return -1, false
	}
	return nav.pos - 1, true
}

// Down moves to the next row. From Unselected it selects the first row;
// from the last row it clears the selection.
func (nav *Navigator) Down() (int, bool) {
	if nav.pos < nav.n {
		nav.pos++
	} else {
		nav.pos = 0
	}
	return nav.Selected()
}

// Up moves to the previous row. From Unselected it selects the last row;
// from the first row it clears the selection.
func (nav *Navigator) Up() (int, bool) {
	if nav.pos == 0 {
		nav.pos = nav.n
	} else {
		nav.pos--
	}
	return nav.Selected()
}

// Hover selects row j unconditionally. It reports false when j is out of range.
func (nav *Navigator) Hover(j int) bool {
	if j < 0 || j >= nav.n {
		return false
	}
	nav.pos = j + 1
	return true
}
