package search

// Key is a navigation key the navigator understands.
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyEnter
	KeyEscape
)

// Action tells the caller what a key press amounted to.
type Action int

const (
	// ActionNone means the key was not consumed.
	ActionNone Action = iota

	// ActionMove means the selection index changed or was clamped.
	ActionMove

	// ActionCommitItem means Enter was pressed on the selected entry.
	ActionCommitItem

	// ActionCommitQuery means Enter was pressed with nothing selected.
	ActionCommitQuery

	// ActionClose means the panel was closed.
	ActionClose
)

// Navigator tracks whether the suggestion panel is open and which entry is
// selected. Index is -1 when nothing is selected.
type Navigator struct {
	open  bool
	index int
	count int
}

// NewNavigator returns a closed navigator with no selection.
func NewNavigator() Navigator {
	return Navigator{index: -1}
}

// Open shows the panel. The selection is left alone.
func (n *Navigator) Open() {
	n.open = true
}

// Close hides the panel and clears the selection.
func (n *Navigator) Close() {
	n.open = false
	n.index = -1
}

// IsOpen reports whether keys are being interpreted.
func (n *Navigator) IsOpen() bool {
	return n.open
}

// Index is the selected entry, or -1.
func (n *Navigator) Index() int {
	return n.index
}

// Count is the number of entries being navigated.
func (n *Navigator) Count() int {
	return n.count
}

// Reset is called whenever the displayed list changes; the selection is
// cleared.
func (n *Navigator) Reset(count int) {
	n.count = max(count, 0)
	n.index = -1
}

// Handle applies key. Keys are ignored while the panel is closed.
func (n *Navigator) Handle(key Key) Action {
	if !n.open {
		return ActionNone
	}

	switch key {
	case KeyDown:
		if n.count > 0 {
			n.index = min(n.index+1, n.count-1)
		}
		return ActionMove
	case KeyUp:
		if n.index >= 0 {
			n.index--
		}
		return ActionMove
	case KeyEnter:
		if n.index >= 0 && n.index < n.count {
			return ActionCommitItem
		}
		return ActionCommitQuery
	case KeyEscape:
		n.Close()
		return ActionClose
	}
	return ActionNone
}
