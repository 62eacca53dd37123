package desktop

// EntryState labels a taskbar entry.
type EntryState int

const (
	EntryActive EntryState = iota
	EntryFocused
	EntryMinimized
)

func (s EntryState) String() string {
	switch s {
	case EntryActive:
		return "active"
	case EntryFocused:
		return "focused"
	case EntryMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s EntryState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TaskbarEntry is one button on the taskbar.
type TaskbarEntry struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Icon  string     `json:"icon,omitempty"`
	State EntryState `json:"state"`
}

// ProjectTaskbar derives the taskbar from window records: one entry per open
// window, in registry order. top is the current stacking counter; the
// visible window holding it is the focused one.
func ProjectTaskbar(windows []Window, top int) []TaskbarEntry {
	entries := make([]TaskbarEntry, 0, len(windows))
	for _, w := range windows {
		if !w.Open {
			continue
		}
		state := EntryActive
		switch {
		case w.Minimized:
			state = EntryMinimized
		case w.ZIndex == top:
			state = EntryFocused
		}
		entries = append(entries, TaskbarEntry{
			ID:    w.ID,
			Title: w.Title,
			Icon:  w.Icon,
			State: state,
		})
	}
	return entries
}

// Taskbar returns the current taskbar projection.
func (m *Manager) Taskbar() []TaskbarEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ProjectTaskbar(m.snapshotWindows(), m.counter)
}
