package desktop

import (
	"sort"
	"time"
)

// CycleFocus focuses the next open window after the focused one, in
// registry order, restoring it when minimized.
func (m *Manager) CycleFocus() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycleFocus()
}

func (m *Manager) cycleFocus() error {
	var open []string
	for _, id := range m.order {
		if m.windows[id].Open {
			open = append(open, id)
		}
	}
	if len(open) == 0 {
		return nil
	}

	focused := m.focusedID()
	next := 0
	for i, id := range open {
		if id == focused {
			next = (i + 1) % len(open)
			break
		}
	}
	return m.activate(open[next])
}

// MinimizeAll minimizes every open window (show desktop).
func (m *Manager) MinimizeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minimizeAll()
}

func (m *Manager) minimizeAll() {
	m.endDrag()
	for _, id := range m.order {
		if w := m.windows[id]; w.visible() {
			_ = m.minimize(id)
		}
	}
}

// SavedWindow is the persisted layout of one open window.
type SavedWindow struct {
	ID        string `json:"id"`
	Rect      Rect   `json:"rect"`
	SavedRect *Rect  `json:"savedRect,omitempty"`
	ZIndex    int    `json:"zIndex"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
}

// Snapshot is the layout captured by Hibernate.
type Snapshot struct {
	Windows []SavedWindow `json:"windows"`
	TakenAt time.Time     `json:"takenAt"`
}

// Hibernate records every open window and then minimizes them all.
func (m *Manager) Hibernate() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{TakenAt: time.Now()}
	for _, id := range m.order {
		w := m.windows[id]
		if !w.Open {
			continue
		}
		c := w.clone()
		snap.Windows = append(snap.Windows, SavedWindow{
			ID:        c.ID,
			Rect:      c.Rect,
			SavedRect: c.SavedRect,
			ZIndex:    c.ZIndex,
			Minimized: c.Minimized,
			Maximized: c.Maximized || w.maximizeOnRestore,
		})
	}
	m.minimizeAll()
	return snap
}

// Resume re-applies a hibernated layout. Windows are restacked in their
// saved order; ids no longer in the registry are skipped and counted.
// Saved geometry is fitted to the current work area, and a maximized
// window without a saved rect restores to its saved free-form rect.
func (m *Manager) Resume(snap Snapshot) (skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make([]SavedWindow, len(snap.Windows))
	copy(saved, snap.Windows)
	sort.SliceStable(saved, func(i, j int) bool {
		return saved[i].ZIndex < saved[j].ZIndex
	})

	work := m.viewport.WorkArea()
	m.endDrag()
	for _, sw := range saved {
		w, err := m.lookup("resume", sw.ID)
		if err != nil {
			skipped++
			continue
		}
		w.Open = true
		w.Minimized = sw.Minimized
		w.resetLayoutState()
		w.Rect = sw.Rect.fit(work)
		if sw.Maximized {
			restore := w.Rect
			if sw.SavedRect != nil {
				restore = sw.SavedRect.fit(work)
			}
			w.SavedRect = &restore
			if sw.Minimized {
				w.maximizeOnRestore = true
			} else {
				w.Maximized = true
				w.Rect = work
			}
		}
		m.raise(w)
	}
	if skipped > 0 {
		m.logger.Warn("resume skipped unknown windows", "count", skipped)
	}
	return skipped
}
