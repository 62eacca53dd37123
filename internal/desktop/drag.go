package desktop

// DragSession tracks one in-progress header drag. A nil session means no
// drag is active.
type DragSession struct {
	WindowID string `json:"windowId"`
	Offset   Point  `json:"offset"`
	Last     Point  `json:"last"`

	// origin is the rectangle when the drag started, saved when the drag
	// ends in the maximize zone.
	origin Rect
}

// DragStart begins dragging a window by its header. Any stale session is
// discarded first, since pointer-up events can be lost. Dragging a maximized
// window restores it under the pointer.
func (m *Manager) DragStart(id string, p Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragStart(id, p)
}

func (m *Manager) dragStart(id string, p Point) error {
	m.endDrag()

	w, err := m.requireVisible("drag_start", id)
	if err != nil {
		return err
	}
	if w.Maximized {
		m.unmaximizeUnder(w, p)
	}

	m.raise(w)
	m.drag = &DragSession{
		WindowID: id,
		Offset:   p.Sub(w.Rect.TopLeft()),
		Last:     p,
		origin:   w.Rect,
	}
	return nil
}

// unmaximizeUnder restores w to its saved size, keeping the pointer at the
// same relative spot of the header.
func (m *Manager) unmaximizeUnder(w *Window, p Point) {
	cur := w.Rect
	restored := cur
	if w.SavedRect != nil {
		restored = *w.SavedRect
	}

	relX := p.X - cur.Left
	if cur.Width > 0 {
		relX = relX * restored.Width / cur.Width
	}
	relY := min(p.Y-cur.Top, restored.Height-1)

	work := m.viewport.WorkArea()
	restored.Left = clamp(p.X-relX, 0, work.Width-restored.Width)
	restored.Top = clamp(p.Y-relY, 0, work.Height-restored.Height)

	w.Rect = restored
	w.SavedRect = nil
	w.Maximized = false
}

// DragMove follows the pointer, keeping the window inside the viewport above
// the taskbar. It returns the snap zone a release at p would commit; the zone
// is only a hint and does not change the window rectangle.
func (m *Manager) DragMove(p Point) SnapZone {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragMove(p)
}

func (m *Manager) dragMove(p Point) SnapZone {
	w := m.dragWindow()
	if w == nil {
		return SnapNone
	}

	m.drag.Last = p
	w.Rect.Left = clamp(p.X-m.drag.Offset.X, 0, m.viewport.Width-w.Rect.Width)
	w.Rect.Top = clamp(p.Y-m.drag.Offset.Y, 0, m.viewport.Height-w.Rect.Height-TaskbarHeight)
	m.hint = zoneAt(p, m.viewport)
	return m.hint
}

// DragEnd finishes the drag. A release inside a snap zone replaces the
// rectangle with the zone preset; anywhere else the last moved rectangle is
// kept. The session and the snap hint are always cleared.
func (m *Manager) DragEnd(p Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragEnd(p)
}

func (m *Manager) dragEnd(p Point) error {
	defer m.endDrag()

	w := m.dragWindow()
	if w == nil {
		return nil
	}
	m.drag.Last = p

	zone := zoneAt(p, m.viewport)
	switch zone {
	case SnapLeft, SnapRight:
		w.Rect = zone.rect(m.viewport)
	case SnapMaximize:
		origin := m.drag.origin
		w.SavedRect = &origin
		w.Maximized = true
		w.Rect = zone.rect(m.viewport)
	}
	if zone != SnapNone {
		m.logger.Debug("window snapped", "window", w.ID, "zone", zone.String())
	}
	return nil
}

// CancelDrag drops the drag session without snapping.
func (m *Manager) CancelDrag() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endDrag()
}

// Drag returns a copy of the active drag session.
func (m *Manager) Drag() (DragSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drag == nil {
		return DragSession{}, false
	}
	return *m.drag, true
}

// SnapHint returns the zone the current drag would snap to.
func (m *Manager) SnapHint() SnapZone {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hint
}

// dragWindow returns the dragged window, ending the session when the window
// was closed or minimized underneath it.
func (m *Manager) dragWindow() *Window {
	if m.drag == nil {
		return nil
	}
	w := m.windows[m.drag.WindowID]
	if w == nil || !w.visible() {
		m.endDrag()
		return nil
	}
	return w
}

func (m *Manager) endDrag() {
	m.drag = nil
	m.hint = SnapNone
}

func (m *Manager) cancelDragOn(id string) {
	if m.drag != nil && m.drag.WindowID == id {
		m.endDrag()
	}
}
