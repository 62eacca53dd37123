package desktop

import (
	"fmt"
	"log/slog"
	"sync"
)

// Config holds configuration for the window manager.
type Config struct {
	Viewport Viewport
	Logger   *slog.Logger
}

// Manager manages the window registry, the stacking counter and the drag
// session of one desktop.
type Manager struct {
	mu       sync.Mutex
	viewport Viewport
	order    []string
	windows  map[string]*Window
	counter  int
	drag     *DragSession
	hint     SnapZone
	logger   *slog.Logger
}

// NewManager creates a manager with every manifest window closed.
func NewManager(defs []Definition, cfg Config) (*Manager, error) {
	if err := validateDefinitions(defs); err != nil {
		return nil, err
	}

	viewport := cfg.Viewport
	if !viewport.valid() {
		viewport = DefaultViewport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		viewport: viewport,
		order:    make([]string, 0, len(defs)),
		windows:  make(map[string]*Window, len(defs)),
		counter:  baseZIndex,
		logger:   logger,
	}
	for _, def := range defs {
		m.order = append(m.order, def.ID)
		m.windows[def.ID] = newWindow(def)
	}
	return m, nil
}

// State is a point-in-time copy of the desktop.
type State struct {
	Viewport Viewport       `json:"viewport"`
	Windows  []Window       `json:"windows"`
	Taskbar  []TaskbarEntry `json:"taskbar"`
	Focused  string         `json:"focused,omitempty"`
	SnapHint SnapZone       `json:"snapHint"`
	Dragging string         `json:"dragging,omitempty"`
}

// State returns a copy of the current desktop state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state()
}

func (m *Manager) state() State {
	windows := m.snapshotWindows()
	st := State{
		Viewport: m.viewport,
		Windows:  windows,
		Taskbar:  ProjectTaskbar(windows, m.counter),
		Focused:  m.focusedID(),
		SnapHint: m.hint,
	}
	if m.drag != nil {
		st.Dragging = m.drag.WindowID
	}
	return st
}

func (m *Manager) snapshotWindows() []Window {
	out := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.windows[id].clone())
	}
	return out
}

// Window returns a copy of one window record.
func (m *Manager) Window(id string) (Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownWindow, id)
	}
	return w.clone(), nil
}

// Focused returns the id of the focused window, or "" when none is.
func (m *Manager) Focused() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focusedID()
}

// focusedID finds the visible window holding the top of the stack.
func (m *Manager) focusedID() string {
	for _, id := range m.order {
		w := m.windows[id]
		if w.visible() && w.ZIndex == m.counter {
			return id
		}
	}
	return ""
}

func (m *Manager) openCount() int {
	n := 0
	for _, w := range m.windows {
		if w.Open {
			n++
		}
	}
	return n
}

// lookup resolves a window id, reporting unknown ids as a no-op warning.
func (m *Manager) lookup(op, id string) (*Window, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, m.reject(op, id, fmt.Errorf("%w: %q", ErrUnknownWindow, id))
	}
	return w, nil
}

func (m *Manager) reject(op, id string, err error) error {
	m.logger.Warn("window operation ignored", "op", op, "window", id, "error", err)
	return err
}

// requireVisible resolves a window that must be open and not minimized.
func (m *Manager) requireVisible(op, id string) (*Window, error) {
	w, err := m.lookup(op, id)
	if err != nil {
		return nil, err
	}
	if !w.Open {
		return nil, m.reject(op, id, fmt.Errorf("%w: %q", ErrWindowClosed, id))
	}
	if w.Minimized {
		return nil, m.reject(op, id, fmt.Errorf("%w: %q", ErrWindowMinimized, id))
	}
	return w, nil
}

// raise puts w on top of the stack.
func (m *Manager) raise(w *Window) {
	m.counter++
	w.ZIndex = m.counter
}

// initialRect centers a window in the work area, cascading by the number of
// open windows so repeated opens never fully overlap.
func (m *Manager) initialRect(w *Window) Rect {
	work := m.viewport.WorkArea()
	width := min(w.width, work.Width)
	height := min(w.height, work.Height)

	baseX := max(EdgeMargin, (work.Width-width)/2)
	baseY := max(EdgeMargin, (work.Height-height)/2)
	offset := CascadeStep * m.openCount()

	left := min(baseX+offset, work.Width-width-EdgeMargin)
	top := min(baseY+offset, work.Height-height-EdgeMargin)

	return Rect{
		Left:   max(0, left),
		Top:    max(0, top),
		Width:  width,
		Height: height,
	}
}

// Open opens a window, or focuses it when it is already open and visible.
func (m *Manager) Open(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open(id)
}

func (m *Manager) open(id string) error {
	w, err := m.lookup("open", id)
	if err != nil {
		return err
	}
	if w.visible() {
		m.raise(w)
		return nil
	}

	m.cancelDragOn(id)
	w.Open = true
	w.Minimized = false
	w.resetLayoutState()
	m.raise(w)
	w.Rect = m.initialRect(w)
	return nil
}

// Close closes a window. Closing a closed window is a no-op.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.close(id)
}

func (m *Manager) close(id string) error {
	w, err := m.lookup("close", id)
	if err != nil {
		return err
	}
	m.cancelDragOn(id)
	w.Open = false
	w.Minimized = false
	w.resetLayoutState()
	return nil
}

// Minimize hides an open window while keeping it on the taskbar.
func (m *Manager) Minimize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minimize(id)
}

func (m *Manager) minimize(id string) error {
	w, err := m.lookup("minimize", id)
	if err != nil {
		return err
	}
	if !w.Open {
		return m.reject("minimize", id, fmt.Errorf("%w: %q", ErrWindowClosed, id))
	}
	if w.Minimized {
		return nil
	}

	m.cancelDragOn(id)
	if w.Maximized {
		w.Maximized = false
		w.maximizeOnRestore = true
	}
	w.Minimized = true
	return nil
}

// Maximize fills the work area, remembering the current rectangle.
func (m *Manager) Maximize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maximize(id)
}

func (m *Manager) maximize(id string) error {
	w, err := m.requireVisible("maximize", id)
	if err != nil {
		return err
	}
	if w.Maximized {
		return nil
	}

	m.cancelDragOn(id)
	if w.SavedRect == nil {
		saved := w.Rect
		w.SavedRect = &saved
	}
	w.Rect = m.viewport.WorkArea()
	w.Maximized = true
	return nil
}

// Restore returns a maximized window to its pre-maximize rectangle.
func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restore(id)
}

func (m *Manager) restore(id string) error {
	w, err := m.requireVisible("restore", id)
	if err != nil {
		return err
	}
	if !w.Maximized {
		return nil
	}

	m.cancelDragOn(id)
	if w.SavedRect != nil {
		w.Rect = *w.SavedRect
	}
	w.SavedRect = nil
	w.Maximized = false
	return nil
}

// ToggleMaximize maximizes a window or restores it when already maximized.
func (m *Manager) ToggleMaximize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toggleMaximize(id)
}

func (m *Manager) toggleMaximize(id string) error {
	w, err := m.requireVisible("toggle_maximize", id)
	if err != nil {
		return err
	}
	if w.Maximized {
		return m.restore(id)
	}
	return m.maximize(id)
}

// Focus brings a visible window to the front.
func (m *Manager) Focus(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus(id)
}

func (m *Manager) focus(id string) error {
	w, err := m.requireVisible("focus", id)
	if err != nil {
		return err
	}
	m.raise(w)
	return nil
}

// RestoreFromMinimized shows a minimized window again and focuses it.
func (m *Manager) RestoreFromMinimized(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restoreFromMinimized(id)
}

func (m *Manager) restoreFromMinimized(id string) error {
	w, err := m.lookup("restore_minimized", id)
	if err != nil {
		return err
	}
	if !w.Open {
		return m.reject("restore_minimized", id, fmt.Errorf("%w: %q", ErrWindowClosed, id))
	}

	if w.Minimized {
		w.Minimized = false
		if w.maximizeOnRestore {
			w.maximizeOnRestore = false
			w.Maximized = true
			w.Rect = m.viewport.WorkArea()
		}
	}
	m.raise(w)
	return nil
}

// Activate handles a taskbar click: minimized windows are restored, visible
// ones are focused.
func (m *Manager) Activate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activate(id)
}

func (m *Manager) activate(id string) error {
	w, err := m.lookup("activate", id)
	if err != nil {
		return err
	}
	if w.Minimized {
		return m.restoreFromMinimized(id)
	}
	return m.focus(id)
}

// Resize sets a free-form window size, bounded by the work area.
func (m *Manager) Resize(id string, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resize(id, width, height)
}

func (m *Manager) resize(id string, width, height int) error {
	w, err := m.requireVisible("resize", id)
	if err != nil {
		return err
	}
	if w.Maximized {
		return m.reject("resize", id, fmt.Errorf("%w: %q", ErrWindowMaximized, id))
	}

	w.Rect.Width = width
	w.Rect.Height = height
	w.Rect = w.Rect.fit(m.viewport.WorkArea())
	return nil
}

// SetViewport adapts the layout to a new viewport size. Maximized windows
// are refitted and free-form windows are pulled back on screen.
func (m *Manager) SetViewport(v Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !v.valid() {
		m.logger.Warn("ignoring invalid viewport", "width", v.Width, "height", v.Height)
		return
	}
	m.viewport = v
	work := v.WorkArea()
	for _, w := range m.windows {
		if !w.Open {
			continue
		}
		if w.Maximized {
			w.Rect = work
			continue
		}
		w.Rect.Width = min(w.Rect.Width, work.Width)
		w.Rect.Height = min(w.Rect.Height, work.Height)
		w.Rect.Left = clamp(w.Rect.Left, 0, work.Width-w.Rect.Width)
		w.Rect.Top = clamp(w.Rect.Top, 0, work.Height-w.Rect.Height)
	}
}

// Viewport returns the current viewport.
func (m *Manager) Viewport() Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// Definitions returns the manifest the manager was built from.
func (m *Manager) Definitions() []Definition {
	m.mu.Lock()
	defer m.mu.Unlock()

	defs := make([]Definition, 0, len(m.order))
	for _, id := range m.order {
		w := m.windows[id]
		defs = append(defs, Definition{
			ID:     w.ID,
			Title:  w.Title,
			Icon:   w.Icon,
			Width:  w.width,
			Height: w.height,
		})
	}
	return defs
}
