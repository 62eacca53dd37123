package desktop

import "errors"

// Definition describes one window in the desktop manifest.
type Definition struct {
	ID     string `yaml:"id" json:"id"`
	Title  string `yaml:"title" json:"title"`
	Icon   string `yaml:"icon" json:"icon,omitempty"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Window is the lifecycle record of one portfolio window.
//
// Maximized and Minimized are never both true. SavedRect holds the
// pre-maximize rectangle while the window is maximized, or was maximized when
// it got minimized.
type Window struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Icon      string `json:"icon,omitempty"`
	Open      bool   `json:"open"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
	ZIndex    int    `json:"zIndex"`
	Rect      Rect   `json:"rect"`
	SavedRect *Rect  `json:"savedRect,omitempty"`

	width, height int

	// maximizeOnRestore remembers a maximized window that was minimized.
	maximizeOnRestore bool
}

func newWindow(def Definition) *Window {
	w := &Window{
		ID:     def.ID,
		Title:  def.Title,
		Icon:   def.Icon,
		width:  def.Width,
		height: def.Height,
	}
	if w.width <= 0 {
		w.width = DefaultWidth
	}
	if w.height <= 0 {
		w.height = DefaultHeight
	}
	if w.Title == "" {
		w.Title = def.ID
	}
	return w
}

// clone returns a copy that shares no memory with w.
func (w *Window) clone() Window {
	c := *w
	if w.SavedRect != nil {
		r := *w.SavedRect
		c.SavedRect = &r
	}
	return c
}

func (w *Window) visible() bool {
	return w.Open && !w.Minimized
}

// resetLayoutState drops any maximize bookkeeping.
func (w *Window) resetLayoutState() {
	w.Maximized = false
	w.SavedRect = nil
	w.maximizeOnRestore = false
}

var (
	// ErrUnknownWindow is returned when a window id is not in the registry.
	ErrUnknownWindow = errors.New("unknown window")

	// ErrWindowClosed is returned when an operation needs an open window.
	ErrWindowClosed = errors.New("window is not open")

	// ErrWindowMinimized is returned when an operation needs a visible window.
	ErrWindowMinimized = errors.New("window is minimized")

	// ErrWindowMaximized is returned when a maximized window cannot be resized.
	ErrWindowMaximized = errors.New("window is maximized")

	// ErrInvalidManifest is returned for empty or duplicate window ids.
	ErrInvalidManifest = errors.New("invalid window manifest")

	// ErrUnknownCommand is returned by Dispatch for an unrecognized command.
	ErrUnknownCommand = errors.New("unknown command")
)
