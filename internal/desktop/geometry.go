package desktop

const (
	// TaskbarHeight is the strip reserved at the bottom of the viewport.
	TaskbarHeight = 56
	// SnapThreshold is the distance from a screen edge that arms a snap zone.
	SnapThreshold = 20
	// CascadeStep offsets each newly opened window per already open window.
	CascadeStep = 30
	// EdgeMargin keeps freshly opened windows away from the screen edges.
	EdgeMargin = 50

	MinWidth  = 320
	MinHeight = 200

	DefaultWidth  = 800
	DefaultHeight = 600

	baseZIndex = 1000
)

// Point is a pointer position in viewport pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is a window rectangle in viewport pixels.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TopLeft returns the rectangle origin.
func (r Rect) TopLeft() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Contains checks if a point is within the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

// Viewport is the browser viewport the desktop is laid out in.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport is used when a session does not report its size.
var DefaultViewport = Viewport{Width: 1920, Height: 1080}

// WorkArea is the viewport minus the taskbar strip.
func (v Viewport) WorkArea() Rect {
	return Rect{Width: v.Width, Height: max(0, v.Height-TaskbarHeight)}
}

func (v Viewport) valid() bool {
	return v.Width > 0 && v.Height > TaskbarHeight
}

// fit enforces the minimum window size and keeps r inside work.
func (r Rect) fit(work Rect) Rect {
	r.Width = clamp(r.Width, MinWidth, work.Width)
	r.Height = clamp(r.Height, MinHeight, work.Height)
	r.Left = clamp(r.Left, 0, work.Width-r.Width)
	r.Top = clamp(r.Top, 0, work.Height-r.Height)
	return r
}

// clamp bounds v to [lo, hi]. When hi < lo the lower bound wins.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// SnapZone is a screen-edge region that forces a preset rectangle on release.
type SnapZone int

const (
	SnapNone SnapZone = iota
	SnapLeft
	SnapRight
	SnapMaximize
)

var snapZoneNames = map[SnapZone]string{
	SnapNone:     "none",
	SnapLeft:     "left",
	SnapRight:    "right",
	SnapMaximize: "maximize",
}

func (z SnapZone) String() string {
	if name, ok := snapZoneNames[z]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the zone by name.
func (z SnapZone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// zoneAt reports which snap zone the pointer is in. Left and right edges
// take precedence over the top edge; the bottom edge has no preset.
func zoneAt(p Point, v Viewport) SnapZone {
	switch {
	case p.X < SnapThreshold:
		return SnapLeft
	case p.X > v.Width-SnapThreshold:
		return SnapRight
	case p.Y < SnapThreshold:
		return SnapMaximize
	default:
		return SnapNone
	}
}

// rect returns the preset rectangle for the zone.
func (z SnapZone) rect(v Viewport) Rect {
	work := v.WorkArea()
	half := v.Width / 2
	switch z {
	case SnapLeft:
		return Rect{Left: 0, Top: 0, Width: half, Height: work.Height}
	case SnapRight:
		return Rect{Left: half, Top: 0, Width: v.Width - half, Height: work.Height}
	default:
		return work
	}
}
