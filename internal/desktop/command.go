package desktop

import "fmt"

// CommandKind names a window manager input.
type CommandKind int

const (
	CmdOpen CommandKind = iota + 1
	CmdClose
	CmdMinimize
	CmdMaximize
	CmdRestore
	CmdToggleMaximize
	CmdFocus
	CmdRestoreMinimized
	CmdActivate
	CmdResize
	CmdDragStart
	CmdDragMove
	CmdDragEnd
	CmdCancelDrag
	CmdCycleFocus
	CmdMinimizeAll
)

var commandNames = map[CommandKind]string{
	CmdOpen:             "open",
	CmdClose:            "close",
	CmdMinimize:         "minimize",
	CmdMaximize:         "maximize",
	CmdRestore:          "restore",
	CmdToggleMaximize:   "toggle_maximize",
	CmdFocus:            "focus",
	CmdRestoreMinimized: "restore_minimized",
	CmdActivate:         "activate",
	CmdResize:           "resize",
	CmdDragStart:        "drag_start",
	CmdDragMove:         "drag_move",
	CmdDragEnd:          "drag_end",
	CmdCancelDrag:       "cancel_drag",
	CmdCycleFocus:       "cycle_focus",
	CmdMinimizeAll:      "minimize_all",
}

var commandsByName = func() map[string]CommandKind {
	m := make(map[string]CommandKind, len(commandNames))
	for k, name := range commandNames {
		m[name] = k
	}
	return m
}()

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// MarshalText encodes the command kind by name.
func (k CommandKind) MarshalText() ([]byte, error) {
	if _, ok := commandNames[k]; !ok {
		return nil, fmt.Errorf("unknown command kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a command kind name.
func (k *CommandKind) UnmarshalText(text []byte) error {
	kind, ok := commandsByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, string(text))
	}
	*k = kind
	return nil
}

// Command is one input event for the window manager, independent of whether
// it came from a mouse, touch, or a test.
type Command struct {
	Kind    CommandKind `json:"kind"`
	Window  string      `json:"window,omitempty"`
	Pointer Point       `json:"pointer"`
	Width   int         `json:"width,omitempty"`
	Height  int         `json:"height,omitempty"`
}

// Dispatch applies one command atomically and returns the resulting state.
// Caller errors leave the state unchanged and are returned alongside it.
func (m *Manager) Dispatch(cmd Command) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.apply(cmd)
	return m.state(), err
}

func (m *Manager) apply(cmd Command) error {
	switch cmd.Kind {
	case CmdOpen:
		return m.open(cmd.Window)
	case CmdClose:
		return m.close(cmd.Window)
	case CmdMinimize:
		return m.minimize(cmd.Window)
	case CmdMaximize:
		return m.maximize(cmd.Window)
	case CmdRestore:
		return m.restore(cmd.Window)
	case CmdToggleMaximize:
		return m.toggleMaximize(cmd.Window)
	case CmdFocus:
		return m.focus(cmd.Window)
	case CmdRestoreMinimized:
		return m.restoreFromMinimized(cmd.Window)
	case CmdActivate:
		return m.activate(cmd.Window)
	case CmdResize:
		return m.resize(cmd.Window, cmd.Width, cmd.Height)
	case CmdDragStart:
		return m.dragStart(cmd.Window, cmd.Pointer)
	case CmdDragMove:
		m.dragMove(cmd.Pointer)
		return nil
	case CmdDragEnd:
		return m.dragEnd(cmd.Pointer)
	case CmdCancelDrag:
		m.endDrag()
		return nil
	case CmdCycleFocus:
		return m.cycleFocus()
	case CmdMinimizeAll:
		m.minimizeAll()
		return nil
	default:
		return m.reject("dispatch", cmd.Window, fmt.Errorf("%w: %d", ErrUnknownCommand, int(cmd.Kind)))
	}
}
