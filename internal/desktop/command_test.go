package desktop

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandKindText(t *testing.T) {
	for kind, name := range commandNames {
		text, err := kind.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))

		var decoded CommandKind
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, kind, decoded)
	}

	var k CommandKind
	require.ErrorIs(t, k.UnmarshalText([]byte("explode")), ErrUnknownCommand)

	_, err := CommandKind(99).MarshalText()
	require.Error(t, err)
}

func TestCommandJSON(t *testing.T) {
	var cmd Command
	err := json.Unmarshal([]byte(`{"kind":"drag_start","window":"about","pointer":{"x":100,"y":100}}`), &cmd)
	require.NoError(t, err)
	assert.Equal(t, Command{Kind: CmdDragStart, Window: "about", Pointer: Point{X: 100, Y: 100}}, cmd)

	data, err := json.Marshal(Command{Kind: CmdOpen, Window: "about"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"open"`)

	require.Error(t, json.Unmarshal([]byte(`{"kind":"explode"}`), &cmd))
}

func TestDispatch_DragToLeftEdge(t *testing.T) {
	mgr := newTestManager(t)

	cmds := []Command{
		{Kind: CmdOpen, Window: "about"},
		{Kind: CmdDragStart, Window: "about", Pointer: Point{X: 100, Y: 100}},
		{Kind: CmdDragMove, Pointer: Point{X: 5, Y: 50}},
	}
	var st State
	for _, cmd := range cmds {
		var err error
		st, err = mgr.Dispatch(cmd)
		require.NoError(t, err, cmd.Kind.String())
	}
	assert.Equal(t, "about", st.Dragging)
	assert.Equal(t, SnapLeft, st.SnapHint)

	st, err := mgr.Dispatch(Command{Kind: CmdDragEnd, Pointer: Point{X: 5, Y: 50}})
	require.NoError(t, err)
	assert.Empty(t, st.Dragging)
	assert.Equal(t, SnapNone, st.SnapHint)
	assert.Equal(t, 0, st.Windows[0].Rect.Left)
	assert.Equal(t, "about", st.Focused)
	require.Len(t, st.Taskbar, 1)
	assert.Equal(t, EntryFocused, st.Taskbar[0].State)
}

func TestDispatch_CallerErrorsLeaveStateUnchanged(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Dispatch(Command{Kind: CmdOpen, Window: "about"})
	require.NoError(t, err)
	before := mgr.State()

	tests := []struct {
		name string
		cmd  Command
		err  error
	}{
		{"unknown kind", Command{Kind: 0, Window: "about"}, ErrUnknownCommand},
		{"unknown window", Command{Kind: CmdFocus, Window: "ghost"}, ErrUnknownWindow},
		{"closed window", Command{Kind: CmdMaximize, Window: "projects"}, ErrWindowClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := mgr.Dispatch(tt.cmd)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, before, st)
		})
	}
}

func TestDispatch_Resize(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Dispatch(Command{Kind: CmdOpen, Window: "contact"})
	require.NoError(t, err)

	st, err := mgr.Dispatch(Command{Kind: CmdResize, Window: "contact", Width: 400, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, 400, st.Windows[2].Rect.Width)
	assert.Equal(t, 300, st.Windows[2].Rect.Height)
}

func TestDispatch_MinimizeAllAndCycle(t *testing.T) {
	mgr := newTestManager(t)
	for _, id := range []string{"about", "projects"} {
		_, err := mgr.Dispatch(Command{Kind: CmdOpen, Window: id})
		require.NoError(t, err)
	}

	st, err := mgr.Dispatch(Command{Kind: CmdMinimizeAll})
	require.NoError(t, err)
	assert.Empty(t, st.Focused)

	st, err = mgr.Dispatch(Command{Kind: CmdCycleFocus})
	require.NoError(t, err)
	assert.Equal(t, "about", st.Focused)
}
