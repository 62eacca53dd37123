package api

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/deskfolio/internal/desktop"
)

// Decoding views; the state's enum fields only marshal.
type windowView struct {
	ID        string        `json:"id"`
	Open      bool          `json:"open"`
	Minimized bool          `json:"minimized"`
	Maximized bool          `json:"maximized"`
	ZIndex    int           `json:"zIndex"`
	Rect      desktop.Rect  `json:"rect"`
	SavedRect *desktop.Rect `json:"savedRect"`
}

type stateView struct {
	Viewport desktop.Viewport `json:"viewport"`
	Windows  []windowView     `json:"windows"`
	Focused  string           `json:"focused"`
}

func (s stateView) window(id string) windowView {
	for _, w := range s.Windows {
		if w.ID == id {
			return w
		}
	}
	return windowView{}
}

type replyView struct {
	State   stateView `json:"state"`
	Warning string    `json:"warning"`
}

func createSession(t *testing.T, baseURL string, body any) string {
	t.Helper()
	resp := do(t, http.MethodPost, baseURL+"/api/desktop/sessions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID       string               `json:"id"`
		Manifest []desktop.Definition `json:"manifest"`
		State    stateView            `json:"state"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.ID)
	require.Len(t, out.Manifest, len(desktop.DefaultManifest()))
	return out.ID
}

func command(t *testing.T, baseURL, id string, body any) replyView {
	t.Helper()
	resp := do(t, http.MethodPost, baseURL+"/api/desktop/sessions/"+id+"/commands", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out replyView
	decode(t, resp, &out)
	return out
}

func TestDesktop_CreateSession(t *testing.T) {
	srv := newTestServer(t, Deps{})

	resp := do(t, http.MethodPost, srv.URL+"/api/desktop/sessions", map[string]any{
		"viewport": map[string]int{"width": 1366, "height": 768},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		ID    string    `json:"id"`
		State stateView `json:"state"`
	}
	decode(t, resp, &out)
	assert.Equal(t, desktop.Viewport{Width: 1366, Height: 768}, out.State.Viewport)
	for _, w := range out.State.Windows {
		assert.False(t, w.Open)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/desktop/sessions/"+out.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDesktop_UnknownSession(t *testing.T) {
	srv := newTestServer(t, Deps{})

	resp := do(t, http.MethodGet, srv.URL+"/api/desktop/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/desktop/sessions/nope/commands", map[string]string{"kind": "open", "window": "about"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDesktop_Commands(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	out := command(t, srv.URL, id, map[string]string{"kind": "open", "window": "about"})
	assert.Empty(t, out.Warning)
	assert.Equal(t, "about", out.State.Focused)
	assert.True(t, out.State.window("about").Open)

	out = command(t, srv.URL, id, map[string]string{"kind": "open", "window": "projects"})
	assert.Equal(t, "projects", out.State.Focused)

	out = command(t, srv.URL, id, map[string]string{"kind": "maximize", "window": "projects"})
	assert.True(t, out.State.window("projects").Maximized)

	out = command(t, srv.URL, id, map[string]string{"kind": "minimize", "window": "projects"})
	assert.True(t, out.State.window("projects").Minimized)
	assert.Equal(t, "about", out.State.Focused)
}

func TestDesktop_CommandWarnings(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	out := command(t, srv.URL, id, map[string]string{"kind": "open", "window": "nonexistent"})
	assert.Contains(t, out.Warning, desktop.ErrUnknownWindow.Error())
	for _, w := range out.State.Windows {
		assert.False(t, w.Open)
	}

	out = command(t, srv.URL, id, map[string]string{"kind": "maximize", "window": "about"})
	assert.Contains(t, out.Warning, desktop.ErrWindowClosed.Error())

	out = command(t, srv.URL, id, map[string]string{"kind": "teleport", "window": "about"})
	assert.Contains(t, out.Warning, desktop.ErrUnknownCommand.Error())
}

func TestDesktop_InvalidCommandBody(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/desktop/sessions/"+id+"/commands", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDesktop_ViewportOnly(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	out := command(t, srv.URL, id, map[string]any{
		"viewport": map[string]int{"width": 1024, "height": 768},
	})
	assert.Empty(t, out.Warning)
	assert.Equal(t, desktop.Viewport{Width: 1024, Height: 768}, out.State.Viewport)
}

func TestDesktop_HibernateResume(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)
	base := srv.URL + "/api/desktop/sessions/" + id

	command(t, srv.URL, id, map[string]string{"kind": "open", "window": "about"})
	command(t, srv.URL, id, map[string]string{"kind": "open", "window": "resume"})

	resp := do(t, http.MethodPost, base+"/hibernate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hib struct {
		Snapshot desktop.Snapshot `json:"snapshot"`
		State    stateView        `json:"state"`
	}
	decode(t, resp, &hib)
	require.Len(t, hib.Snapshot.Windows, 2)
	assert.True(t, hib.State.window("about").Minimized)
	assert.True(t, hib.State.window("resume").Minimized)

	hib.Snapshot.Windows = append(hib.Snapshot.Windows, desktop.SavedWindow{ID: "retired", ZIndex: 1})
	resp = do(t, http.MethodPost, base+"/resume", hib.Snapshot)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		State   stateView `json:"state"`
		Skipped int       `json:"skipped"`
	}
	decode(t, resp, &res)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.State.window("about").Minimized)
	assert.Equal(t, "resume", res.State.Focused)
}

func TestDesktop_ResumeFitsSnapshot(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/desktop/sessions/"+id+"/resume", map[string]any{
		"windows": []map[string]any{
			{"id": "about", "zIndex": 1, "maximized": true, "rect": map[string]int{"left": 40, "top": 30, "width": 700, "height": 500}},
			{"id": "projects", "zIndex": 2, "rect": map[string]int{"left": -9000, "top": 50000, "width": -10, "height": 0}},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		State stateView `json:"state"`
	}
	decode(t, resp, &res)

	about := res.State.window("about")
	assert.True(t, about.Maximized)
	require.NotNil(t, about.SavedRect)
	assert.Equal(t, desktop.Rect{Left: 40, Top: 30, Width: 700, Height: 500}, *about.SavedRect)

	work := desktop.DefaultViewport.WorkArea()
	projects := res.State.window("projects")
	assert.Equal(t, desktop.Rect{
		Left:   0,
		Top:    work.Height - desktop.MinHeight,
		Width:  desktop.MinWidth,
		Height: desktop.MinHeight,
	}, projects.Rect)
}

func TestDesktop_Stream(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/desktop/sessions/" + id + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	var initial replyView
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Empty(t, initial.State.Focused)

	require.NoError(t, conn.WriteJSON(map[string]string{"kind": "open", "window": "chat"}))
	var out replyView
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "chat", out.State.Focused)

	require.NoError(t, conn.WriteJSON(map[string]string{"kind": "focus", "window": "ghost"}))
	out = replyView{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Contains(t, out.Warning, desktop.ErrUnknownWindow.Error())
	assert.Equal(t, "chat", out.State.Focused)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	out = replyView{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.NotEmpty(t, out.Warning)
}

func TestDesktop_StreamRejectsOversizedFrames(t *testing.T) {
	srv := newTestServer(t, Deps{})
	id := createSession(t, srv.URL, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/desktop/sessions/" + id + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	var initial replyView
	require.NoError(t, conn.ReadJSON(&initial))

	// The server may close before the whole frame is written.
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"open","window":"`+strings.Repeat("a", 2*streamReadLimit)+`"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		assert.Equal(t, websocket.CloseMessageTooBig, closeErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "stream stayed open after an oversized frame")
	}
}

func TestDesktop_CreateSessionLimit(t *testing.T) {
	sessions := NewSessions(SessionsConfig{
		Definitions: desktop.DefaultManifest(),
		Viewport:    desktop.DefaultViewport,
		MaxSessions: 1,
	})
	srv := newTestServer(t, Deps{Sessions: sessions})
	createSession(t, srv.URL, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/desktop/sessions", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var out struct {
		Error string `json:"error"`
	}
	decode(t, resp, &out)
	assert.NotEmpty(t, out.Error)
}
