package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/deskfolio/internal/chat"
	"github.com/Zachkp/deskfolio/internal/contact"
	"github.com/Zachkp/deskfolio/internal/desktop"
	"github.com/Zachkp/deskfolio/internal/feeds"
	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/profile"
	"github.com/Zachkp/deskfolio/internal/startmenu"
	"github.com/Zachkp/deskfolio/internal/store"
	"github.com/Zachkp/deskfolio/web"
)

// newTestServer fills any missing dependency with an unconfigured default
// and serves the routes on an httptest server.
func newTestServer(t *testing.T, deps Deps) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	defs := desktop.DefaultManifest()
	if deps.Profile == nil {
		deps.Profile = profile.Default()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessions(SessionsConfig{Definitions: defs, Viewport: desktop.DefaultViewport})
	}
	if deps.Index == nil {
		deps.Index = startmenu.New(defs, deps.Profile)
	}
	if deps.Contact == nil {
		deps.Contact = contact.NewRelay(nil, nil, contact.RelayConfig{}, nil)
	}
	if deps.Chat == nil {
		deps.Chat = chat.NewService(nil, nil, "", nil)
	}
	if deps.Weather == nil {
		deps.Weather = feeds.NewWeather(feeds.WeatherConfig{})
	}
	if deps.News == nil {
		deps.News = feeds.NewNews(feeds.NewsConfig{})
	}

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	NewServer(deps).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestBoard(t *testing.T) (*kanban.Service, *store.DB) {
	t.Helper()
	db, err := store.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return kanban.NewService(store.NewTaskRepository(db), nil, nil), db
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
