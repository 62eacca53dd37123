package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/deskfolio/internal/desktop"
	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/profile"
	"github.com/Zachkp/deskfolio/internal/startmenu"
)

type fakeBoard struct {
	tasks  []kanban.Task
	err    error
	filter kanban.Filter
}

func (b *fakeBoard) ListTasks(_ context.Context, filter kanban.Filter) ([]kanban.Task, error) {
	b.filter = filter
	return b.tasks, b.err
}

func newTestServer(t *testing.T, board TaskLister) *Server {
	t.Helper()
	p := profile.Default()
	return New(p, startmenu.New(desktop.DefaultManifest(), p), board, nil)
}

func TestGetProfile(t *testing.T) {
	s := newTestServer(t, nil)

	_, out, err := s.handleGetProfile(context.Background(), nil, GetProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, s.profile.Owner.Name, out.Owner.Name)
	assert.Len(t, out.Projects, len(s.profile.Projects))
}

func TestListProjects(t *testing.T) {
	s := newTestServer(t, nil)

	_, all, err := s.handleListProjects(context.Background(), nil, ListProjectsInput{})
	require.NoError(t, err)
	require.Len(t, all.Projects, len(s.profile.Projects))

	tech := s.profile.Projects[0].Stack[0]
	_, filtered, err := s.handleListProjects(context.Background(), nil, ListProjectsInput{Stack: " " + tech + " "})
	require.NoError(t, err)
	require.NotEmpty(t, filtered.Projects)
	for _, p := range filtered.Projects {
		assert.True(t, usesTech(p, tech), "project %s", p.Name)
	}

	_, none, err := s.handleListProjects(context.Background(), nil, ListProjectsInput{Stack: "COBOL"})
	require.NoError(t, err)
	assert.NotNil(t, none.Projects)
	assert.Empty(t, none.Projects)
}

func TestSearchDesktop(t *testing.T) {
	s := newTestServer(t, nil)

	_, out, err := s.handleSearchDesktop(context.Background(), nil, SearchDesktopInput{Query: "kanban", Limit: 3})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.LessOrEqual(t, len(out.Results), 3)
	assert.Equal(t, "kanban", out.Results[0].Window)

	_, _, err = s.handleSearchDesktop(context.Background(), nil, SearchDesktopInput{Query: "x", Limit: -1})
	require.Error(t, err)

	_, out, err = s.handleSearchDesktop(context.Background(), nil, SearchDesktopInput{Query: "zzzzqqqq"})
	require.NoError(t, err)
	assert.NotNil(t, out.Results)
}

func TestListBoardTasks(t *testing.T) {
	created := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	board := &fakeBoard{tasks: []kanban.Task{{ID: 1, Title: "Ship it", ColumnName: "Done", CreatedAt: created}}}
	s := newTestServer(t, board)

	_, out, err := s.handleListBoardTasks(context.Background(), nil, ListBoardTasksInput{Repo: "deskfolio", Column: "Done"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Ship it", out.Tasks[0].Title)
	assert.Equal(t, "Done", out.Tasks[0].Column)
	assert.Equal(t, "2025-05-04T10:00:00Z", out.Tasks[0].CreatedAt)
	assert.NotNil(t, out.Tasks[0].Labels)
	assert.Equal(t, kanban.Filter{Repo: "deskfolio", Column: "Done"}, board.filter)

	board.err = errors.New("database is locked")
	_, _, err = s.handleListBoardTasks(context.Background(), nil, ListBoardTasksInput{})
	require.ErrorContains(t, err, "database is locked")
}

func TestHandler(t *testing.T) {
	s := newTestServer(t, nil)
	assert.NotNil(t, s.Handler())
}
