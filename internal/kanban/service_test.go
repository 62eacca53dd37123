package kanban_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/kanban/mocks"
)

func TestCreateTask_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.Repository{}
	repo.On("ColumnIDByName", ctx, kanban.ColumnBacklog).Return(int64(1), nil)
	repo.On("CreateTask", ctx, mock.MatchedBy(func(task *kanban.Task) bool {
		return task.Title == "Fix nav" &&
			task.ColumnID == 1 &&
			task.Priority == kanban.DefaultPriority &&
			task.CreatedBy == kanban.DefaultCreatedBy &&
			task.Labels != nil
	})).Return(nil)

	svc := kanban.NewService(repo, nil, nil)
	task, err := svc.CreateTask(ctx, kanban.NewTask{Title: "  Fix nav "})
	require.NoError(t, err)
	assert.Equal(t, "Fix nav", task.Title)
	repo.AssertExpectations(t)
}

func TestCreateTask_RequiresTitle(t *testing.T) {
	repo := &mocks.Repository{}
	svc := kanban.NewService(repo, nil, nil)

	_, err := svc.CreateTask(context.Background(), kanban.NewTask{Title: "   "})
	require.ErrorIs(t, err, kanban.ErrInvalidInput)
	repo.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestCreateTask_UnknownStatusFallsBackToBacklog(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.Repository{}
	repo.On("ColumnIDByName", ctx, "Someday").Return(int64(0), kanban.ErrColumnNotFound)
	repo.On("ColumnIDByName", ctx, kanban.ColumnBacklog).Return(int64(1), nil)
	repo.On("CreateTask", ctx, mock.Anything).Return(nil)

	svc := kanban.NewService(repo, nil, nil)
	task, err := svc.CreateTask(ctx, kanban.NewTask{Title: "Later", Status: "Someday"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ColumnID)
}

func TestCreateTask_KnownStatus(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.Repository{}
	repo.On("ColumnIDByName", ctx, kanban.ColumnReview).Return(int64(3), nil)
	repo.On("CreateTask", ctx, mock.Anything).Return(nil)

	svc := kanban.NewService(repo, nil, nil)
	task, err := svc.CreateTask(ctx, kanban.NewTask{Title: "Check copy", Status: kanban.ColumnReview, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), task.ColumnID)
	assert.Equal(t, "high", task.Priority)
}

func TestUpdateTask_ResolvesStatus(t *testing.T) {
	ctx := context.Background()
	status := kanban.ColumnDone
	columnID := int64(4)

	repo := &mocks.Repository{}
	repo.On("ColumnIDByName", ctx, kanban.ColumnDone).Return(columnID, nil)
	repo.On("UpdateTask", ctx, int64(7), mock.MatchedBy(func(u kanban.TaskUpdate) bool {
		return u.ColumnID != nil && *u.ColumnID == columnID
	})).Return(&kanban.Task{ID: 7, ColumnID: columnID}, nil)

	svc := kanban.NewService(repo, nil, nil)
	task, err := svc.UpdateTask(ctx, 7, kanban.TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, columnID, task.ColumnID)
}

func TestUpdateTask_Errors(t *testing.T) {
	ctx := context.Background()
	empty := " "
	status := "Nowhere"

	repo := &mocks.Repository{}
	repo.On("ColumnIDByName", ctx, status).Return(int64(0), kanban.ErrColumnNotFound)
	repo.On("UpdateTask", ctx, int64(99), mock.Anything).Return(nil, kanban.ErrTaskNotFound)

	svc := kanban.NewService(repo, nil, nil)

	_, err := svc.UpdateTask(ctx, 1, kanban.TaskUpdate{Title: &empty})
	require.ErrorIs(t, err, kanban.ErrInvalidInput)

	_, err = svc.UpdateTask(ctx, 1, kanban.TaskUpdate{Status: &status})
	require.ErrorIs(t, err, kanban.ErrColumnNotFound)

	_, err = svc.UpdateTask(ctx, 99, kanban.TaskUpdate{})
	require.ErrorIs(t, err, kanban.ErrTaskNotFound)
}

func TestClearBoilerplate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.Repository{}
	repo.On("DeleteByCreators", ctx, kanban.BoilerplateCreators).Return(int64(12), nil)

	svc := kanban.NewService(repo, nil, nil)
	n, err := svc.ClearBoilerplate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Len(t, kanban.BoilerplateCreators, 10)
}

func TestBoard_GroupsTasksByColumn(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.Repository{}
	repo.On("Columns", ctx).Return([]kanban.Column{
		{ID: 1, Name: kanban.ColumnBacklog, Position: 1},
		{ID: 4, Name: kanban.ColumnDone, Position: 4},
	}, nil)
	repo.On("ListTasks", ctx, kanban.Filter{}).Return([]kanban.Task{
		{ID: 2, ColumnID: 4, Title: "b"},
		{ID: 1, ColumnID: 1, Title: "a"},
		{ID: 3, ColumnID: 9, Title: "orphan"},
	}, nil)

	svc := kanban.NewService(repo, nil, nil)
	board, err := svc.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Len(t, board[0].Tasks, 1)
	assert.Equal(t, "a", board[0].Tasks[0].Title)
	assert.NotEmpty(t, board[0].Tasks[0].Age)
	require.Len(t, board[1].Tasks, 1)
	assert.Equal(t, "b", board[1].Tasks[0].Title)
}

func TestStats_TotalsColumns(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.Repository{}
	repo.On("ColumnStats", ctx).Return([]kanban.ColumnStat{
		{ColumnName: kanban.ColumnBacklog, TaskCount: 3},
		{ColumnName: kanban.ColumnDone, TaskCount: 2},
	}, nil)
	repo.On("RepoStats", ctx).Return([]kanban.RepoStat{{Repo: "plantly", TaskCount: 2, CompletedCount: 1}}, nil)

	svc := kanban.NewService(repo, nil, nil)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalTasks)
	assert.Len(t, stats.RepoStats, 1)
}

func TestSyncGitHub_NotConfigured(t *testing.T) {
	svc := kanban.NewService(&mocks.Repository{}, nil, nil)
	_, err := svc.SyncGitHub(context.Background())
	require.ErrorIs(t, err, kanban.ErrGitHubNotConfigured)

	_, err = svc.RepoStats(context.Background())
	require.ErrorIs(t, err, kanban.ErrGitHubNotConfigured)
}

func TestSyncGitHub(t *testing.T) {
	ctx := context.Background()
	source := &mocks.IssueSource{}
	source.On("Repos").Return([]string{"plantly", "broken"})
	source.On("OpenIssues", ctx, "plantly").Return([]kanban.Issue{
		{Number: 1, Title: "New", Labels: []kanban.Label{{Name: "in-progress"}}},
		{Number: 2, Title: "Seen"},
		{Number: 3, Title: "A PR", PullRequest: &struct{}{}},
		{Number: 4, Title: "Needs eyes", Labels: []kanban.Label{{Name: "review"}}},
	}, nil)
	source.On("OpenIssues", ctx, "broken").Return(nil, errors.New("404 Not Found"))

	repo := &mocks.Repository{}
	repo.On("IssueExists", ctx, "plantly", 1).Return(false, nil)
	repo.On("IssueExists", ctx, "plantly", 2).Return(true, nil)
	repo.On("IssueExists", ctx, "plantly", 4).Return(false, nil)
	repo.On("ColumnIDByName", ctx, kanban.ColumnInProgress).Return(int64(2), nil)
	repo.On("ColumnIDByName", ctx, kanban.ColumnReview).Return(int64(3), nil)
	repo.On("CreateTask", ctx, mock.MatchedBy(func(task *kanban.Task) bool {
		return task.CreatedBy == kanban.SyncCreatedBy && task.GitHubRepo == "plantly"
	})).Return(nil)

	svc := kanban.NewService(repo, source, nil)
	result, err := svc.SyncGitHub(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken")

	repo.AssertNumberOfCalls(t, "CreateTask", 2)
	repo.AssertNotCalled(t, "IssueExists", ctx, "plantly", 3)
}

func TestRepoStats_ReportsFailuresInline(t *testing.T) {
	ctx := context.Background()
	source := &mocks.IssueSource{}
	source.On("Repos").Return([]string{"plantly", "broken"})
	source.On("RepoInfo", ctx, "plantly").Return(kanban.RepoInfo{Name: "plantly", Stars: 4}, nil)
	source.On("RepoInfo", ctx, "broken").Return(kanban.RepoInfo{}, errors.New("boom"))

	svc := kanban.NewService(&mocks.Repository{}, source, nil)
	infos, err := svc.RepoStats(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 4, infos[0].Stars)
	assert.Equal(t, "broken", infos[1].Name)
	assert.Equal(t, "boom", infos[1].Error)
}

func TestColumnForLabels(t *testing.T) {
	assert.Equal(t, kanban.ColumnBacklog, kanban.ColumnForLabels(nil))
	assert.Equal(t, kanban.ColumnReview, kanban.ColumnForLabels([]string{"bug", "review"}))
	assert.Equal(t, kanban.ColumnInProgress, kanban.ColumnForLabels([]string{"review", "in-progress"}))
}
