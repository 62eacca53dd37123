package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Zachkp/deskfolio/internal/kanban"
)

// Repository is a mock for kanban.Repository.
type Repository struct {
	mock.Mock
}

func (m *Repository) Columns(ctx context.Context) ([]kanban.Column, error) {
	args := m.Called(ctx)
	if cols, ok := args.Get(0).([]kanban.Column); ok {
		return cols, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) ColumnIDByName(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Repository) ListTasks(ctx context.Context, filter kanban.Filter) ([]kanban.Task, error) {
	args := m.Called(ctx, filter)
	if tasks, ok := args.Get(0).([]kanban.Task); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) GetTask(ctx context.Context, id int64) (*kanban.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*kanban.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) CreateTask(ctx context.Context, task *kanban.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *Repository) UpdateTask(ctx context.Context, id int64, update kanban.TaskUpdate) (*kanban.Task, error) {
	args := m.Called(ctx, id, update)
	if task, ok := args.Get(0).(*kanban.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Repository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Repository) DeleteByCreators(ctx context.Context, creators []string) (int64, error) {
	args := m.Called(ctx, creators)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Repository) IssueExists(ctx context.Context, repo string, number int) (bool, error) {
	args := m.Called(ctx, repo, number)
	return args.Bool(0), args.Error(1)
}

func (m *Repository) ColumnStats(ctx context.Context) ([]kanban.ColumnStat, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).([]kanban.ColumnStat); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) RepoStats(ctx context.Context) ([]kanban.RepoStat, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).([]kanban.RepoStat); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

// IssueSource is a mock for kanban.IssueSource.
type IssueSource struct {
	mock.Mock
}

func (m *IssueSource) Repos() []string {
	args := m.Called()
	if repos, ok := args.Get(0).([]string); ok {
		return repos
	}
	return nil
}

func (m *IssueSource) OpenIssues(ctx context.Context, repo string) ([]kanban.Issue, error) {
	args := m.Called(ctx, repo)
	if issues, ok := args.Get(0).([]kanban.Issue); ok {
		return issues, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IssueSource) RepoInfo(ctx context.Context, repo string) (kanban.RepoInfo, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(kanban.RepoInfo), args.Error(1)
}
