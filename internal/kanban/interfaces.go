package kanban

import "context"

// Repository persists columns and tasks.
type Repository interface {
	Columns(ctx context.Context) ([]Column, error)
	ColumnIDByName(ctx context.Context, name string) (int64, error)
	ListTasks(ctx context.Context, filter Filter) ([]Task, error)
	GetTask(ctx context.Context, id int64) (*Task, error)
	CreateTask(ctx context.Context, task *Task) error
	UpdateTask(ctx context.Context, id int64, update TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByCreators(ctx context.Context, creators []string) (int64, error)
	IssueExists(ctx context.Context, repo string, number int) (bool, error)
	ColumnStats(ctx context.Context) ([]ColumnStat, error)
	RepoStats(ctx context.Context) ([]RepoStat, error)
}

// IssueSource lists repository issues for sync.
type IssueSource interface {
	Repos() []string
	OpenIssues(ctx context.Context, repo string) ([]Issue, error)
	RepoInfo(ctx context.Context, repo string) (RepoInfo, error)
}
