package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Service handles board operations.
type Service struct {
	repo   Repository
	source IssueSource
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a board service. source may be nil when GitHub sync
// is not configured.
func NewService(repo Repository, source IssueSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, source: source, logger: logger, now: time.Now}
}

// ListTasks returns tasks newest first.
func (s *Service) ListTasks(ctx context.Context, filter Filter) ([]Task, error) {
	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask adds a task to the column named by Status, or Backlog.
func (s *Service) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = ColumnBacklog
	}
	columnID, err := s.repo.ColumnIDByName(ctx, status)
	if errors.Is(err, ErrColumnNotFound) && status != ColumnBacklog {
		s.logger.Warn("unknown task status, using backlog", "status", status)
		columnID, err = s.repo.ColumnIDByName(ctx, ColumnBacklog)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving column: %w", err)
	}

	task := &Task{
		Title:             title,
		Description:       in.Description,
		ColumnID:          columnID,
		GitHubRepo:        in.GitHubRepo,
		GitHubIssueNumber: in.GitHubIssueNumber,
		GitHubURL:         in.GitHubURL,
		Priority:          orDefault(in.Priority, DefaultPriority),
		Labels:            in.Labels,
		CreatedBy:         orDefault(in.CreatedBy, DefaultCreatedBy),
		DueDate:           in.DueDate,
	}
	if task.Labels == nil {
		task.Labels = []string{}
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	s.logger.Info("task created", "id", task.ID, "column", task.ColumnName, "created_by", task.CreatedBy)
	return task, nil
}

// UpdateTask applies a partial update.
func (s *Service) UpdateTask(ctx context.Context, id int64, update TaskUpdate) (*Task, error) {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if update.ColumnID == nil && update.Status != nil && *update.Status != "" {
		columnID, err := s.repo.ColumnIDByName(ctx, *update.Status)
		if err != nil {
			return nil, fmt.Errorf("resolving column: %w", err)
		}
		update.ColumnID = &columnID
	}

	task, err := s.repo.UpdateTask(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return task, nil
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

// ClearAll removes every task and reports how many were deleted.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clearing tasks: %w", err)
	}
	s.logger.Info("cleared all tasks", "count", n)
	return n, nil
}

// ClearBoilerplate removes the demo tasks only.
func (s *Service) ClearBoilerplate(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteByCreators(ctx, BoilerplateCreators)
	if err != nil {
		return 0, fmt.Errorf("clearing boilerplate tasks: %w", err)
	}
	s.logger.Info("cleared boilerplate tasks", "count", n)
	return n, nil
}

// Board returns every column in position order with its tasks.
func (s *Service) Board(ctx context.Context) ([]BoardColumn, error) {
	columns, err := s.repo.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	now := s.now()
	board := make([]BoardColumn, 0, len(columns))
	index := make(map[int64]int, len(columns))
	for i, col := range columns {
		board = append(board, BoardColumn{Column: col, Tasks: []Task{}})
		index[col.ID] = i
	}
	for _, task := range tasks {
		i, ok := index[task.ColumnID]
		if !ok {
			continue
		}
		task.Age = humanize.RelTime(task.CreatedAt, now, "ago", "from now")
		board[i].Tasks = append(board[i].Tasks, task)
	}
	return board, nil
}

// Stats returns per-column and per-repository counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	columns, err := s.repo.ColumnStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("column stats: %w", err)
	}
	repos, err := s.repo.RepoStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo stats: %w", err)
	}

	stats := &Stats{ColumnStats: columns, RepoStats: repos}
	for _, c := range columns {
		stats.TotalTasks += c.TaskCount
	}
	return stats, nil
}

// GitHubEnabled reports whether sync can run.
func (s *Service) GitHubEnabled() bool {
	return s.source != nil && len(s.source.Repos()) > 0
}

// SyncGitHub imports open issues from every configured repository. Pull
// requests are skipped and issues already on the board are not duplicated.
func (s *Service) SyncGitHub(ctx context.Context) (SyncResult, error) {
	if !s.GitHubEnabled() {
		return SyncResult{}, ErrGitHubNotConfigured
	}

	var result SyncResult
	for _, repo := range s.source.Repos() {
		n, err := s.syncRepo(ctx, repo)
		result.Synced += n
		if err != nil {
			s.logger.Error("github sync failed", "repo", repo, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", repo, err))
		}
	}
	s.logger.Info("github sync finished", "synced", result.Synced, "errors", len(result.Errors))
	return result, nil
}

func (s *Service) syncRepo(ctx context.Context, repo string) (int, error) {
	issues, err := s.source.OpenIssues(ctx, repo)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		exists, err := s.repo.IssueExists(ctx, repo, issue.Number)
		if err != nil {
			return synced, err
		}
		if exists {
			continue
		}

		labels := issue.LabelNames()
		columnID, err := s.repo.ColumnIDByName(ctx, ColumnForLabels(labels))
		if err != nil {
			return synced, err
		}
		task := &Task{
			Title:             issue.Title,
			Description:       issue.Body,
			ColumnID:          columnID,
			GitHubRepo:        repo,
			GitHubIssueNumber: issue.Number,
			GitHubURL:         issue.HTMLURL,
			Priority:          DefaultPriority,
			Labels:            labels,
			CreatedBy:         SyncCreatedBy,
		}
		err = s.repo.CreateTask(ctx, task)
		if errors.Is(err, ErrIssueExists) {
			// A concurrent sync stored it first.
			continue
		}
		if err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

// RepoStats fetches metadata for every configured repository. A failing
// repository is reported inline rather than failing the whole call.
func (s *Service) RepoStats(ctx context.Context) ([]RepoInfo, error) {
	if !s.GitHubEnabled() {
		return nil, ErrGitHubNotConfigured
	}

	repos := s.source.Repos()
	out := make([]RepoInfo, 0, len(repos))
	for _, repo := range repos {
		info, err := s.source.RepoInfo(ctx, repo)
		if err != nil {
			s.logger.Error("github repo stats failed", "repo", repo, "error", err)
			info = RepoInfo{Name: repo, Error: err.Error()}
		}
		out = append(out, info)
	}
	return out, nil
}

// ColumnForLabels maps issue labels to the column a synced task lands in.
func ColumnForLabels(labels []string) string {
	for _, l := range labels {
		if l == "in-progress" {
			return ColumnInProgress
		}
	}
	for _, l := range labels {
		if l == "review" {
			return ColumnReview
		}
	}
	return ColumnBacklog
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
