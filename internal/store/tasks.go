package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zachkp/deskfolio/internal/kanban"
)

var _ kanban.Repository = (*TaskRepository)(nil)

// TaskRepository implements kanban.Repository for SQLite. Labels are kept as
// a JSON array in a text column.
type TaskRepository struct {
	db  *DB
	now func() time.Time
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

const taskSelect = `
	SELECT t.id, t.title, t.description, t.column_id, c.name, c.color,
		COALESCE(t.github_repo, ''), COALESCE(t.github_issue_number, 0), COALESCE(t.github_url, ''),
		t.priority, t.labels, t.created_by, t.created_at, t.updated_at, t.due_date
	FROM tasks t
	JOIN columns c ON t.column_id = c.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*kanban.Task, error) {
	var (
		task   kanban.Task
		labels string
		due    sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.ColumnID,
		&task.ColumnName,
		&task.ColumnColor,
		&task.GitHubRepo,
		&task.GitHubIssueNumber,
		&task.GitHubURL,
		&task.Priority,
		&labels,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
		&due,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(labels), &task.Labels); err != nil || task.Labels == nil {
		task.Labels = []string{}
	}
	if due.Valid {
		d := due.Time
		task.DueDate = &d
	}
	return &task, nil
}

// Columns returns the board columns in position order.
func (r *TaskRepository) Columns(ctx context.Context) ([]kanban.Column, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, position, color FROM columns ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer rows.Close()

	var cols []kanban.Column
	for rows.Next() {
		var c kanban.Column
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.Color); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (r *TaskRepository) ColumnIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM columns WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", kanban.ErrColumnNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get column: %w", err)
	}
	return id, nil
}

// ListTasks returns tasks newest first, optionally filtered by repository
// and column name.
func (r *TaskRepository) ListTasks(ctx context.Context, filter kanban.Filter) ([]kanban.Task, error) {
	query := taskSelect
	var (
		conditions []string
		args       []any
	)
	if filter.Repo != "" {
		conditions = append(conditions, "t.github_repo = ?")
		args = append(args, filter.Repo)
	}
	if filter.Column != "" {
		conditions = append(conditions, "c.name = ?")
		args = append(args, filter.Column)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []kanban.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetTask(ctx context.Context, id int64) (*kanban.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, taskSelect+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kanban.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// CreateTask inserts a task and fills in its id, timestamps and column.
func (r *TaskRepository) CreateTask(ctx context.Context, task *kanban.Task) error {
	labels, err := json.Marshal(nonNil(task.Labels))
	if err != nil {
		return fmt.Errorf("failed to encode labels: %w", err)
	}
	now := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, column_id, github_repo, github_issue_number, github_url,
			priority, labels, created_by, created_at, updated_at, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.Title,
		task.Description,
		task.ColumnID,
		nullString(task.GitHubRepo),
		nullInt(task.GitHubIssueNumber),
		nullString(task.GitHubURL),
		task.Priority,
		string(labels),
		task.CreatedBy,
		now,
		now,
		task.DueDate,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: id %d", kanban.ErrColumnNotFound, task.ColumnID)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s#%d", kanban.ErrIssueExists, task.GitHubRepo, task.GitHubIssueNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	stored, err := r.GetTask(ctx, id)
	if err != nil {
		return err
	}
	*task = *stored
	return nil
}

// UpdateTask applies the non-nil fields of update.
func (r *TaskRepository) UpdateTask(ctx context.Context, id int64, update kanban.TaskUpdate) (*kanban.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{r.now().UTC()}

	if update.ColumnID != nil {
		sets = append(sets, "column_id = ?")
		args = append(args, *update.ColumnID)
	}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*update.Title))
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *update.Priority)
	}
	if update.Labels != nil {
		labels, err := json.Marshal(nonNil(*update.Labels))
		if err != nil {
			return nil, fmt.Errorf("failed to encode labels: %w", err)
		}
		sets = append(sets, "labels = ?")
		args = append(args, string(labels))
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: id %d", kanban.ErrColumnNotFound, *update.ColumnID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, kanban.ErrTaskNotFound
	}
	return r.GetTask(ctx, id)
}

func (r *TaskRepository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return kanban.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks")
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return res.RowsAffected()
}

func (r *TaskRepository) DeleteByCreators(ctx context.Context, creators []string) (int64, error) {
	if len(creators) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(creators)), ", ")
	args := make([]any, len(creators))
	for i, c := range creators {
		args[i] = c
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE created_by IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}
	return res.RowsAffected()
}

func (r *TaskRepository) IssueExists(ctx context.Context, repo string, number int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tasks WHERE github_repo = ? AND github_issue_number = ?)",
		repo, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check issue: %w", err)
	}
	return exists, nil
}

// ColumnStats counts tasks per column, including empty columns.
func (r *TaskRepository) ColumnStats(ctx context.Context) ([]kanban.ColumnStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, c.color, COUNT(t.id)
		FROM columns c
		LEFT JOIN tasks t ON c.id = t.column_id
		GROUP BY c.id, c.name, c.color
		ORDER BY c.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	var stats []kanban.ColumnStat
	for rows.Next() {
		var s kanban.ColumnStat
		if err := rows.Scan(&s.ColumnName, &s.Color, &s.TaskCount); err != nil {
			return nil, fmt.Errorf("failed to scan column stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// RepoStats counts tasks and completed tasks per GitHub repository.
func (r *TaskRepository) RepoStats(ctx context.Context) ([]kanban.RepoStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.github_repo, COUNT(*), COUNT(CASE WHEN c.name = 'Done' THEN 1 END)
		FROM tasks t
		JOIN columns c ON t.column_id = c.id
		WHERE t.github_repo IS NOT NULL
		GROUP BY t.github_repo
		ORDER BY t.github_repo
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count repo tasks: %w", err)
	}
	defer rows.Close()

	stats := []kanban.RepoStat{}
	for rows.Next() {
		var s kanban.RepoStat
		if err := rows.Scan(&s.Repo, &s.TaskCount, &s.CompletedCount); err != nil {
			return nil, fmt.Errorf("failed to scan repo stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Count returns the number of tasks on the board.
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
