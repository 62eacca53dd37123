package kanban

import "time"

// Default column names, seeded in this order.
const (
	ColumnBacklog    = "Backlog"
	ColumnInProgress = "In Progress"
	ColumnReview     = "Review"
	ColumnDone       = "Done"
)

const (
	DefaultPriority  = "medium"
	DefaultCreatedBy = "Visitor"
	SyncCreatedBy    = "GitHub Sync"
)

// BoilerplateCreators are the creators of the demo tasks shipped with the
// board; ClearBoilerplate removes their tasks only.
var BoilerplateCreators = []string{
	"System Setup",
	"Marketing Team",
	"QA Team",
	"UI/UX Team",
	"Frontend Team",
	"Animation Team",
	"Backend Team",
	"SEO Team",
	"Performance Team",
	"DevOps Team",
}

type Column struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Color    string `json:"color"`
}

type Task struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	ColumnID          int64      `json:"column_id"`
	ColumnName        string     `json:"column_name"`
	ColumnColor       string     `json:"column_color"`
	GitHubRepo        string     `json:"github_repo,omitempty"`
	GitHubIssueNumber int        `json:"github_issue_number,omitempty"`
	GitHubURL         string     `json:"github_url,omitempty"`
	Priority          string     `json:"priority"`
	Labels            []string   `json:"labels"`
	CreatedBy         string     `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DueDate           *time.Time `json:"due_date,omitempty"`

	// Age is the humanized time since creation, filled in for board views.
	Age string `json:"age,omitempty"`
}

// Filter narrows ListTasks. Empty fields match everything.
type Filter struct {
	Repo   string
	Column string
}

// NewTask is the input for CreateTask. Status names the target column and
// falls back to Backlog when unknown.
type NewTask struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	GitHubRepo        string     `json:"github_repo"`
	GitHubIssueNumber int        `json:"github_issue_number"`
	GitHubURL         string     `json:"github_url"`
	Priority          string     `json:"priority"`
	CreatedBy         string     `json:"created_by"`
	Labels            []string   `json:"labels"`
	DueDate           *time.Time `json:"due_date"`
}

// TaskUpdate is a partial update; nil fields are left unchanged. Status is
// resolved to a column when ColumnID is not given.
type TaskUpdate struct {
	ColumnID    *int64    `json:"column_id"`
	Status      *string   `json:"status"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	Labels      *[]string `json:"labels"`
}

type BoardColumn struct {
	Column
	Tasks []Task `json:"tasks"`
}

type ColumnStat struct {
	ColumnName string `json:"column_name"`
	Color      string `json:"color"`
	TaskCount  int    `json:"task_count"`
}

type RepoStat struct {
	Repo           string `json:"github_repo"`
	TaskCount      int    `json:"task_count"`
	CompletedCount int    `json:"completed_count"`
}

type Stats struct {
	ColumnStats []ColumnStat `json:"columnStats"`
	RepoStats   []RepoStat   `json:"repoStats"`
	TotalTasks  int          `json:"totalTasks"`
}

// SyncResult reports a GitHub sync. Per-repository failures are collected
// in Errors and do not abort the sync.
type SyncResult struct {
	Synced int      `json:"synced"`
	Errors []string `json:"errors,omitempty"`
}

// RepoInfo is the metadata shown for each synced repository.
type RepoInfo struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Language    string     `json:"language,omitempty"`
	Stars       int        `json:"stars"`
	Forks       int        `json:"forks"`
	OpenIssues  int        `json:"openIssues"`
	TotalIssues int        `json:"totalIssues"`
	LastCommit  *time.Time `json:"lastCommit,omitempty"`
	URL         string     `json:"url,omitempty"`
	Error       string     `json:"error,omitempty"`
}
