package mcpserver

import (
	"time"

	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/profile"
	"github.com/Zachkp/deskfolio/internal/startmenu"
)

// GetProfileInput is the input for the get_profile tool.
type GetProfileInput struct{}

// ListProjectsInput is the input for the list_projects tool.
type ListProjectsInput struct {
	Stack string `json:"stack,omitempty" jsonschema:"Only return projects whose stack includes this technology (case-insensitive)"`
}

// ListProjectsOutput is the output for the list_projects tool.
type ListProjectsOutput struct {
	Projects []profile.Project `json:"projects"`
}

// SearchDesktopInput is the input for the search_desktop tool.
type SearchDesktopInput struct {
	Query string `json:"query" jsonschema:"Text to fuzzy-match against desktop apps and projects"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default: 10)"`
}

// SearchHit is one start menu match.
type SearchHit struct {
	Title  string `json:"title"`
	Window string `json:"window"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
	Score  int    `json:"score"`
}

// SearchDesktopOutput is the output for the search_desktop tool.
type SearchDesktopOutput struct {
	Results []SearchHit `json:"results"`
}

func searchHit(r startmenu.Result) SearchHit {
	return SearchHit{
		Title:  r.Title,
		Window: r.Window,
		Kind:   string(r.Kind),
		Detail: r.Detail,
		Score:  r.Score,
	}
}

// ListBoardTasksInput is the input for the list_board_tasks tool.
type ListBoardTasksInput struct {
	Repo   string `json:"repo,omitempty" jsonschema:"Only return tasks synced from this GitHub repository"`
	Column string `json:"column,omitempty" jsonschema:"Only return tasks in this column (Backlog, In Progress, Review, Done)"`
}

// BoardTask is a task as reported to MCP clients.
type BoardTask struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Column      string   `json:"column"`
	Priority    string   `json:"priority"`
	Labels      []string `json:"labels"`
	GitHubRepo  string   `json:"github_repo,omitempty"`
	GitHubURL   string   `json:"github_url,omitempty"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   string   `json:"created_at"`
}

func boardTask(t kanban.Task) BoardTask {
	labels := t.Labels
	if labels == nil {
		labels = []string{}
	}
	return BoardTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Column:      t.ColumnName,
		Priority:    t.Priority,
		Labels:      labels,
		GitHubRepo:  t.GitHubRepo,
		GitHubURL:   t.GitHubURL,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

// ListBoardTasksOutput is the output for the list_board_tasks tool.
type ListBoardTasksOutput struct {
	Tasks []BoardTask `json:"tasks"`
	Count int         `json:"count"`
}
