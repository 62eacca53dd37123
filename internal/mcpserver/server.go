// Package mcpserver exposes the portfolio to MCP clients over streamable
// HTTP: the owner profile, projects, desktop search and the task board.
package mcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/profile"
	"github.com/Zachkp/deskfolio/internal/startmenu"
)

const (
	ServerName    = "deskfolio"
	ServerVersion = "0.1.0"
)

// TaskLister is the read side of the task board.
type TaskLister interface {
	ListTasks(ctx context.Context, filter kanban.Filter) ([]kanban.Task, error)
}

// Server is the MCP server for the portfolio.
type Server struct {
	mcpServer *mcpsdk.Server
	profile   *profile.Profile
	index     *startmenu.Index
	board     TaskLister
	logger    *slog.Logger
}

// New creates the server. board may be nil, in which case list_board_tasks
// is not offered.
func New(p *profile.Profile, index *startmenu.Index, board TaskLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		profile: p,
		index:   index,
		board:   board,
		logger:  logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Handler serves the MCP streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.mcpServer
	}, &mcpsdk.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_profile",
		Description: "Get the portfolio owner's profile: contact details, about text, projects, work experience, education and skills.",
	}, s.handleGetProfile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_projects",
		Description: "List portfolio projects with their tech stack and the desktop window that presents them. Optionally filter by technology.",
	}, s.handleListProjects)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "search_desktop",
		Description: "Fuzzy-search the desktop start menu. Returns apps and projects with the window id to open for each.",
	}, s.handleSearchDesktop)

	if s.board != nil {
		mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
			Name:        "list_board_tasks",
			Description: "List tasks on the portfolio's kanban board, newest first. Optionally filter by GitHub repository or column.",
		}, s.handleListBoardTasks)
	}
}

func (s *Server) handleGetProfile(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetProfileInput) (*mcpsdk.CallToolResult, profile.Profile, error) {
	return nil, *s.profile, nil
}

func (s *Server) handleListProjects(_ context.Context, _ *mcpsdk.CallToolRequest, args ListProjectsInput) (*mcpsdk.CallToolResult, ListProjectsOutput, error) {
	stack := strings.TrimSpace(args.Stack)
	projects := make([]profile.Project, 0, len(s.profile.Projects))
	for _, p := range s.profile.Projects {
		if stack == "" || usesTech(p, stack) {
			projects = append(projects, p)
		}
	}
	return nil, ListProjectsOutput{Projects: projects}, nil
}

func usesTech(p profile.Project, tech string) bool {
	for _, t := range p.Stack {
		if strings.EqualFold(t, tech) {
			return true
		}
	}
	return false
}

func (s *Server) handleSearchDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args SearchDesktopInput) (*mcpsdk.CallToolResult, SearchDesktopOutput, error) {
	if args.Limit < 0 {
		return nil, SearchDesktopOutput{}, errors.New("limit must not be negative")
	}
	results := s.index.Search(args.Query, args.Limit)
	out := SearchDesktopOutput{Results: make([]SearchHit, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, searchHit(r))
	}
	return nil, out, nil
}

func (s *Server) handleListBoardTasks(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListBoardTasksInput) (*mcpsdk.CallToolResult, ListBoardTasksOutput, error) {
	tasks, err := s.board.ListTasks(ctx, kanban.Filter{Repo: args.Repo, Column: args.Column})
	if err != nil {
		s.logger.Error("mcp list_board_tasks failed", "error", err)
		return nil, ListBoardTasksOutput{}, err
	}
	out := ListBoardTasksOutput{Tasks: make([]BoardTask, 0, len(tasks)), Count: len(tasks)}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, boardTask(t))
	}
	return nil, out, nil
}
