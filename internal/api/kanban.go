package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/deskfolio/internal/kanban"
)

// boardError writes a failed board response in the {success, error} shape
// the board client expects.
func (s *Server) boardError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, kanban.ErrInvalidInput), errors.Is(err, kanban.ErrColumnNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, kanban.ErrTaskNotFound):
		status = http.StatusNotFound
		message = "Task not found"
	case errors.Is(err, kanban.ErrIssueExists):
		status = http.StatusConflict
		message = "Issue is already on the board"
	case errors.Is(err, kanban.ErrGitHubNotConfigured):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("board request failed", "op", op, "error", err)
		message = "Failed to " + op
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid task id"})
		return 0, false
	}
	return id, true
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.deps.Board.ListTasks(c.Request.Context(), kanban.Filter{
		Repo:   c.Query("repo"),
		Column: c.Query("column"),
	})
	if err != nil {
		s.boardError(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tasks})
}

func (s *Server) createTask(c *gin.Context) {
	var in kanban.NewTask
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	task, err := s.deps.Board.CreateTask(c.Request.Context(), in)
	if err != nil {
		s.boardError(c, "create task", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    task,
		"message": fmt.Sprintf("Task added to %s successfully!", task.ColumnName),
	})
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var update kanban.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	task, err := s.deps.Board.UpdateTask(c.Request.Context(), id, update)
	if err != nil {
		s.boardError(c, "update task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": task})
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.deps.Board.DeleteTask(c.Request.Context(), id); err != nil {
		s.boardError(c, "delete task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted successfully"})
}

func (s *Server) clearAll(c *gin.Context) {
	n, err := s.deps.Board.ClearAll(c.Request.Context())
	if err != nil {
		s.boardError(c, "clear tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Deleted %d tasks", n),
		"deletedCount": n,
	})
}

func (s *Server) clearBoilerplate(c *gin.Context) {
	n, err := s.deps.Board.ClearBoilerplate(c.Request.Context())
	if err != nil {
		s.boardError(c, "clear boilerplate tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Deleted %d boilerplate tasks", n),
		"deletedCount": n,
	})
}

func (s *Server) board(c *gin.Context) {
	columns, err := s.deps.Board.Board(c.Request.Context())
	if err != nil {
		s.boardError(c, "load board", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": columns})
}

func (s *Server) boardStats(c *gin.Context) {
	stats, err := s.deps.Board.Stats(c.Request.Context())
	if err != nil {
		s.boardError(c, "load board stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func (s *Server) syncGitHub(c *gin.Context) {
	result, err := s.deps.Board.SyncGitHub(c.Request.Context())
	if err != nil {
		s.boardError(c, "sync GitHub", err)
		return
	}
	body := gin.H{
		"success": true,
		"message": fmt.Sprintf("Synced %d tasks from GitHub", result.Synced),
		"synced":  result.Synced,
	}
	if len(result.Errors) > 0 {
		body["errors"] = result.Errors
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) repoStats(c *gin.Context) {
	repos, err := s.deps.Board.RepoStats(c.Request.Context())
	if err != nil {
		s.boardError(c, "load repository stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": repos})
}
