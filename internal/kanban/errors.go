package kanban

import "errors"

var (
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrColumnNotFound is returned when a column name or id does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidInput is returned when task input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGitHubNotConfigured is returned when sync is requested without a
	// token, owner or repository list.
	ErrGitHubNotConfigured = errors.New("github sync not configured")

	// ErrIssueExists is returned when a GitHub issue is already on the board.
	ErrIssueExists = errors.New("issue already on board")
)
