// Package api exposes the desktop sessions and the portfolio backends over
// HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/deskfolio/internal/chat"
	"github.com/Zachkp/deskfolio/internal/config"
	"github.com/Zachkp/deskfolio/internal/contact"
	"github.com/Zachkp/deskfolio/internal/feeds"
	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/profile"
	"github.com/Zachkp/deskfolio/internal/ratelimit"
	"github.com/Zachkp/deskfolio/internal/startmenu"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Available(ctx context.Context) bool
}

// Deps are the services behind the HTTP API. Board and DB may be nil when
// the database could not be opened; the board routes are then not mounted.
type Deps struct {
	Profile  *profile.Profile
	Sessions *Sessions
	Index    *startmenu.Index
	Contact  *contact.Relay
	Chat     *chat.Service
	Weather  *feeds.Weather
	News     *feeds.News
	Board    *kanban.Service
	DB       Pinger

	// Integrations is reported by /health. Database is filled in per
	// request from DB.
	Integrations config.Configured

	APILimit     *ratelimit.Limiter
	ContactLimit *ratelimit.Limiter
	CORSOrigin   string
	Logger       *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	deps   Deps
	logger *slog.Logger
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{deps: deps, logger: logger}
}

// Register mounts every route on r. The engine must already have the page
// templates loaded.
func (s *Server) Register(r *gin.Engine) {
	r.Use(CORS(s.deps.CORSOrigin))

	r.GET("/", s.index)
	r.GET("/health", s.health)

	api := r.Group("/api")
	if s.deps.APILimit != nil {
		api.Use(s.deps.APILimit.Middleware("Too many requests from this IP, please try again after 15 minutes"))
	}

	desktop := api.Group("/desktop/sessions")
	desktop.POST("", s.createSession)
	desktop.GET("/:id", s.getSession)
	desktop.POST("/:id/commands", s.dispatch)
	desktop.POST("/:id/hibernate", s.hibernate)
	desktop.POST("/:id/resume", s.resume)
	desktop.GET("/:id/stream", s.stream)

	api.GET("/search", s.search)

	contactHandlers := []gin.HandlerFunc{s.submitContact}
	if s.deps.ContactLimit != nil {
		contactHandlers = append([]gin.HandlerFunc{
			s.deps.ContactLimit.Middleware("Too many contact form submissions, please try again later."),
		}, contactHandlers...)
	}
	api.POST("/contact", contactHandlers...)

	api.POST("/chat", s.chat)
	api.GET("/chat/history", s.chatHistory)

	api.GET("/weather", s.weather)
	api.GET("/weather/:city", s.weather)
	api.GET("/news", s.news)

	if s.deps.Board != nil {
		api.GET("/tasks", s.listTasks)
		api.POST("/tasks", s.createTask)
		api.DELETE("/tasks/clear-all", s.clearAll)
		api.DELETE("/tasks/clear-boilerplate", s.clearBoilerplate)
		api.PUT("/tasks/:id", s.updateTask)
		api.DELETE("/tasks/:id", s.deleteTask)
		api.GET("/board", s.board)
		api.GET("/board/stats", s.boardStats)
		api.POST("/github/sync", s.syncGitHub)
		api.GET("/github/repos/stats", s.repoStats)
	}
}

func (s *Server) health(c *gin.Context) {
	status := s.deps.Integrations
	status.Database = s.deps.DB != nil && s.deps.DB.Available(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"message":              "Server is running",
		"apiKeyConfigured":     status.Chat,
		"weatherApiConfigured": status.Weather,
		"newsApiConfigured":    status.News,
		"emailConfigured":      status.Email,
		"githubConfigured":     status.GitHub,
		"databaseAvailable":    status.Database,
	})
}

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
