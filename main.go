package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/deskfolio/internal/api"
	"github.com/Zachkp/deskfolio/internal/chat"
	"github.com/Zachkp/deskfolio/internal/config"
	"github.com/Zachkp/deskfolio/internal/contact"
	"github.com/Zachkp/deskfolio/internal/desktop"
	"github.com/Zachkp/deskfolio/internal/feeds"
	"github.com/Zachkp/deskfolio/internal/kanban"
	"github.com/Zachkp/deskfolio/internal/mcpserver"
	"github.com/Zachkp/deskfolio/internal/profile"
	"github.com/Zachkp/deskfolio/internal/ratelimit"
	"github.com/Zachkp/deskfolio/internal/startmenu"
	"github.com/Zachkp/deskfolio/internal/store"
	"github.com/Zachkp/deskfolio/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.Mode)

	defs := desktop.DefaultManifest()
	if cfg.Desktop.ManifestPath != "" {
		defs, err = desktop.LoadManifest(cfg.Desktop.ManifestPath)
		if err != nil {
			logger.Error("failed to load desktop manifest", "path", cfg.Desktop.ManifestPath, "error", err)
			os.Exit(1)
		}
	}
	owner := profile.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The board and admin console need the database; everything else
	// serves without it.
	db := openDB(ctx, logger, cfg.DB.Path)
	if db != nil {
		defer db.Close()
	}

	integrations := cfg.Configured()

	sessions := api.NewSessions(api.SessionsConfig{
		Definitions: defs,
		Viewport:    desktop.Viewport{Width: cfg.Desktop.ViewportWidth, Height: cfg.Desktop.ViewportHeight},
		TTL:         cfg.Desktop.SessionTTL,
		MaxSessions: cfg.Desktop.MaxSessions,
		Logger:      logger,
	})
	index := startmenu.New(defs, owner)

	chatSvc := chat.NewService(newChatProvider(ctx, cfg.Chat, integrations.Chat),
		chat.NewTranscripts(cfg.Chat.MaxHistory), chat.SystemPrompt(owner), logger)

	var archive contact.Archive
	if db != nil {
		archive = store.NewContactRepository(db)
	}
	relay := contact.NewRelay(newMailer(cfg.Mail, integrations.Email), archive, contact.RelayConfig{
		From:      cfg.Mail.From,
		To:        cfg.Mail.To,
		OwnerName: cfg.Mail.OwnerName,
	}, logger)

	var board *kanban.Service
	var tasks *store.TaskRepository
	if db != nil {
		var source kanban.IssueSource
		if integrations.GitHub {
			source = kanban.NewGitHub(ctx, kanban.GitHubConfig{
				Token: cfg.GitHub.Token,
				Owner: cfg.GitHub.Owner,
				Repos: cfg.GitHub.Repos,
			})
		}
		tasks = store.NewTaskRepository(db)
		board = kanban.NewService(tasks, source, logger)
	}

	apiLimit := ratelimit.New(cfg.RateLimit.APIMax, cfg.RateLimit.Window)
	contactLimit := ratelimit.New(cfg.RateLimit.ContactMax, cfg.RateLimit.Window)

	deps := api.Deps{
		Profile:  owner,
		Sessions: sessions,
		Index:    index,
		Contact:  relay,
		Chat:     chatSvc,
		Weather: feeds.NewWeather(feeds.WeatherConfig{
			APIKey:      cfg.Weather.APIKey,
			DefaultCity: cfg.Weather.DefaultCity,
			TTL:         cfg.Weather.TTL,
		}),
		News: feeds.NewNews(feeds.NewsConfig{
			APIKey:          cfg.News.APIKey,
			DefaultCountry:  cfg.News.DefaultCountry,
			DefaultPageSize: cfg.News.PageSize,
			TTL:             cfg.News.TTL,
		}),
		Board:        board,
		Integrations: integrations,
		APILimit:     apiLimit,
		ContactLimit: contactLimit,
		CORSOrigin:   cfg.Server.CORSOrigin,
		Logger:       logger,
	}
	if db != nil {
		deps.DB = db
	}

	r := gin.Default()
	r.SetHTMLTemplate(web.Templates())
	if cfg.Server.StaticDir != "" {
		r.Static("/static", cfg.Server.StaticDir)
	} else {
		r.StaticFS("/static", web.Static())
	}

	if db != nil {
		console, err := newAdmin(cfg.Admin, adminDeps{
			Visitors:        store.NewVisitorRepository(db),
			Tasks:           tasks,
			Contacts:        store.NewContactRepository(db),
			ChatSessions:    chatSvc.Sessions,
			DesktopSessions: sessions.Len,
			Owner:           owner.Owner.Name,
		}, logger)
		if err != nil {
			logger.Error("failed to start admin console", "error", err)
			os.Exit(1)
		}
		r.Use(console.trackingMiddleware())
		console.register(r)
		go console.runCleanup(ctx, 24*time.Hour)
	}

	api.NewServer(deps).Register(r)

	var lister mcpserver.TaskLister
	if board != nil {
		lister = board
	}
	mcpHandler := gin.WrapH(mcpserver.New(owner, index, lister, logger).Handler())
	r.Any("/mcp", mcpHandler)

	go sessions.Janitor(ctx, time.Minute)
	go pruneLimiters(ctx, cfg.RateLimit.Window, apiLimit, contactLimit)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "mode", gin.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, srv)
}

// openDB returns nil when the database cannot be opened or migrated.
func openDB(ctx context.Context, logger *slog.Logger, path string) *store.DB {
	db, err := store.New(path)
	if err != nil {
		logger.Error("database unavailable, board and admin disabled", "path", path, "error", err)
		return nil
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("database unavailable, board and admin disabled", "path", path, "error", err)
		db.Close()
		return nil
	}
	return db
}

func newMailer(cfg config.MailConfig, configured bool) contact.Mailer {
	if !configured {
		return nil
	}
	if cfg.Provider == "smtp" {
		return contact.NewSMTP(contact.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
		})
	}
	return contact.NewBrevo(contact.BrevoConfig{APIKey: cfg.BrevoKey})
}

func newChatProvider(ctx context.Context, cfg config.ChatConfig, configured bool) chat.Provider {
	if !configured {
		return nil
	}
	if cfg.Provider == "openai" {
		model := cfg.Model
		if strings.HasPrefix(model, "gemini") {
			model = ""
		}
		return chat.NewOpenAI(ctx, chat.OpenAIConfig{APIKey: cfg.OpenAIKey, Model: model})
	}
	return chat.NewGemini(chat.GeminiConfig{APIKey: cfg.GeminiKey, Model: cfg.Model})
}

func pruneLimiters(ctx context.Context, interval time.Duration, limiters ...*ratelimit.Limiter) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				l.Prune()
			}
		}
	}
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
