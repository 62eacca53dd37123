// admin.go - privacy-conscious admin console and visitor tracking
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/deskfolio/internal/config"
	"github.com/Zachkp/deskfolio/internal/store"
)

// Visits older than this are deleted.
const retentionMonths = 12

const (
	adminCookie     = "admin_token"
	recentVisitors  = 50
	visitorPageSize = 200
)

type visitLog interface {
	Record(ctx context.Context, v store.Visit) error
	Counts(ctx context.Context, now time.Time) (store.VisitCounts, error)
	Recent(ctx context.Context, limit int) ([]store.Visit, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type AdminStats struct {
	store.VisitCounts
	TotalTasks      int64         `json:"total_tasks"`
	ContactMessages int64         `json:"contact_messages"`
	ChatSessions    int64         `json:"chat_sessions"`
	DesktopSessions int64         `json:"desktop_sessions"`
	RecentVisitors  []store.Visit `json:"recent_visitors"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// admin serves the console. The token and hashing salt are regenerated on
// every start, so sessions and visitor hashes do not survive a restart.
type admin struct {
	username string
	password string
	token    string
	salt     string

	visitors visitLog
	tasks    counter
	contacts counter
	// chatSessions and desktopSessions report live in-memory counts.
	chatSessions    func() int
	desktopSessions func() int

	owner  string
	logger *slog.Logger
	now    func() time.Time
}

type adminDeps struct {
	Visitors        visitLog
	Tasks           counter
	Contacts        counter
	ChatSessions    func() int
	DesktopSessions func() int
	Owner           string
}

func newAdmin(cfg config.AdminConfig, deps adminDeps, logger *slog.Logger) (*admin, error) {
	token, err := generateAdminToken()
	if err != nil {
		return nil, err
	}
	salt, err := generateAdminToken()
	if err != nil {
		return nil, err
	}

	if gin.Mode() == gin.DebugMode {
		def := config.Default().Admin
		if cfg.Username == def.Username || cfg.Password == def.Password {
			logger.Warn("using default admin credentials; set ADMIN_USERNAME and ADMIN_PASSWORD")
		}
		logger.Debug("admin token (dev only)", "token", token)
	}
	logger.Info("admin access available", "path", "/admin/login")

	return &admin{
		username:        cfg.Username,
		password:        cfg.Password,
		token:           token,
		salt:            salt,
		visitors:        deps.Visitors,
		tasks:           deps.Tasks,
		contacts:        deps.Contacts,
		chatSessions:    deps.ChatSessions,
		desktopSessions: deps.DesktopSessions,
		owner:           deps.Owner,
		logger:          logger,
		now:             time.Now,
	}, nil
}

func generateAdminToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate admin token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// hashIP is stable per IP for the life of the process.
func (a *admin) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (a *admin) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a *admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func untracked(path string) bool {
	for _, prefix := range []string{"/static/", "/admin/", "/api/", "/mcp", "/health", "/favicon", "/privacy"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// trackingMiddleware records page views with a hashed IP. Requests with
// DNT: 1 are never recorded.
func (a *admin) trackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if untracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  a.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: a.now(),
		}
		go a.track(visit)
		c.Next()
	}
}

func (a *admin) track(v store.Visit) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.visitors.Record(ctx, v); err != nil {
		a.logger.Error("recording visit", "error", err)
	}
}

// cleanup deletes visits past the retention window.
func (a *admin) cleanup(ctx context.Context) (int64, error) {
	cutoff := a.now().AddDate(0, -retentionMonths, 0)
	n, err := a.visitors.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.logger.Info("privacy cleanup removed old visits", "count", n, "older_than_months", retentionMonths)
	}
	return n, nil
}

// runCleanup prunes old visits now and then every interval until ctx is done.
func (a *admin) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := a.cleanup(ctx); err != nil {
			a.logger.Error("privacy cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *admin) stats(ctx context.Context) (*AdminStats, error) {
	now := a.now()
	counts, err := a.visitors.Counts(ctx, now)
	if err != nil {
		return nil, err
	}
	recent, err := a.visitors.Recent(ctx, recentVisitors)
	if err != nil {
		return nil, err
	}
	stats := &AdminStats{VisitCounts: counts, RecentVisitors: recent, GeneratedAt: now.UTC()}

	if a.tasks != nil {
		if stats.TotalTasks, err = a.tasks.Count(ctx); err != nil {
			return nil, err
		}
	}
	if a.contacts != nil {
		if stats.ContactMessages, err = a.contacts.Count(ctx); err != nil {
			return nil, err
		}
	}
	if a.chatSessions != nil {
		stats.ChatSessions = int64(a.chatSessions())
	}
	if a.desktopSessions != nil {
		stats.DesktopSessions = int64(a.desktopSessions())
	}
	return stats, nil
}

func (a *admin) register(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"Owner":           a.owner,
			"RetentionMonths": retentionMonths,
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		who := a.hashIP(c.ClientIP())
		if !a.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			a.logger.Warn("failed admin login", "visitor", who)
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
			return
		}
		c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", gin.Mode() == gin.ReleaseMode, true)
		a.logger.Info("admin login", "visitor", who)
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	group := r.Group("/admin")
	group.Use(a.authMiddleware())

	group.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			a.logger.Error("loading admin stats", "error", err)
			c.String(http.StatusInternalServerError, "Failed to load statistics")
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"Stats":           stats,
			"RetentionMonths": retentionMonths,
		})
	})

	group.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			a.logger.Error("loading admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	group.GET("/visitors", func(c *gin.Context) {
		visits, err := a.visitors.Recent(c.Request.Context(), visitorPageSize)
		if err != nil {
			a.logger.Error("loading visitors", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"visitors": visits, "count": len(visits)})
	})

	group.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := a.cleanup(c.Request.Context())
		if err != nil {
			a.logger.Error("privacy cleanup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
			c.Redirect(http.StatusSeeOther, "/admin/dashboard")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "deleted": n})
	})

	group.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.stats(c.Request.Context())
		if err != nil {
			a.logger.Error("exporting admin stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		a.logger.Info("admin stats exported", "visitor", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
