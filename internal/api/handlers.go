package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/deskfolio/internal/chat"
	"github.com/Zachkp/deskfolio/internal/contact"
	"github.com/Zachkp/deskfolio/internal/feeds"
	"github.com/Zachkp/deskfolio/internal/startmenu"
)

func (s *Server) search(c *gin.Context) {
	limit := startmenu.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errorJSON(c, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}
	query := c.Query("q")
	c.JSON(http.StatusOK, gin.H{"query": query, "results": s.deps.Index.Search(query, limit)})
}

func (s *Server) submitContact(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		errorJSON(c, http.StatusBadRequest, contact.ErrMissingFields.Error())
		return
	}

	err := s.deps.Contact.Submit(c.Request.Context(), sub)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Message sent successfully! You should receive a confirmation email shortly.",
		})
	case contact.IsValidation(err):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, contact.ErrNotConfigured):
		errorJSON(c, http.StatusInternalServerError, err.Error())
	default:
		errorJSON(c, http.StatusInternalServerError, "Failed to send message. Please try again later.")
	}
}

func (s *Server) chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, chat.ErrEmptyMessage.Error())
		return
	}

	resp, err := s.deps.Chat.Reply(c.Request.Context(), req)
	if errors.Is(err, chat.ErrEmptyMessage) {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to process chat message")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) chatHistory(c *gin.Context) {
	sessionID := c.DefaultQuery("sessionId", chat.DefaultSession)
	c.JSON(http.StatusOK, gin.H{
		"history":   s.deps.Chat.History(sessionID),
		"sessionId": sessionID,
	})
}

func (s *Server) weather(c *gin.Context) {
	res, err := s.deps.Weather.Current(c.Request.Context(), c.Param("city"))
	if err != nil {
		s.feedError(c, "weather", err)
		return
	}
	if res.Stale {
		c.Header("Warning", `110 - "Response is Stale"`)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", res.Value)
}

func (s *Server) news(c *gin.Context) {
	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, feeds.ErrInvalidPageSize.Error())
			return
		}
		pageSize = n
	}

	res, err := s.deps.News.Latest(c.Request.Context(), c.Query("country"), pageSize)
	if err != nil {
		s.feedError(c, "news", err)
		return
	}
	if res.Stale {
		c.Header("Warning", `110 - "Response is Stale"`)
	}
	c.JSON(http.StatusOK, res.Value)
}

func (s *Server) feedError(c *gin.Context, feed string, err error) {
	switch {
	case errors.Is(err, feeds.ErrWeatherNotConfigured), errors.Is(err, feeds.ErrNewsNotConfigured):
		errorJSON(c, http.StatusInternalServerError, err.Error())
	case errors.Is(err, feeds.ErrInvalidPageSize):
		errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("feed fetch failed", "feed", feed, "error", err)
		errorJSON(c, http.StatusBadGateway, "Failed to fetch "+feed+" data")
	}
}
