package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/deskfolio/internal/chat"
)

// index renders the desktop. Window contents come from the profile; the
// window layout itself is fetched by the client from the session API.
func (s *Server) index(c *gin.Context) {
	p := s.deps.Profile
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Profile": p,
		"About":   template.HTML(chat.RenderHTML(p.About)),
		"Apps":    s.deps.Index.Apps(),
	})
}
