package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Zachkp/deskfolio/internal/desktop"
)

type createSessionRequest struct {
	Viewport desktop.Viewport `json:"viewport"`
}

// commandRequest is a window command, optionally preceded by a viewport
// change. A request carrying only a viewport just relayouts.
type commandRequest struct {
	desktop.Command
	Viewport *desktop.Viewport `json:"viewport,omitempty"`
}

type commandReply struct {
	State   desktop.State `json:"state"`
	Warning string        `json:"warning,omitempty"`
}

var upgrader = websocket.Upgrader{}

// streamReadLimit bounds one client frame on the desktop stream.
const streamReadLimit = 64 << 10

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	id, mgr, err := s.deps.Sessions.Create(req.Viewport)
	if errors.Is(err, ErrTooManySessions) {
		errorJSON(c, http.StatusServiceUnavailable, "too many active desktops, please try again later")
		return
	}
	if err != nil {
		s.logger.Error("creating desktop session", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"manifest": mgr.Definitions(),
		"state":    mgr.State(),
	})
}

// manager resolves the :id parameter, writing a 404 when it is unknown.
func (s *Server) manager(c *gin.Context) (*desktop.Manager, bool) {
	mgr, err := s.deps.Sessions.Get(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, err.Error())
		return nil, false
	}
	return mgr, true
}

func (s *Server) getSession(c *gin.Context) {
	mgr, ok := s.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "state": mgr.State()})
}

func (s *Server) dispatch(c *gin.Context) {
	mgr, ok := s.manager(c)
	if !ok {
		return
	}

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, desktop.ErrUnknownCommand) {
			c.JSON(http.StatusOK, commandReply{State: mgr.State(), Warning: err.Error()})
			return
		}
		errorJSON(c, http.StatusBadRequest, "invalid command")
		return
	}
	c.JSON(http.StatusOK, apply(mgr, req))
}

// apply runs one command. Caller errors come back as a warning next to the
// unchanged state.
func apply(mgr *desktop.Manager, req commandRequest) commandReply {
	if req.Viewport != nil {
		mgr.SetViewport(*req.Viewport)
		if req.Kind == 0 {
			return commandReply{State: mgr.State()}
		}
	}
	state, err := mgr.Dispatch(req.Command)
	reply := commandReply{State: state}
	if err != nil {
		reply.Warning = err.Error()
	}
	return reply
}

func (s *Server) hibernate(c *gin.Context) {
	mgr, ok := s.manager(c)
	if !ok {
		return
	}
	snap := mgr.Hibernate()
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "state": mgr.State()})
}

func (s *Server) resume(c *gin.Context) {
	mgr, ok := s.manager(c)
	if !ok {
		return
	}
	var snap desktop.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid snapshot")
		return
	}
	skipped := mgr.Resume(snap)
	c.JSON(http.StatusOK, gin.H{"state": mgr.State(), "skipped": skipped})
}

// stream upgrades to a websocket. The current state is sent first, then
// every command the client sends is answered with the resulting state.
func (s *Server) stream(c *gin.Context) {
	id := c.Param("id")
	mgr, ok := s.manager(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session", id, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(streamReadLimit)

	if err := conn.WriteJSON(commandReply{State: mgr.State()}); err != nil {
		return
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) || websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("desktop stream closed", "session", id, "error", err)
			}
			return
		}

		// Keep the session alive while the stream is in use.
		if _, err := s.deps.Sessions.Get(id); err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
			return
		}

		var req commandRequest
		var reply commandReply
		if err := json.Unmarshal(msg, &req); err != nil {
			reply = commandReply{State: mgr.State(), Warning: err.Error()}
		} else {
			reply = apply(mgr, req)
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("desktop stream write failed", "session", id, "error", err)
			return
		}
	}
}
