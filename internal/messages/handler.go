// Package messages serves direct-message threads.
package messages

import (
	"github.com/gin-gonic/gin"

	"github.com/Atul2512anand/buildforage5/internal/apierr"
	"github.com/Atul2512anand/buildforage5/internal/middleware"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/response"
)

// SendRequest is the body for POST /conversations/:id/messages.
type SendRequest struct {
	Text string `json:"text"`
}

// Conversation is one row of the conversation list.
type Conversation struct {
	User *models.User `json:"user"`
}

// Handler serves messaging endpoints.
type Handler struct {
	orc *workflow.Orchestrator
}

// NewHandler creates a messages handler.
func NewHandler(orc *workflow.Orchestrator) *Handler {
	return &Handler{orc: orc}
}

// Conversations handles GET /conversations, most recent first.
func (h *Handler) Conversations(c *gin.Context) {
	st := h.orc.Store()
	out := []Conversation{}
	for _, id := range st.GetConversations(middleware.CurrentUser(c).ID) {
		u, err := st.GetUserByID(id)
		if err != nil {
			continue
		}
		out = append(out, Conversation{User: u})
	}
	response.OK(c, out)
}

// Thread handles GET /conversations/:id/messages.
func (h *Handler) Thread(c *gin.Context) {
	st := h.orc.Store()
	other := c.Param("id")
	if _, err := st.GetUserByID(other); err != nil {
		apierr.Write(c, err)
		return
	}
	msgs := st.GetMessages(middleware.CurrentUser(c).ID, other)
	if msgs == nil {
		msgs = []*models.Message{}
	}
	response.OK(c, msgs)
}

// Activate handles PUT /conversations/:id/active and makes the thread the session's open chat.
func (h *Handler) Activate(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.orc.OpenConversation(c.Request.Context(), sess, c.Param("id")); err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, gin.H{"view": sess.View, "active_chat": sess.ActiveChat})
}

// Send handles POST /conversations/:id/messages.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.orc.SendMessage(middleware.CurrentSession(c), c.Param("id"), req.Text)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.Created(c, m)
}

// Register mounts the routes on an authenticated group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/conversations", h.Conversations)
	api.GET("/conversations/:id/messages", h.Thread)
	api.POST("/conversations/:id/messages", h.Send)
	api.PUT("/conversations/:id/active", h.Activate)
}
