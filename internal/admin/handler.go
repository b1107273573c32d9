// Package admin serves the review queue and user management for leads and the super admin.
package admin

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/apierr"
	"github.com/Atul2512anand/buildforage5/internal/middleware"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/queue"
	"github.com/Atul2512anand/buildforage5/pkg/response"
)

// BeginRequest is the body for POST /admin/approvals.
type BeginRequest struct {
	PostID string `json:"post_id" binding:"required"`
}

// SelectRequest is the body for PUT /admin/approvals/developer. An empty id clears the choice.
type SelectRequest struct {
	DeveloperID string `json:"developer_id"`
}

// Handler serves admin endpoints.
type Handler struct {
	orc    *workflow.Orchestrator
	emails queue.Enqueuer
	logger *zap.Logger
}

// NewHandler creates an admin handler.
func NewHandler(orc *workflow.Orchestrator, emails queue.Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{orc: orc, emails: emails, logger: logger}
}

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// Pending handles GET /admin/pending.
func (h *Handler) Pending(c *gin.Context) {
	response.OK(c, orEmpty(h.orc.Store().GetPendingPosts()))
}

// Users handles GET /admin/users.
func (h *Handler) Users(c *gin.Context) {
	response.OK(c, orEmpty(h.orc.Store().AdminGetAllUsers()))
}

// Developers handles GET /admin/developers.
func (h *Handler) Developers(c *gin.Context) {
	response.OK(c, orEmpty(h.orc.Store().GetDevelopers()))
}

// BeginApproval handles POST /admin/approvals.
func (h *Handler) BeginApproval(c *gin.Context) {
	var req BeginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	pending, err := h.orc.BeginApproval(c.Request.Context(), middleware.CurrentSession(c), req.PostID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, pending)
}

// SelectDeveloper handles PUT /admin/approvals/developer.
func (h *Handler) SelectDeveloper(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	pending, err := h.orc.SelectDeveloper(c.Request.Context(), middleware.CurrentSession(c), req.DeveloperID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, pending)
}

// ConfirmApproval handles POST /admin/approvals/confirm and emails the author.
func (h *Handler) ConfirmApproval(c *gin.Context) {
	p, err := h.orc.ConfirmApproval(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	h.notifyAuthor(c, p)
	response.OK(c, p)
}

func (h *Handler) notifyAuthor(c *gin.Context, p *models.Post) {
	author, err := h.orc.Store().GetUserByID(p.AuthorID)
	if err != nil || author.Email == "" {
		return
	}
	err = h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      queue.EmailIdeaApproved,
		RecipientEmail: author.Email,
		Subject:        "Your idea was approved: " + p.Title,
		Body:           "Hi " + author.Name + ",\n\n\"" + p.Title + "\" has been verified and is now live in the Sprint Hub.",
	})
	if err != nil {
		h.logger.Warn("approval email not queued", zap.String("post_id", p.ID), zap.Error(err))
	}
}

// CancelApproval handles DELETE /admin/approvals.
func (h *Handler) CancelApproval(c *gin.Context) {
	if err := h.orc.CancelApproval(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		apierr.Write(c, err)
		return
	}
	response.NoContent(c)
}

// Reject handles DELETE /admin/posts/:id.
func (h *Handler) Reject(c *gin.Context) {
	if err := h.orc.Reject(c.Request.Context(), middleware.CurrentSession(c), c.Param("id")); err != nil {
		apierr.Write(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleBlock handles POST /admin/users/:id/block.
func (h *Handler) ToggleBlock(c *gin.Context) {
	u, err := h.orc.ToggleBlock(middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, u)
}

// Register mounts the routes under /admin on an authenticated group.
func (h *Handler) Register(api *gin.RouterGroup) {
	g := api.Group("/admin", middleware.RequirePrivileged())
	g.GET("/pending", h.Pending)
	g.GET("/users", h.Users)
	g.GET("/developers", h.Developers)
	g.POST("/approvals", h.BeginApproval)
	g.PUT("/approvals/developer", h.SelectDeveloper)
	g.POST("/approvals/confirm", h.ConfirmApproval)
	g.DELETE("/approvals", h.CancelApproval)
	g.DELETE("/posts/:id", h.Reject)
	g.POST("/users/:id/block", h.ToggleBlock)
}
