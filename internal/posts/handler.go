// Package posts serves feeds, the composer and per-post actions.
package posts

import (
	"github.com/gin-gonic/gin"

	"github.com/Atul2512anand/buildforage5/internal/apierr"
	"github.com/Atul2512anand/buildforage5/internal/middleware"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/response"
	"github.com/Atul2512anand/buildforage5/pkg/utils"
)

// CreateRequest is the body for POST /posts. The kind follows the session's current view.
type CreateRequest struct {
	IsIdea  bool   `json:"is_idea"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Company string `json:"company"`
	JobLink string `json:"job_link"`
}

// CommentRequest is the body for POST /posts/:id/comments.
type CommentRequest struct {
	Text string `json:"text"`
}

// TeamRequest is the body for POST /posts/:id/team.
type TeamRequest struct {
	DeveloperID string `json:"developer_id" binding:"required"`
}

// BlueprintRequest is the body for PUT /posts/:id/blueprint. TechStack is comma-separated.
type BlueprintRequest struct {
	Description string `json:"description" binding:"required"`
	TechStack   string `json:"tech_stack"`
}

// Handler serves post endpoints.
type Handler struct {
	orc *workflow.Orchestrator
}

// NewHandler creates a posts handler.
func NewHandler(orc *workflow.Orchestrator) *Handler {
	return &Handler{orc: orc}
}

// Feed handles GET /feed. ?view= overrides the session's current view.
func (h *Handler) Feed(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	list, err := h.orc.Feed(sess, workflow.View(c.Query("view")))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	if list == nil {
		list = []*models.Post{}
	}
	response.OK(c, list)
}

// Create handles POST /posts.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.orc.SubmitPost(middleware.CurrentSession(c), middleware.CurrentUser(c), workflow.PostForm{
		IsIdea:  req.IsIdea,
		Title:   req.Title,
		Content: req.Content,
		Company: req.Company,
		JobLink: req.JobLink,
	})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.Created(c, p)
}

// Get handles GET /posts/:id.
func (h *Handler) Get(c *gin.Context) {
	p, err := h.orc.GetPost(middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, gin.H{
		"post":            p,
		"liked":           p.LikedByUser(middleware.CurrentUser(c).ID),
		"can_manage_team": workflow.CanManageTeam(middleware.CurrentSession(c), p),
	})
}

// Like handles POST /posts/:id/like. Each user holds at most one like; repeating toggles it.
func (h *Handler) Like(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if _, err := h.orc.GetPost(sess, c.Param("id")); err != nil {
		apierr.Write(c, err)
		return
	}
	likes, liked, err := h.orc.Store().ToggleLike(c.Param("id"), sess.UserID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, gin.H{"likes": likes, "liked": liked})
}

// Comment handles POST /posts/:id/comments. Blank text leaves the post unchanged.
func (h *Handler) Comment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess := middleware.CurrentSession(c)
	if _, err := h.orc.GetPost(sess, c.Param("id")); err != nil {
		apierr.Write(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	p, err := h.orc.Store().AddComment(c.Param("id"), user.ID, user.Name, req.Text)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, p)
}

// Share handles GET /posts/:id/share.
func (h *Handler) Share(c *gin.Context) {
	p, err := h.orc.GetPost(middleware.CurrentSession(c), c.Param("id"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, gin.H{"text": workflow.ShareText(p)})
}

// AddTeamMember handles POST /posts/:id/team.
func (h *Handler) AddTeamMember(c *gin.Context) {
	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.orc.AddTeamMember(middleware.CurrentSession(c), c.Param("id"), req.DeveloperID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, p)
}

// RemoveTeamMember handles DELETE /posts/:id/team/:devId.
func (h *Handler) RemoveTeamMember(c *gin.Context) {
	p, err := h.orc.RemoveTeamMember(middleware.CurrentSession(c), c.Param("id"), c.Param("devId"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, p)
}

// AttachBlueprint handles PUT /posts/:id/blueprint.
func (h *Handler) AttachBlueprint(c *gin.Context) {
	var req BlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.orc.AttachBlueprint(middleware.CurrentSession(c), c.Param("id"), models.Blueprint{
		Description: req.Description,
		TechStack:   utils.SplitTrim(req.TechStack, ","),
	})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, p)
}

// Register mounts the routes on an authenticated group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/feed", h.Feed)
	api.POST("/posts", h.Create)
	api.GET("/posts/:id", h.Get)
	api.POST("/posts/:id/like", h.Like)
	api.POST("/posts/:id/comments", h.Comment)
	api.GET("/posts/:id/share", h.Share)
	api.POST("/posts/:id/team", h.AddTeamMember)
	api.DELETE("/posts/:id/team/:devId", h.RemoveTeamMember)
	api.PUT("/posts/:id/blueprint", h.AttachBlueprint)
}
