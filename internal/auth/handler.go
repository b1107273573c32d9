package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/apierr"
	"github.com/Atul2512anand/buildforage5/internal/middleware"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/store"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/queue"
	"github.com/Atul2512anand/buildforage5/pkg/response"
	"github.com/Atul2512anand/buildforage5/pkg/utils"
)

// FounderSignupRequest is the body for POST /auth/signup/founder.
type FounderSignupRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	StartupName string `json:"startup_name" binding:"required"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
	TechNeeds   string `json:"tech_needs"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
}

// DeveloperSignupRequest is the body for POST /auth/signup/developer.
// Skills is the comma-separated list typed into the form.
type DeveloperSignupRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	College      string `json:"college"`
	Skills       string `json:"skills"`
	GithubURL    string `json:"github_url"`
	Availability string `json:"availability"`
	Experience   string `json:"experience"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email string `json:"email" binding:"required"`
}

// LeadLoginRequest is the body for POST /auth/login/lead.
type LeadLoginRequest struct {
	Email     string `json:"email" binding:"required"`
	AccessKey string `json:"access_key" binding:"required"`
}

// AdminLoginRequest is the body for POST /auth/login/admin.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// ViewRequest is the body for PUT /session/view.
type ViewRequest struct {
	View string `json:"view" binding:"required"`
}

// NavItem is one sidebar entry.
type NavItem struct {
	View  workflow.View `json:"view"`
	Label string        `json:"label"`
}

// SessionView describes the shell state of a session.
type SessionView struct {
	View       workflow.View             `json:"view"`
	Label      string                    `json:"label"`
	Navigation []NavItem                 `json:"navigation"`
	Pending    *workflow.PendingApproval `json:"pending,omitempty"`
	ActiveChat string                    `json:"active_chat,omitempty"`
}

// NewSessionView renders sess for clients.
func NewSessionView(sess *workflow.Session) SessionView {
	nav := []NavItem{}
	for _, v := range workflow.Navigation(sess.Role) {
		nav = append(nav, NavItem{View: v, Label: workflow.ViewLabel(sess.Role, v)})
	}
	return SessionView{
		View:       sess.View,
		Label:      workflow.ViewLabel(sess.Role, sess.View),
		Navigation: nav,
		Pending:    sess.Pending,
		ActiveChat: sess.ActiveChat,
	}
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Session SessionView  `json:"session"`
}

// Handler handles auth and session HTTP endpoints.
type Handler struct {
	orc    *workflow.Orchestrator
	jwt    *JWTService
	emails queue.Enqueuer
	logger *zap.Logger
}

// NewHandler creates an auth handler. emails may be nil.
func NewHandler(orc *workflow.Orchestrator, jwt *JWTService, emails queue.Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{orc: orc, jwt: jwt, emails: emails, logger: logger}
}

func (h *Handler) issue(c *gin.Context, status int, sess *workflow.Session, user *models.User) {
	token, err := h.jwt.Generate(user.ID, sess.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	c.JSON(status, response.Body{Success: true, Data: TokenResponse{Token: token, User: user, Session: NewSessionView(sess)}})
}

func (h *Handler) welcome(c *gin.Context, u *models.User) {
	if h.emails == nil {
		return
	}
	err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      queue.EmailWelcome,
		RecipientEmail: u.Email,
		Subject:        "Welcome to BuildForge",
		Body:           fmt.Sprintf("Hi %s,\n\nYour %s account is ready.", u.Name, u.Role),
	})
	if err != nil {
		h.logger.Warn("welcome email not queued", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// SignupFounder handles POST /auth/signup/founder.
func (h *Handler) SignupFounder(c *gin.Context) {
	var req FounderSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, user, err := h.orc.SignupFounder(c.Request.Context(), store.FounderSignup{
		Name: req.Name, Email: req.Email, Phone: req.Phone,
		StartupName: req.StartupName, Stage: req.Stage, Description: req.Description,
		TechNeeds: req.TechNeeds, Budget: req.Budget, Timeline: req.Timeline,
	})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	h.welcome(c, user)
	h.issue(c, http.StatusCreated, sess, user)
}

// SignupDeveloper handles POST /auth/signup/developer.
func (h *Handler) SignupDeveloper(c *gin.Context) {
	var req DeveloperSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, user, err := h.orc.SignupDeveloper(c.Request.Context(), store.DeveloperSignup{
		Name: req.Name, Email: req.Email, Phone: req.Phone, College: req.College,
		Skills: utils.SplitTrim(req.Skills, ","), GithubURL: req.GithubURL,
		Availability: req.Availability, Experience: req.Experience,
	})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	h.welcome(c, user)
	h.issue(c, http.StatusCreated, sess, user)
}

// Login handles POST /auth/login for founders and developers.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, user, err := h.orc.LoginByEmail(c.Request.Context(), req.Email)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	h.issue(c, http.StatusOK, sess, user)
}

// LoginLead handles POST /auth/login/lead.
func (h *Handler) LoginLead(c *gin.Context) {
	var req LeadLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, user, err := h.orc.LoginLead(c.Request.Context(), req.Email, req.AccessKey)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	h.issue(c, http.StatusOK, sess, user)
}

// LoginAdmin handles POST /auth/login/admin.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess, user, err := h.orc.LoginSuperAdmin(c.Request.Context(), req.Password)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	h.issue(c, http.StatusOK, sess, user)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.orc.Logout(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, gin.H{"logged_out": true})
}

// Session handles GET /session.
func (h *Handler) Session(c *gin.Context) {
	response.OK(c, gin.H{
		"user":    middleware.CurrentUser(c),
		"session": NewSessionView(middleware.CurrentSession(c)),
	})
}

// Navigate handles PUT /session/view.
func (h *Handler) Navigate(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sess := middleware.CurrentSession(c)
	if err := h.orc.Navigate(c.Request.Context(), sess, workflow.View(req.View)); err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, NewSessionView(sess))
}

// RegisterPublic mounts signup and login routes.
func (h *Handler) RegisterPublic(r *gin.RouterGroup) {
	g := r.Group("/auth")
	g.POST("/signup/founder", h.SignupFounder)
	g.POST("/signup/developer", h.SignupDeveloper)
	g.POST("/login", h.Login)
	g.POST("/login/lead", h.LoginLead)
	g.POST("/login/admin", h.LoginAdmin)
}

// Register mounts session routes on an authenticated group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/auth/logout", h.Logout)
	api.GET("/session", h.Session)
	api.PUT("/session/view", h.Navigate)
}
