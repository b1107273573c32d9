// Package users serves profiles, connections and the contact form.
package users

import (
	"context"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/apierr"
	"github.com/Atul2512anand/buildforage5/internal/middleware"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/store"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/queue"
	"github.com/Atul2512anand/buildforage5/pkg/response"
	"github.com/Atul2512anand/buildforage5/pkg/storage"
)

// AvatarStore keeps profile pictures. *storage.S3 satisfies it.
type AvatarStore interface {
	UploadAvatar(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error)
	DeleteAvatar(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

// UpdateRequest is the body for PATCH /users/me. Absent fields are left unchanged.
type UpdateRequest struct {
	Name   *string `json:"name"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

// ContactRequest is the body for POST /contact.
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Handler serves user endpoints.
type Handler struct {
	store        *store.Store
	avatars      AvatarStore
	emails       queue.Enqueuer
	supportEmail string
	logger       *zap.Logger
}

// NewHandler creates a users handler. avatars may be nil when uploads are disabled.
func NewHandler(st *store.Store, avatars AvatarStore, emails queue.Enqueuer, supportEmail string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, avatars: avatars, emails: emails, supportEmail: supportEmail, logger: logger}
}

func emptyIfNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// Me handles GET /users/me.
func (h *Handler) Me(c *gin.Context) {
	response.OK(c, middleware.CurrentUser(c))
}

// UpdateMe handles PATCH /users/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.store.UpdateUser(middleware.CurrentUser(c).ID, models.UserUpdate{Name: req.Name, Bio: req.Bio, Avatar: req.Avatar})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, u)
}

// UploadAvatar handles POST /users/me/avatar (multipart field "file").
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.avatars == nil {
		response.ServiceUnavailable(c, "avatar uploads are not configured")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fh.Size > storage.MaxAvatarFileSize {
		response.BadRequest(c, fmt.Sprintf("file exceeds %d bytes", storage.MaxAvatarFileSize))
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !storage.ValidateAvatarFileType(contentType, fh.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}
	if _, ok := storage.AllowedAvatarTypes[contentType]; !ok {
		contentType = storage.ContentTypeForFilename(fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "cannot read file")
		return
	}
	defer f.Close()

	user := middleware.CurrentUser(c)
	url, err := h.avatars.UploadAvatar(c.Request.Context(), storage.AvatarKey(user.ID, fh.Filename), contentType, f, fh.Size)
	if err != nil {
		h.logger.Error("avatar upload failed", zap.String("user_id", user.ID), zap.Error(err))
		response.Internal(c, "upload failed")
		return
	}
	updated, err := h.store.UpdateUser(user.ID, models.UserUpdate{Avatar: &url})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	if old := h.avatars.KeyFromURL(user.Avatar); old != "" {
		if err := h.avatars.DeleteAvatar(c.Request.Context(), old); err != nil {
			h.logger.Warn("old avatar not deleted", zap.String("key", old), zap.Error(err))
		}
	}
	response.OK(c, updated)
}

// MyPosts handles GET /users/me/posts.
func (h *Handler) MyPosts(c *gin.Context) {
	response.OK(c, emptyIfNil(h.store.GetUserPosts(middleware.CurrentUser(c).ID)))
}

// Connections handles GET /users/connections.
func (h *Handler) Connections(c *gin.Context) {
	response.OK(c, emptyIfNil(h.store.GetConnectedUsers(middleware.CurrentUser(c))))
}

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	u, err := h.store.GetUserByID(c.Param("id"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, u)
}

// ContactLink handles GET /users/:id/contact.
func (h *Handler) ContactLink(c *gin.Context) {
	u, err := h.store.GetUserByID(c.Param("id"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	response.OK(c, gin.H{"mailto": workflow.MailtoLink(u)})
}

// Contact handles POST /contact. Delivery problems are reported as a notice, not an error.
func (h *Handler) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, email and message are required")
		return
	}
	err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      queue.EmailContact,
		RecipientEmail: h.supportEmail,
		ReplyTo:        req.Email,
		Subject:        "Contact form: " + req.Name,
		Body:           req.Message,
	})
	if err != nil {
		h.logger.Warn("contact message not queued", zap.String("from", req.Email), zap.Error(err))
		response.OK(c, gin.H{"sent": false, "notice": "We could not send your message right now. Please email " + h.supportEmail + "."})
		return
	}
	response.OK(c, gin.H{"sent": true, "notice": "Thanks! We will get back to you soon."})
}

// Register mounts the authenticated routes.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/users/me", h.Me)
	api.PATCH("/users/me", h.UpdateMe)
	api.POST("/users/me/avatar", h.UploadAvatar)
	api.GET("/users/me/posts", h.MyPosts)
	api.GET("/users/connections", h.Connections)
	api.GET("/users/:id", h.Get)
	api.GET("/users/:id/contact", h.ContactLink)
}
