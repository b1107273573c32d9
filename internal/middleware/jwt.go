package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Atul2512anand/buildforage5/internal/apierr"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
	// ContextSession is the key for the live *workflow.Session.
	ContextSession = "session"
	// ContextUser is the key for the current *models.User.
	ContextUser = "user"
)

// TokenValidator resolves a bearer token to its session id. *auth.JWTService satisfies it.
type TokenValidator interface {
	SessionID(token string) (string, error)
}

// JWT validates the bearer token, resumes its session and sets user claims in context.
// Tokens of logged-out sessions or blocked users are rejected.
func JWT(tokens TokenValidator, orc *workflow.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		sessionID, err := tokens.SessionID(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		sess, user, err := orc.Resume(c.Request.Context(), sessionID)
		if err != nil {
			apierr.Write(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, string(user.Role))
		c.Set(ContextUserEmail, user.Email)
		c.Set(ContextSession, sess)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentSession returns the session set by JWT.
func CurrentSession(c *gin.Context) *workflow.Session {
	v, _ := c.Get(ContextSession)
	s, _ := v.(*workflow.Session)
	return s
}

// CurrentUser returns the user set by JWT.
func CurrentUser(c *gin.Context) *models.User {
	v, _ := c.Get(ContextUser)
	u, _ := v.(*models.User)
	return u
}
