// Package apierr maps domain errors onto the JSON response envelope.
package apierr

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Atul2512anand/buildforage5/internal/store"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/response"
)

// Write sends the response matching err. Unknown errors become a 500 without detail.
func Write(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, store.ErrEmailTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, store.ErrLoginFailed):
		response.Unauthorized(c, "login failed")
	case errors.Is(err, store.ErrBlocked):
		response.Forbidden(c, err.Error())
	case errors.Is(err, store.ErrForbidden), errors.Is(err, workflow.ErrViewNotAllowed):
		response.Forbidden(c, err.Error())
	case errors.Is(err, store.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, store.ErrInvalidTransition), errors.Is(err, workflow.ErrNoPendingApproval):
		response.Conflict(c, err.Error())
	case errors.Is(err, workflow.ErrSessionNotFound):
		response.Unauthorized(c, "session expired")
	default:
		_ = c.Error(err)
		response.Internal(c, "internal error")
	}
}
