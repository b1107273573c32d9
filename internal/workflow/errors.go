package workflow

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrViewNotAllowed    = errors.New("view not allowed for role")
	ErrNoPendingApproval = errors.New("no approval in progress")
)
