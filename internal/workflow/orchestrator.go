// Package workflow drives sessions, navigation and the idea review flow on top of the store.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/metrics"
	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/internal/store"
)

// Orchestrator applies role rules and session state to store operations.
type Orchestrator struct {
	store    *store.Store
	sessions SessionStore
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrchestrator wires the orchestrator. m may be nil.
func NewOrchestrator(st *store.Store, sessions SessionStore, m *metrics.Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: st, sessions: sessions, metrics: m, logger: logger, now: time.Now}
}

// Store exposes the underlying data service for read-only handlers.
func (o *Orchestrator) Store() *store.Store { return o.store }

func (o *Orchestrator) open(ctx context.Context, u *models.User) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		Role:      u.Role,
		View:      Landing(u.Role),
		CreatedAt: o.now(),
	}
	if err := o.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	o.logger.Info("session opened", zap.String("user_id", u.ID), zap.String("role", string(u.Role)), zap.String("view", string(sess.View)))
	return sess, nil
}

func (o *Orchestrator) login(ctx context.Context, method string, u *models.User, err error) (*Session, *models.User, error) {
	o.metrics.Login(method, err == nil)
	if err != nil {
		o.logger.Info("login rejected", zap.String("method", method), zap.Error(err))
		return nil, nil, err
	}
	sess, err := o.open(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return sess, u, nil
}

// SignupFounder registers a founder and logs them straight in.
func (o *Orchestrator) SignupFounder(ctx context.Context, f store.FounderSignup) (*Session, *models.User, error) {
	u, err := o.store.SignupFounder(f)
	return o.login(ctx, "signup_founder", u, err)
}

// SignupDeveloper registers a developer and logs them straight in.
func (o *Orchestrator) SignupDeveloper(ctx context.Context, d store.DeveloperSignup) (*Session, *models.User, error) {
	u, err := o.store.SignupDeveloper(d)
	return o.login(ctx, "signup_developer", u, err)
}

// LoginByEmail is the founder and developer entry point.
func (o *Orchestrator) LoginByEmail(ctx context.Context, email string) (*Session, *models.User, error) {
	u, err := o.store.LoginUserByEmail(strings.TrimSpace(email))
	if err == nil && u.Role.Privileged() {
		u, err = nil, fmt.Errorf("user %w", store.ErrNotFound)
	}
	return o.login(ctx, "email", u, err)
}

// LoginLead checks a lead's email with the shared access key.
func (o *Orchestrator) LoginLead(ctx context.Context, email, accessKey string) (*Session, *models.User, error) {
	u, err := o.store.LoginLead(strings.TrimSpace(email), accessKey)
	return o.login(ctx, "lead", u, err)
}

// LoginSuperAdmin checks the root password.
func (o *Orchestrator) LoginSuperAdmin(ctx context.Context, password string) (*Session, *models.User, error) {
	u, err := o.store.LoginSuperAdmin(password)
	return o.login(ctx, "super_admin", u, err)
}

// Resume loads a live session and its user. Sessions of users blocked since login are closed.
func (o *Orchestrator) Resume(ctx context.Context, sessionID string) (*Session, *models.User, error) {
	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	u, err := o.store.GetUserByID(sess.UserID)
	if err != nil {
		_ = o.sessions.Delete(ctx, sessionID)
		return nil, nil, ErrSessionNotFound
	}
	if u.Blocked {
		_ = o.sessions.Delete(ctx, sessionID)
		return nil, nil, store.ErrBlocked
	}
	return sess, u, nil
}

// Logout discards the session with all of its transient state.
func (o *Orchestrator) Logout(ctx context.Context, sess *Session) error {
	o.logger.Info("session closed", zap.String("user_id", sess.UserID))
	return o.sessions.Delete(ctx, sess.ID)
}

// Navigate switches the session to view when the role allows it.
func (o *Orchestrator) Navigate(ctx context.Context, sess *Session, view View) error {
	if !Allowed(sess.Role, view) {
		return fmt.Errorf("%w: %s", ErrViewNotAllowed, view)
	}
	sess.View = view
	if view != ViewMessages {
		sess.ActiveChat = ""
	}
	return o.sessions.Save(ctx, sess)
}

// Feed lists the posts of view, or of the session's current view when view is empty.
func (o *Orchestrator) Feed(sess *Session, view View) ([]*models.Post, error) {
	if view == "" {
		view = sess.View
	}
	if !Allowed(sess.Role, view) {
		return nil, fmt.Errorf("%w: %s", ErrViewNotAllowed, view)
	}
	kind, ok := FeedKind(view)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no feed", store.ErrInvalidInput, view)
	}
	return o.store.GetPosts(kind, sess.Role, sess.UserID), nil
}

// PostForm is the composer input.
type PostForm struct {
	IsIdea  bool
	Title   string
	Content string
	Company string
	JobLink string
}

// SubmitPost creates a post of the kind implied by the session's view.
func (o *Orchestrator) SubmitPost(sess *Session, author *models.User, form PostForm) (*models.Post, error) {
	kind, err := ComposeKind(sess.View, form.IsIdea)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(form.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", store.ErrInvalidInput)
	}
	if (kind == models.KindIdea || kind == models.KindDelivery) && strings.TrimSpace(form.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", store.ErrInvalidInput)
	}
	p, err := o.store.CreatePost(models.NewPost{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		AuthorRole: author.Role,
		Kind:       kind,
		Title:      form.Title,
		Content:    form.Content,
		Company:    form.Company,
		JobLink:    form.JobLink,
	})
	if err != nil {
		return nil, err
	}
	o.metrics.PostCreated(string(kind))
	return p, nil
}

func requirePrivileged(sess *Session) error {
	if !sess.Role.Privileged() {
		return fmt.Errorf("%w: review requires lead or super admin", store.ErrForbidden)
	}
	return nil
}

// BeginApproval opens the approval dialog for a pending idea.
func (o *Orchestrator) BeginApproval(ctx context.Context, sess *Session, postID string) (*PendingApproval, error) {
	if err := requirePrivileged(sess); err != nil {
		return nil, err
	}
	p, err := o.store.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if p.Kind != models.KindIdea || p.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: only pending ideas can be approved", store.ErrInvalidTransition)
	}
	sess.Pending = &PendingApproval{PostID: postID}
	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Pending, nil
}

// SelectDeveloper records the developer to assign on confirm. An empty id clears the choice.
func (o *Orchestrator) SelectDeveloper(ctx context.Context, sess *Session, devID string) (*PendingApproval, error) {
	if err := requirePrivileged(sess); err != nil {
		return nil, err
	}
	if sess.Pending == nil {
		return nil, ErrNoPendingApproval
	}
	if devID != "" {
		u, err := o.store.GetUserByID(devID)
		if err != nil {
			return nil, err
		}
		if u.Role != models.RoleDeveloper || u.Blocked {
			return nil, fmt.Errorf("%w: %s is not an available developer", store.ErrInvalidInput, devID)
		}
	}
	sess.Pending.DeveloperID = devID
	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Pending, nil
}

// ConfirmApproval assigns the chosen developer, if any, and verifies the idea in one store call.
// When the idea was reviewed elsewhere in the meantime the pending choice is dropped; other
// failures keep it so the admin can retry.
func (o *Orchestrator) ConfirmApproval(ctx context.Context, sess *Session) (*models.Post, error) {
	if err := requirePrivileged(sess); err != nil {
		return nil, err
	}
	pending := sess.Pending
	if pending == nil {
		return nil, ErrNoPendingApproval
	}
	p, err := o.store.ApproveIdea(pending.PostID, pending.DeveloperID)
	if errors.Is(err, store.ErrInvalidTransition) {
		sess.Pending = nil
		if serr := o.sessions.Save(ctx, sess); serr != nil {
			return nil, serr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	sess.Pending = nil
	if err := o.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	o.metrics.IdeaReviewed("approved")
	o.logger.Info("idea approved",
		zap.String("post_id", p.ID),
		zap.String("developer_id", pending.DeveloperID),
		zap.String("reviewer_id", sess.UserID))
	return p, nil
}

// CancelApproval drops the pending choice without touching the store.
func (o *Orchestrator) CancelApproval(ctx context.Context, sess *Session) error {
	if sess.Pending == nil {
		return nil
	}
	sess.Pending = nil
	return o.sessions.Save(ctx, sess)
}

// Reject deletes a pending idea.
func (o *Orchestrator) Reject(ctx context.Context, sess *Session, postID string) error {
	if err := requirePrivileged(sess); err != nil {
		return err
	}
	p, err := o.store.GetPost(postID)
	if err != nil {
		return err
	}
	if p.Kind != models.KindIdea || p.Status != models.StatusPending {
		return fmt.Errorf("%w: only pending ideas can be rejected", store.ErrInvalidTransition)
	}
	if err := o.store.DeletePost(postID); err != nil {
		return err
	}
	if sess.Pending != nil && sess.Pending.PostID == postID {
		sess.Pending = nil
		if err := o.sessions.Save(ctx, sess); err != nil {
			return err
		}
	}
	o.metrics.IdeaReviewed("rejected")
	o.logger.Info("idea rejected", zap.String("post_id", postID), zap.String("reviewer_id", sess.UserID))
	return nil
}

// CanManageTeam reports whether the session may edit the team of p.
func CanManageTeam(sess *Session, p *models.Post) bool {
	return p.IsVerifiedIdea() && (p.AuthorID == sess.UserID || sess.Role.Privileged())
}

func (o *Orchestrator) managedPost(sess *Session, postID string) (*models.Post, error) {
	p, err := o.store.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if !p.IsVerifiedIdea() {
		return nil, fmt.Errorf("%w: team is managed on verified ideas", store.ErrInvalidTransition)
	}
	if !CanManageTeam(sess, p) {
		return nil, fmt.Errorf("%w: only the author or an admin can manage the team", store.ErrForbidden)
	}
	return p, nil
}

// AddTeamMember assigns a developer to a verified idea.
func (o *Orchestrator) AddTeamMember(sess *Session, postID, devID string) (*models.Post, error) {
	if _, err := o.managedPost(sess, postID); err != nil {
		return nil, err
	}
	return o.store.AssignDeveloper(postID, devID)
}

// RemoveTeamMember removes a developer from a verified idea.
func (o *Orchestrator) RemoveTeamMember(sess *Session, postID, devID string) (*models.Post, error) {
	if _, err := o.managedPost(sess, postID); err != nil {
		return nil, err
	}
	return o.store.RemoveDeveloper(postID, devID)
}

// AttachBlueprint sets the MVP blueprint of a verified idea.
func (o *Orchestrator) AttachBlueprint(sess *Session, postID string, bp models.Blueprint) (*models.Post, error) {
	if _, err := o.managedPost(sess, postID); err != nil {
		return nil, err
	}
	return o.store.AttachBlueprint(postID, bp)
}

// ToggleBlock boards or deboards a user. Only the super admin may do this.
func (o *Orchestrator) ToggleBlock(sess *Session, uid string) (*models.User, error) {
	if sess.Role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only the super admin can block users", store.ErrForbidden)
	}
	return o.store.AdminToggleBlockUser(uid)
}

// SendMessage posts a direct message from the session's user.
func (o *Orchestrator) SendMessage(sess *Session, recipientID, text string) (*models.Message, error) {
	m, err := o.store.SendMessage(sess.UserID, recipientID, text)
	if err != nil {
		return nil, err
	}
	o.metrics.MessageSent()
	return m, nil
}

// OpenConversation marks otherID as the active chat and moves the session to MESSAGES
// when the role has that view.
func (o *Orchestrator) OpenConversation(ctx context.Context, sess *Session, otherID string) error {
	if _, err := o.store.GetUserByID(otherID); err != nil {
		return err
	}
	if Allowed(sess.Role, ViewMessages) {
		sess.View = ViewMessages
	}
	sess.ActiveChat = otherID
	return o.sessions.Save(ctx, sess)
}

// ShareText is the plain-text rendering of a post for the clipboard.
func ShareText(p *models.Post) string {
	title := p.Title
	if strings.TrimSpace(title) == "" {
		title = "Update"
	}
	return fmt.Sprintf("%s by %s\n\n%s\n\nShared via BuildForge", title, p.AuthorName, p.Content)
}

// MailtoLink is the mailto: URL for contacting u.
func MailtoLink(u *models.User) string {
	return "mailto:" + u.Email
}

// GetPost returns a post the session may see. Unreviewed ideas of other users read as missing.
func (o *Orchestrator) GetPost(sess *Session, postID string) (*models.Post, error) {
	p, err := o.store.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if p.Kind == models.KindIdea && p.Status != models.StatusVerified &&
		p.AuthorID != sess.UserID && !sess.Role.Privileged() {
		return nil, fmt.Errorf("post %w", store.ErrNotFound)
	}
	return p, nil
}
