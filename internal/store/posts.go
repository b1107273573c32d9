package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

// CreatePost stores a new post. Ideas start PENDING; other kinds are visible immediately.
func (s *Store) CreatePost(np models.NewPost) (*models.Post, error) {
	if !np.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown post kind %q", ErrInvalidInput, np.Kind)
	}
	if blank(np.AuthorID) || blank(np.Content) {
		return nil, fmt.Errorf("%w: author and content are required", ErrInvalidInput)
	}
	p := &models.Post{
		AuthorID:   np.AuthorID,
		AuthorName: np.AuthorName,
		AuthorRole: np.AuthorRole,
		Kind:       np.Kind,
		Title:      strings.TrimSpace(np.Title),
		Content:    np.Content,
		Team:       []string{},
		Comments:   []models.Comment{},
	}
	if np.Kind == models.KindOpenRole {
		p.Company = np.Company
		p.JobLink = np.JobLink
	}
	if np.Kind == models.KindIdea {
		p.Status = models.StatusPending
	}

	s.mu.Lock()
	p.ID = s.newID()
	p.CreatedAt = s.now()
	s.posts = append(s.posts, p)
	out := p.Clone()
	s.mu.Unlock()

	s.logger.Info("post created", zap.String("post_id", out.ID), zap.String("kind", string(out.Kind)))
	s.emit(Event{Type: EventPostCreated, Recipients: []string{out.AuthorID}, Payload: out})
	return out, nil
}

// GetPost returns a single post.
func (s *Store) GetPost(id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, p := s.findPost(id)
	if p == nil {
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	return p.Clone(), nil
}

// ideaVisible applies the review gate: unverified ideas are only shown to their author
// and to privileged roles.
func ideaVisible(p *models.Post, role models.Role, uid string) bool {
	return p.Status == models.StatusVerified || p.AuthorID == uid || role.Privileged()
}

// GetPosts returns the feed for kind as seen by the viewer, newest first.
//
// SPRINT_UPDATE and IDEA_SUBMISSION feeds both carry visible ideas. For a developer the
// OPEN_ROLE feed is "My Assignments": only posts whose team contains the viewer.
func (s *Store) GetPosts(kind models.PostKind, role models.Role, uid string) []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keep []*models.Post
	for _, p := range s.posts {
		switch kind {
		case models.KindSprintUpdate, models.KindIdea:
			if p.Kind == models.KindSprintUpdate && kind == models.KindSprintUpdate {
				keep = append(keep, p)
			} else if p.Kind == models.KindIdea && ideaVisible(p, role, uid) {
				keep = append(keep, p)
			}
		case models.KindOpenRole:
			if role == models.RoleDeveloper {
				if (p.Kind == models.KindOpenRole || p.IsVerifiedIdea()) && p.HasMember(uid) {
					keep = append(keep, p)
				}
			} else if p.Kind == models.KindOpenRole {
				keep = append(keep, p)
			}
		default:
			if p.Kind == kind {
				keep = append(keep, p)
			}
		}
	}
	return newestFirst(keep)
}

// GetPendingPosts returns the admin review queue, newest first.
func (s *Store) GetPendingPosts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keep []*models.Post
	for _, p := range s.posts {
		if p.Kind == models.KindIdea && p.Status == models.StatusPending {
			keep = append(keep, p)
		}
	}
	return newestFirst(keep)
}

// GetUserPosts returns every post authored by uid, newest first.
func (s *Store) GetUserPosts(uid string) []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keep []*models.Post
	for _, p := range s.posts {
		if p.AuthorID == uid {
			keep = append(keep, p)
		}
	}
	return newestFirst(keep)
}

// VerifyPost moves a pending idea to VERIFIED. Any other starting state is rejected.
func (s *Store) VerifyPost(id string) (*models.Post, error) {
	s.mu.Lock()
	_, p := s.findPost(id)
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	if p.Kind != models.KindIdea || p.Status != models.StatusPending {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: post %s is %s %s", ErrInvalidTransition, id, p.Kind, p.Status)
	}
	p.Status = models.StatusVerified
	out := p.Clone()
	s.mu.Unlock()

	s.logger.Info("post verified", zap.String("post_id", id), zap.Int("team_size", len(out.Team)))
	s.emit(Event{Type: EventPostVerified, Recipients: audience(out), Payload: out})
	return out, nil
}

// ApproveIdea verifies a pending idea and, when devID is set, puts that developer on its team.
// Both happen under one lock, so a failed approval leaves the post untouched.
func (s *Store) ApproveIdea(postID, devID string) (*models.Post, error) {
	s.mu.Lock()
	_, p := s.findPost(postID)
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	if p.Kind != models.KindIdea || p.Status != models.StatusPending {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: post %s is %s %s", ErrInvalidTransition, postID, p.Kind, p.Status)
	}
	if devID != "" {
		dev, ok := s.users[devID]
		if !ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("developer %w", ErrNotFound)
		}
		if dev.Role != models.RoleDeveloper || dev.Blocked {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s is not an available developer", ErrInvalidInput, devID)
		}
		if !p.HasMember(devID) {
			p.Team = append(p.Team, devID)
		}
	}
	p.Status = models.StatusVerified
	out := p.Clone()
	s.mu.Unlock()

	s.logger.Info("post verified", zap.String("post_id", postID), zap.String("developer_id", devID), zap.Int("team_size", len(out.Team)))
	s.emit(Event{Type: EventPostVerified, Recipients: audience(out), Payload: out})
	return out, nil
}

// DeletePost hard-removes a post.
func (s *Store) DeletePost(id string) error {
	s.mu.Lock()
	i, p := s.findPost(id)
	if p == nil {
		s.mu.Unlock()
		return fmt.Errorf("post %w", ErrNotFound)
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	s.mu.Unlock()

	s.logger.Info("post deleted", zap.String("post_id", id))
	s.emit(Event{Type: EventPostDeleted, Recipients: audience(p), Payload: map[string]string{"id": id}})
	return nil
}

// AssignDeveloper adds devID to an idea's team. Repeated calls leave a single entry.
func (s *Store) AssignDeveloper(postID, devID string) (*models.Post, error) {
	s.mu.Lock()
	_, p := s.findPost(postID)
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	dev, ok := s.users[devID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("developer %w", ErrNotFound)
	}
	if dev.Role != models.RoleDeveloper {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: user %s is not a developer", ErrInvalidInput, devID)
	}
	if p.Kind != models.KindIdea {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: teams belong to idea submissions", ErrInvalidTransition)
	}
	changed := false
	if !p.HasMember(devID) {
		p.Team = append(p.Team, devID)
		changed = true
	}
	out := p.Clone()
	s.mu.Unlock()

	if changed {
		s.logger.Info("developer assigned", zap.String("post_id", postID), zap.String("developer_id", devID))
		s.emit(Event{Type: EventTeamChanged, Recipients: audience(out), Payload: out})
	}
	return out, nil
}

// RemoveDeveloper takes devID off an idea's team. Removing a non-member is a no-op.
func (s *Store) RemoveDeveloper(postID, devID string) (*models.Post, error) {
	s.mu.Lock()
	_, p := s.findPost(postID)
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	before := audience(p)
	team := p.Team[:0]
	for _, id := range p.Team {
		if id != devID {
			team = append(team, id)
		}
	}
	changed := len(team) != len(p.Team)
	p.Team = team
	out := p.Clone()
	s.mu.Unlock()

	if changed {
		s.logger.Info("developer removed", zap.String("post_id", postID), zap.String("developer_id", devID))
		s.emit(Event{Type: EventTeamChanged, Recipients: before, Payload: out})
	}
	return out, nil
}

// AttachBlueprint sets the MVP blueprint on a verified idea.
func (s *Store) AttachBlueprint(postID string, bp models.Blueprint) (*models.Post, error) {
	if blank(bp.Description) {
		return nil, fmt.Errorf("%w: blueprint description is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p := s.findPost(postID)
	if p == nil {
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	if !p.IsVerifiedIdea() {
		return nil, fmt.Errorf("%w: blueprints attach to verified ideas only", ErrInvalidTransition)
	}
	stack := make([]string, 0, len(bp.TechStack))
	for _, t := range bp.TechStack {
		if t = strings.TrimSpace(t); t != "" {
			stack = append(stack, t)
		}
	}
	p.MVP = &models.Blueprint{Description: bp.Description, TechStack: stack}
	return p.Clone(), nil
}

// ToggleLike likes or unlikes postID on behalf of uid and returns the new count.
func (s *Store) ToggleLike(postID, uid string) (likes int, liked bool, err error) {
	if blank(uid) {
		return 0, false, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p := s.findPost(postID)
	if p == nil {
		return 0, false, fmt.Errorf("post %w", ErrNotFound)
	}
	if p.LikedByUser(uid) {
		rest := p.LikedBy[:0]
		for _, id := range p.LikedBy {
			if id != uid {
				rest = append(rest, id)
			}
		}
		p.LikedBy = rest
	} else {
		p.LikedBy = append(p.LikedBy, uid)
		liked = true
	}
	p.Likes = len(p.LikedBy)
	return p.Likes, liked, nil
}

// AddComment appends a comment. Empty text is ignored and returns the post unchanged.
func (s *Store) AddComment(postID, uid, userName, text string) (*models.Post, error) {
	s.mu.Lock()
	_, p := s.findPost(postID)
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("post %w", ErrNotFound)
	}
	if blank(text) {
		out := p.Clone()
		s.mu.Unlock()
		return out, nil
	}
	c := models.Comment{
		ID:        s.newID(),
		UserID:    uid,
		UserName:  userName,
		Text:      strings.TrimSpace(text),
		CreatedAt: s.now(),
	}
	p.Comments = append(p.Comments, c)
	out := p.Clone()
	s.mu.Unlock()

	s.emit(Event{Type: EventCommentAdded, Recipients: []string{out.AuthorID}, Payload: map[string]interface{}{
		"post_id": postID, "comment": c,
	}})
	return out, nil
}

// audience is the author plus the team of a post.
func audience(p *models.Post) []string {
	out := make([]string, 0, len(p.Team)+1)
	out = append(out, p.AuthorID)
	for _, id := range p.Team {
		if id != p.AuthorID {
			out = append(out, id)
		}
	}
	return out
}
