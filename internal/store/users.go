package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/pkg/utils"
)

// FounderSignup is the founder self-registration form.
type FounderSignup struct {
	Name        string
	Email       string
	Phone       string
	StartupName string
	Stage       string
	Description string
	TechNeeds   string
	Budget      string
	Timeline    string
}

// DeveloperSignup is the developer self-registration form.
type DeveloperSignup struct {
	Name         string
	Email        string
	Phone        string
	College      string
	Skills       []string
	GithubURL    string
	Availability string
	Experience   string
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// SignupFounder registers a founder. Name, email and startup name are required.
func (s *Store) SignupFounder(f FounderSignup) (*models.User, error) {
	if blank(f.Name) || blank(f.Email) || blank(f.StartupName) {
		return nil, fmt.Errorf("%w: name, email and startup name are required", ErrInvalidInput)
	}
	u := &models.User{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
		Phone: f.Phone,
		Role:  models.RoleFounder,
		Startup: &models.StartupProfile{
			StartupName: strings.TrimSpace(f.StartupName),
			Stage:       f.Stage,
			Description: f.Description,
			TechNeeds:   f.TechNeeds,
			Budget:      f.Budget,
			Timeline:    f.Timeline,
		},
	}
	return s.insertUser(u)
}

// SignupDeveloper registers a developer. Name, email and at least one skill are required.
func (s *Store) SignupDeveloper(d DeveloperSignup) (*models.User, error) {
	skills := make([]string, 0, len(d.Skills))
	for _, sk := range d.Skills {
		if t := strings.TrimSpace(sk); t != "" {
			skills = append(skills, t)
		}
	}
	if blank(d.Name) || blank(d.Email) || len(skills) == 0 {
		return nil, fmt.Errorf("%w: name, email and skills are required", ErrInvalidInput)
	}
	u := &models.User{
		Name:  strings.TrimSpace(d.Name),
		Email: strings.TrimSpace(d.Email),
		Phone: d.Phone,
		Role:  models.RoleDeveloper,
		Developer: &models.DeveloperProfile{
			Skills:       skills,
			College:      d.College,
			Availability: d.Availability,
			Experience:   d.Experience,
			GithubURL:    d.GithubURL,
		},
	}
	return s.insertUser(u)
}

// ProvisionUser creates a LEAD or SUPER_ADMIN account. Self-registration never reaches here.
func (s *Store) ProvisionUser(name, email string, role models.Role) (*models.User, error) {
	if !role.Privileged() {
		return nil, fmt.Errorf("%w: only lead or super admin accounts are provisioned", ErrInvalidInput)
	}
	if blank(name) || blank(email) {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	return s.insertUser(&models.User{Name: name, Email: email, Role: role})
}

func (s *Store) insertUser(u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByEmailLocked(u.Email) != nil {
		return nil, ErrEmailTaken
	}
	if u.Role == models.RoleSuperAdmin && s.superAdminLocked() != nil {
		return nil, fmt.Errorf("%w: super admin already provisioned", ErrInvalidInput)
	}
	u.ID = s.newID()
	u.CreatedAt = s.now()
	u.Blocked = false
	s.users[u.ID] = u
	s.userSeq = append(s.userSeq, u.ID)
	s.logger.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u.Clone(), nil
}

func (s *Store) userByEmailLocked(email string) *models.User {
	for _, id := range s.userSeq {
		if u := s.users[id]; u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Store) superAdminLocked() *models.User {
	for _, id := range s.userSeq {
		if u := s.users[id]; u.Role == models.RoleSuperAdmin {
			return u
		}
	}
	return nil
}

// LoginUserByEmail looks a user up by exact email.
func (s *Store) LoginUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.userByEmailLocked(email)
	if u == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if u.Blocked {
		return nil, ErrBlocked
	}
	return u.Clone(), nil
}

// LoginLead checks a provisioned lead's email together with the shared access key.
// Every mismatch reports the same ErrLoginFailed.
func (s *Store) LoginLead(email, accessKey string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.userByEmailLocked(email)
	keyOK := s.secrets.LeadAccessKeyHash != "" && utils.CheckSecret(accessKey, s.secrets.LeadAccessKeyHash)
	if u == nil || u.Role != models.RoleLead || !keyOK || u.Blocked {
		return nil, ErrLoginFailed
	}
	return u.Clone(), nil
}

// LoginSuperAdmin returns the single super admin when password matches the root secret.
func (s *Store) LoginSuperAdmin(password string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.secrets.RootPasswordHash == "" || !utils.CheckSecret(password, s.secrets.RootPasswordHash) {
		return nil, ErrLoginFailed
	}
	u := s.superAdminLocked()
	if u == nil {
		return nil, ErrLoginFailed
	}
	return u.Clone(), nil
}

// GetUserByID returns a user or ErrNotFound.
func (s *Store) GetUserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	return u.Clone(), nil
}

// AdminGetAllUsers lists every user in registration order.
func (s *Store) AdminGetAllUsers() []*models.User {
	return s.listUsers(func(*models.User) bool { return true })
}

// GetDevelopers lists unblocked developers.
func (s *Store) GetDevelopers() []*models.User {
	return s.listUsers(func(u *models.User) bool { return u.Role == models.RoleDeveloper && !u.Blocked })
}

func (s *Store) listUsers(keep func(*models.User) bool) []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.userSeq))
	for _, id := range s.userSeq {
		if u := s.users[id]; keep(u) {
			out = append(out, u.Clone())
		}
	}
	return out
}

// AdminToggleBlockUser flips the blocked flag. Super admins cannot be blocked.
func (s *Store) AdminToggleBlockUser(uid string) (*models.User, error) {
	s.mu.Lock()
	u, ok := s.users[uid]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if u.Role == models.RoleSuperAdmin {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: super admin cannot be blocked", ErrForbidden)
	}
	u.Blocked = !u.Blocked
	out := u.Clone()
	s.mu.Unlock()

	s.logger.Info("user block toggled", zap.String("user_id", uid), zap.Bool("blocked", out.Blocked))
	s.emit(Event{Type: EventUserBlocked, Recipients: []string{uid}, Payload: map[string]interface{}{
		"user_id": uid, "blocked": out.Blocked,
	}})
	return out, nil
}

// UpdateUser merges name, bio and avatar into the profile.
func (s *Store) UpdateUser(uid string, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if upd.Name != nil {
		if blank(*upd.Name) {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	return u.Clone(), nil
}

// GetConnectedUsers returns everyone who shares a team with current (as author or member).
// Non-privileged users are also connected to every lead and super admin. The result never
// contains current itself.
func (s *Store) GetConnectedUsers(current *models.User) []*models.User {
	if current == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	connected := make(map[string]bool)
	for _, p := range s.posts {
		if p.AuthorID != current.ID && !p.HasMember(current.ID) {
			continue
		}
		if len(p.Team) == 0 {
			continue
		}
		connected[p.AuthorID] = true
		for _, id := range p.Team {
			connected[id] = true
		}
	}
	if !current.Role.Privileged() {
		for _, id := range s.userSeq {
			if s.users[id].Role.Privileged() {
				connected[id] = true
			}
		}
	}
	delete(connected, current.ID)

	out := make([]*models.User, 0, len(connected))
	for _, id := range s.userSeq {
		if connected[id] {
			out = append(out, s.users[id].Clone())
		}
	}
	return out
}
