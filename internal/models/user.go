package models

import (
	"time"
)

// Role represents user role in the platform.
type Role string

const (
	RoleFounder    Role = "FOUNDER"
	RoleDeveloper  Role = "DEVELOPER"
	RoleLead       Role = "LEAD"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleDeveloper, RoleLead, RoleSuperAdmin:
		return true
	}
	return false
}

// Privileged reports whether r can review ideas and manage any team.
func (r Role) Privileged() bool {
	return r == RoleLead || r == RoleSuperAdmin
}

// DeveloperProfile holds developer-specific signup data.
type DeveloperProfile struct {
	Skills       []string `json:"skills,omitempty"`
	College      string   `json:"college,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	GithubURL    string   `json:"github_url,omitempty"`
}

// StartupProfile holds founder-specific signup data.
type StartupProfile struct {
	StartupName string `json:"startup_name,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Description string `json:"description,omitempty"`
	TechNeeds   string `json:"tech_needs,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
}

// User represents a platform user.
type User struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone,omitempty"`
	Avatar    string            `json:"avatar,omitempty"`
	Bio       string            `json:"bio,omitempty"`
	Role      Role              `json:"role"`
	Blocked   bool              `json:"blocked"`
	Developer *DeveloperProfile `json:"developer,omitempty"`
	Startup   *StartupProfile   `json:"startup,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Developer != nil {
		d := *u.Developer
		d.Skills = append([]string(nil), u.Developer.Skills...)
		c.Developer = &d
	}
	if u.Startup != nil {
		s := *u.Startup
		c.Startup = &s
	}
	return &c
}

// UserUpdate carries the editable profile fields; nil means unchanged.
type UserUpdate struct {
	Name   *string `json:"name"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}
