package models

import (
	"time"
)

// PostKind determines which view surfaces a post.
type PostKind string

const (
	KindIdea         PostKind = "IDEA_SUBMISSION"
	KindSprintUpdate PostKind = "SPRINT_UPDATE"
	KindOpenRole     PostKind = "OPEN_ROLE"
	KindDelivery     PostKind = "DELIVERY"
)

// Valid reports whether k is a known post kind.
func (k PostKind) Valid() bool {
	switch k {
	case KindIdea, KindSprintUpdate, KindOpenRole, KindDelivery:
		return true
	}
	return false
}

// PostStatus is the review state of an idea submission.
// Other kinds keep the zero value, which means visible.
type PostStatus string

const (
	StatusPending  PostStatus = "PENDING"
	StatusVerified PostStatus = "VERIFIED"
	StatusRejected PostStatus = "REJECTED"
)

// Blueprint is the MVP plan attached to a verified idea.
type Blueprint struct {
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
}

// Comment is feedback left on a post. UserName is copied at write time.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is an idea, sprint update, open role or delivery announcement.
type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	AuthorRole Role       `json:"author_role"`
	Kind       PostKind   `json:"kind"`
	Status     PostStatus `json:"status,omitempty"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content"`
	Company    string     `json:"company,omitempty"`
	JobLink    string     `json:"job_link,omitempty"`
	MVP        *Blueprint `json:"mvp,omitempty"`
	Team       []string   `json:"team"`
	Likes      int        `json:"likes"`
	LikedBy    []string   `json:"-"`
	Comments   []Comment  `json:"comments"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsVerifiedIdea reports whether the post is an idea that passed review.
func (p *Post) IsVerifiedIdea() bool {
	return p.Kind == KindIdea && p.Status == StatusVerified
}

// HasMember reports whether uid is on the post's team.
func (p *Post) HasMember(uid string) bool {
	for _, id := range p.Team {
		if id == uid {
			return true
		}
	}
	return false
}

// LikedByUser reports whether uid currently likes the post.
func (p *Post) LikedByUser(uid string) bool {
	for _, id := range p.LikedBy {
		if id == uid {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Team = append([]string{}, p.Team...)
	c.LikedBy = append([]string(nil), p.LikedBy...)
	c.Comments = append([]Comment{}, p.Comments...)
	if p.MVP != nil {
		m := *p.MVP
		m.TechStack = append([]string(nil), p.MVP.TechStack...)
		c.MVP = &m
	}
	return &c
}

// NewPost holds the fields a user supplies when creating a post.
type NewPost struct {
	AuthorID   string
	AuthorName string
	AuthorRole Role
	Kind       PostKind
	Title      string
	Content    string
	Company    string
	JobLink    string
}
