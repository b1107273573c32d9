package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

func TestIdeaReviewLifecycle(t *testing.T) {
	n := &recordingNotifier{}
	s := newTestStore(t, WithNotifier(n))
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	dev := mustDeveloper(t, s, "Dev", "dev1@x.co")

	idea := mustPost(t, s, founder, models.KindIdea, "Acme")
	assert.Equal(t, models.StatusPending, idea.Status)
	assert.Zero(t, idea.Likes)
	assert.Empty(t, idea.Team)
	assert.Empty(t, idea.Comments)
	assert.Contains(t, ids(s.GetPendingPosts()), idea.ID)

	verified, err := s.VerifyPost(idea.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, verified.Status)

	assigned, err := s.AssignDeveloper(idea.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, assigned.Status)
	assert.Equal(t, []string{dev.ID}, assigned.Team)
	assert.NotContains(t, ids(s.GetPendingPosts()), idea.ID)

	_, err = s.VerifyPost(idea.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	got, err := s.GetPost(idea.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, got.Status)

	assert.Equal(t, []string{EventPostCreated, EventPostVerified, EventTeamChanged}, n.types())
}

func TestVerifyPostRejectsNonIdeas(t *testing.T) {
	s := newTestStore(t)
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	update := mustPost(t, s, founder, models.KindSprintUpdate, "Week 1")
	assert.Empty(t, update.Status)

	_, err := s.VerifyPost(update.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.VerifyPost("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApproveIdea(t *testing.T) {
	n := &recordingNotifier{}
	s := newTestStore(t, WithNotifier(n))
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	dev := mustDeveloper(t, s, "Dev", "dev1@x.co")
	idea := mustPost(t, s, founder, models.KindIdea, "Acme")

	_, err := s.ApproveIdea(idea.ID, founder.ID)
	require.ErrorIs(t, err, ErrInvalidInput)
	got, err := s.GetPost(idea.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, got.Team)

	approved, err := s.ApproveIdea(idea.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, approved.Status)
	assert.Equal(t, []string{dev.ID}, approved.Team)

	other := mustDeveloper(t, s, "Other", "dev2@x.co")
	_, err = s.ApproveIdea(idea.ID, other.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	got, err = s.GetPost(idea.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{dev.ID}, got.Team)

	_, err = s.ApproveIdea("missing", "")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{EventPostCreated, EventPostVerified}, n.types())
}

func TestRejectDeletes(t *testing.T) {
	s := newTestStore(t)
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	idea := mustPost(t, s, founder, models.KindIdea, "Acme")

	require.NoError(t, s.DeletePost(idea.ID))
	_, err := s.GetPost(idea.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.GetPendingPosts())
	_, err = s.VerifyPost(idea.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeletePost(idea.ID), ErrNotFound)
}

func TestAssignDeveloperIdempotent(t *testing.T) {
	s := newTestStore(t)
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	dev := mustDeveloper(t, s, "Dev", "dev1@x.co")
	idea := mustPost(t, s, founder, models.KindIdea, "Acme")

	_, err := s.AssignDeveloper(idea.ID, dev.ID)
	require.NoError(t, err)
	p, err := s.AssignDeveloper(idea.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{dev.ID}, p.Team)

	_, err = s.AssignDeveloper("missing", dev.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.AssignDeveloper(idea.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.AssignDeveloper(idea.ID, founder.ID)
	require.ErrorIs(t, err, ErrInvalidInput)

	update := mustPost(t, s, founder, models.KindSprintUpdate, "Week 1")
	_, err = s.AssignDeveloper(update.ID, dev.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRemoveDeveloper(t *testing.T) {
	s := newTestStore(t)
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	d1 := mustDeveloper(t, s, "D1", "d1@x.co")
	d2 := mustDeveloper(t, s, "D2", "d2@x.co")
	idea := mustPost(t, s, founder, models.KindIdea, "Acme")
	_, err := s.AssignDeveloper(idea.ID, d1.ID)
	require.NoError(t, err)
	_, err = s.AssignDeveloper(idea.ID, d2.ID)
	require.NoError(t, err)

	p, err := s.RemoveDeveloper(idea.ID, d1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{d2.ID}, p.Team)

	p, err = s.RemoveDeveloper(idea.ID, d1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{d2.ID}, p.Team)
}

func TestAttachBlueprint(t *testing.T) {
	s := newTestStore(t)
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	idea := mustPost(t, s, founder, models.KindIdea, "Acme")
	bp := models.Blueprint{Description: "Web MVP", TechStack: []string{"Go", " ", "React"}}

	_, err := s.AttachBlueprint(idea.ID, bp)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.VerifyPost(idea.ID)
	require.NoError(t, err)
	p, err := s.AttachBlueprint(idea.ID, bp)
	require.NoError(t, err)
	require.NotNil(t, p.MVP)
	assert.Equal(t, []string{"Go", "React"}, p.MVP.TechStack)

	_, err = s.AttachBlueprint(idea.ID, models.Blueprint{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetPostsOpenRoleForDeveloper(t *testing.T) {
	s := newTestStore(t)
	ld := lead(t, s)
	founder := mustFounder(t, s, "Ann", "ann@x.co")
	dev := mustDeveloper(t, s, "Dev", "dev1@x.co")
	other := mustDeveloper(t, s, "Other", "dev2@x.co")

	role := mustPost(t, s, ld, models.KindOpenRole, "Frontend Dev")
	mine := mustPost(t, s, founder, models.KindIdea, "Mine")
	_, err := s.AssignDeveloper(mine.ID, dev.ID)
	require.NoError(t, err)
	_, err = s.VerifyPost(mine.ID)
	require.NoError(t, err)
	theirs := mustPost(t, s, founder, models.KindIdea, "Theirs")
	_, err = s.AssignDeveloper(theirs.ID, other.ID)
	require.NoError(t, err)
	_, err = s.VerifyPost(theirs.ID)
	require.NoError(t, err)

	got := s.GetPosts(models.KindOpenRole, models.RoleDeveloper, dev.ID)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
	for _, p := range got {
		assert.True(t, p.HasMember(dev.ID))
	}

	assert.Equal(t, []string{role.ID}, ids(s.GetPosts(models.KindOpenRole, models.RoleFounder, founder.ID)))
}

func TestGetPostsSprintHubVisibility(t *testing.T) {
	s := newTestStore(t)
	ld := lead(t, s)
	ann := mustFounder(t, s, "Ann", "ann@x.co")
	bob := mustFounder(t, s, "Bob", "bob@x.co")

	update := mustPost(t, s, ld, models.KindSprintUpdate, "Standup")
	pending := mustPost(t, s, ann, models.KindIdea, "Pending")
	verified := mustPost(t, s, ann, models.KindIdea, "Verified")
	_, err := s.VerifyPost(verified.ID)
	require.NoError(t, err)
	delivery := mustPost(t, s, ann, models.KindDelivery, "Shipped")

	assert.Equal(t, []string{verified.ID, pending.ID, update.ID},
		ids(s.GetPosts(models.KindSprintUpdate, models.RoleFounder, ann.ID)))
	assert.Equal(t, []string{verified.ID, update.ID},
		ids(s.GetPosts(models.KindSprintUpdate, models.RoleFounder, bob.ID)))
	assert.Equal(t, []string{verified.ID, pending.ID, update.ID},
		ids(s.GetPosts(models.KindSprintUpdate, models.RoleLead, ld.ID)))
	assert.Equal(t, []string{verified.ID},
		ids(s.GetPosts(models.KindIdea, models.RoleDeveloper, "someone")))
	assert.Equal(t, []string{delivery.ID},
		ids(s.GetPosts(models.KindDelivery, models.RoleDeveloper, "someone")))
}

func TestGetUserPostsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ann := mustFounder(t, s, "Ann", "ann@x.co")
	first := mustPost(t, s, ann, models.KindSprintUpdate, "one")
	second := mustPost(t, s, ann, models.KindDelivery, "two")
	third := mustPost(t, s, ann, models.KindIdea, "three")

	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(s.GetUserPosts(ann.ID)))
	assert.Empty(t, s.GetUserPosts("nobody"))
}

func TestCreatePostValidation(t *testing.T) {
	s := newTestStore(t)
	ann := mustFounder(t, s, "Ann", "ann@x.co")

	_, err := s.CreatePost(models.NewPost{AuthorID: ann.ID, Kind: "BOGUS", Content: "x"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.CreatePost(models.NewPost{AuthorID: ann.ID, Kind: models.KindSprintUpdate, Content: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	p, err := s.CreatePost(models.NewPost{
		AuthorID: ann.ID, Kind: models.KindSprintUpdate, Content: "x", Company: "ignored",
	})
	require.NoError(t, err)
	assert.Empty(t, p.Company)

	role, err := s.CreatePost(models.NewPost{
		AuthorID: ann.ID, Kind: models.KindOpenRole, Title: "Dev", Content: "x",
		Company: "Acme", JobLink: "https://acme.dev/jobs",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", role.Company)
	assert.Equal(t, "https://acme.dev/jobs", role.JobLink)
}

func TestToggleLikeOncePerUser(t *testing.T) {
	s := newTestStore(t)
	ann := mustFounder(t, s, "Ann", "ann@x.co")
	bob := mustFounder(t, s, "Bob", "bob@x.co")
	p := mustPost(t, s, ann, models.KindDelivery, "Shipped")

	likes, liked, err := s.ToggleLike(p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	assert.True(t, liked)

	likes, _, err = s.ToggleLike(p.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	likes, liked, err = s.ToggleLike(p.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	assert.False(t, liked)

	_, _, err = s.ToggleLike("missing", bob.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddComment(t *testing.T) {
	s := newTestStore(t)
	ann := mustFounder(t, s, "Ann", "ann@x.co")
	p := mustPost(t, s, ann, models.KindSprintUpdate, "Standup")

	got, err := s.AddComment(p.ID, ann.ID, "Ann", "  ")
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	got, err = s.AddComment(p.ID, ann.ID, "Ann", "Nice progress")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Nice progress", got.Comments[0].Text)
	assert.Equal(t, "Ann", got.Comments[0].UserName)
	assert.NotEmpty(t, got.Comments[0].ID)

	newName := "Ann B."
	_, err = s.UpdateUser(ann.ID, models.UserUpdate{Name: &newName})
	require.NoError(t, err)
	again, err := s.GetPost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", again.Comments[0].UserName)

	_, err = s.AddComment("missing", ann.ID, "Ann", "hi")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeedDemo(t *testing.T) {
	s := New()
	require.NoError(t, Seed(s, SeedConfig{
		LeadName: "L", LeadEmail: "l@x", AdminName: "R", AdminEmail: "r@x", Demo: true,
	}))
	assert.Len(t, s.GetDevelopers(), 2)
	assert.Empty(t, s.GetPendingPosts())

	dev, err := s.LoginUserByEmail("arjun@campusmail.edu")
	require.NoError(t, err)
	assigned := s.GetPosts(models.KindOpenRole, models.RoleDeveloper, dev.ID)
	require.Len(t, assigned, 1)
	assert.NotNil(t, assigned[0].MVP)

	err = Seed(s, SeedConfig{LeadName: "L2", LeadEmail: "l2@x", AdminName: "R2", AdminEmail: "r2@x"})
	require.ErrorIs(t, err, ErrInvalidInput)
}
