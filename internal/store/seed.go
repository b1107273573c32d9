package store

import (
	"fmt"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

// SeedConfig describes the accounts every fresh store starts with.
type SeedConfig struct {
	LeadName   string
	LeadEmail  string
	AdminName  string
	AdminEmail string
	// Demo adds a founder, two developers and a handful of posts.
	Demo bool
}

// Seed provisions the lead and super admin accounts and, optionally, demo content.
func Seed(s *Store, cfg SeedConfig) error {
	if _, err := s.ProvisionUser(cfg.AdminName, cfg.AdminEmail, models.RoleSuperAdmin); err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	lead, err := s.ProvisionUser(cfg.LeadName, cfg.LeadEmail, models.RoleLead)
	if err != nil {
		return fmt.Errorf("seed lead: %w", err)
	}
	if !cfg.Demo {
		return nil
	}

	founder, err := s.SignupFounder(FounderSignup{
		Name: "Priya Sharma", Email: "priya@campusmail.edu",
		StartupName: "StudySync", Stage: "Idea", TechNeeds: "Mobile app + backend",
	})
	if err != nil {
		return fmt.Errorf("seed founder: %w", err)
	}
	dev, err := s.SignupDeveloper(DeveloperSignup{
		Name: "Arjun Mehta", Email: "arjun@campusmail.edu",
		Skills: []string{"Go", "React"}, Availability: "20h/week",
	})
	if err != nil {
		return fmt.Errorf("seed developer: %w", err)
	}
	if _, err := s.SignupDeveloper(DeveloperSignup{
		Name: "Sara Khan", Email: "sara@campusmail.edu",
		Skills: []string{"Flutter", "Firebase"}, Availability: "10h/week",
	}); err != nil {
		return fmt.Errorf("seed developer: %w", err)
	}

	idea, err := s.CreatePost(models.NewPost{
		AuthorID: founder.ID, AuthorName: founder.Name, AuthorRole: founder.Role,
		Kind: models.KindIdea, Title: "StudySync",
		Content: "Shared study planner that syncs group deadlines across courses.",
	})
	if err != nil {
		return err
	}
	if _, err := s.AssignDeveloper(idea.ID, dev.ID); err != nil {
		return err
	}
	if _, err := s.VerifyPost(idea.ID); err != nil {
		return err
	}
	if _, err := s.AttachBlueprint(idea.ID, models.Blueprint{
		Description: "Web MVP with shared calendars and reminders.",
		TechStack:   []string{"Go", "React", "Redis"},
	}); err != nil {
		return err
	}

	demo := []models.NewPost{
		{AuthorID: lead.ID, AuthorName: lead.Name, AuthorRole: lead.Role, Kind: models.KindSprintUpdate,
			Content: "Sprint 1 kicked off. Daily standups at 6pm."},
		{AuthorID: lead.ID, AuthorName: lead.Name, AuthorRole: lead.Role, Kind: models.KindOpenRole,
			Title: "Frontend Developer", Company: "StudySync", Content: "React developer for the MVP dashboard."},
		{AuthorID: founder.ID, AuthorName: founder.Name, AuthorRole: founder.Role, Kind: models.KindDelivery,
			Title: "StudySync Beta", Content: "Beta is live for two campuses."},
	}
	for _, np := range demo {
		if _, err := s.CreatePost(np); err != nil {
			return err
		}
	}
	return nil
}
