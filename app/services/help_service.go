package services

import (
	"medstock/app/models"
	"medstock/app/repo"
)

type HelpService struct {
	articles *repo.HelpRepository
}

func NewHelpService(articles *repo.HelpRepository) *HelpService {
	return &HelpService{articles: articles}
}

func (s *HelpService) List(category string) ([]models.HelpArticle, error) {
	return s.articles.List(category)
}

func (s *HelpService) Get(slug string) (*models.HelpArticle, error) {
	return s.articles.FindBySlug(slug)
}

// SeedDefaults installs the starter help center content. Safe to call on
// every boot.
func (s *HelpService) SeedDefaults() error {
	defaults := []models.HelpArticle{
		{Slug: "getting-started", Title: "Getting started", Category: "basics",
			Body: "Sign in with the account your administrator created, then open the inventory dashboard to record stock movements."},
		{Slug: "two-factor-auth", Title: "Protecting your account with 2FA", Category: "security",
			Body: "Scan the setup QR code with an authenticator app and confirm a code. Store the backup codes somewhere safe; each works once."},
		{Slug: "backups", Title: "How backups work", Category: "admin",
			Body: "Backups capture the inventory dataset and, optionally, audit logs, users, and settings. Use preview mode to see what a restore would change before running it."},
	}
	for i := range defaults {
		if err := s.articles.Upsert(&defaults[i]); err != nil {
			return err
		}
	}
	return nil
}
