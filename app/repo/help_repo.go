package repo

import (
	"errors"

	"medstock/app/models"

	"gorm.io/gorm"
)

type HelpRepository struct{ db *gorm.DB }

func NewHelpRepository(db *gorm.DB) *HelpRepository { return &HelpRepository{db: db} }

func (r *HelpRepository) Upsert(a *models.HelpArticle) error {
	existing, err := r.FindBySlug(a.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		a.ID = existing.ID
		return r.db.Save(a).Error
	}
	return r.db.Create(a).Error
}

func (r *HelpRepository) FindBySlug(slug string) (*models.HelpArticle, error) {
	var a models.HelpArticle
	err := r.db.Where("slug = ?", slug).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *HelpRepository) List(category string) ([]models.HelpArticle, error) {
	q := r.db.Order("title ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.HelpArticle
	return out, q.Find(&out).Error
}
