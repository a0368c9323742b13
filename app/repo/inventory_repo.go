package repo

import (
	"errors"

	"medstock/app/models"

	"gorm.io/gorm"
)

type InventoryRepository struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) DB() *gorm.DB { return r.db }

func (r *InventoryRepository) Create(item *models.InventoryItem) error {
	return r.db.Create(item).Error
}

func (r *InventoryRepository) Save(item *models.InventoryItem) error {
	return r.db.Save(item).Error
}

func (r *InventoryRepository) FindBySKU(sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.Where("sku = ?", sku).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) List(category, search string, page, limit int) ([]models.InventoryItem, int64, error) {
	q := r.db.Model(&models.InventoryItem{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if search != "" {
		q = q.Where("name LIKE ? OR sku LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	var out []models.InventoryItem
	err := q.Order("sku ASC").Limit(limit).Offset((page - 1) * limit).Find(&out).Error
	return out, total, err
}

func (r *InventoryRepository) All() ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	return out, r.db.Order("sku ASC").Find(&out).Error
}

func (r *InventoryRepository) Count() (int64, error) {
	var count int64
	return count, r.db.Model(&models.InventoryItem{}).Count(&count).Error
}

func (r *InventoryRepository) Delete(id uint) (bool, error) {
	res := r.db.Delete(&models.InventoryItem{}, id)
	return res.RowsAffected > 0, res.Error
}
