package services

import (
	"errors"

	"medstock/app/models"
	"medstock/app/repo"
)

var ErrDuplicateSKU = errors.New("sku already exists")

type InventoryService struct {
	inventory *repo.InventoryRepository
}

func NewInventoryService(inventory *repo.InventoryRepository) *InventoryService {
	return &InventoryService{inventory: inventory}
}

func (s *InventoryService) List(category, search string, page, limit int) ([]models.InventoryItem, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.inventory.List(category, search, page, limit)
}

func (s *InventoryService) Upsert(item *models.InventoryItem) error {
	existing, err := s.inventory.FindBySKU(item.SKU)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.inventory.Create(item)
	}
	if item.ID != 0 && item.ID != existing.ID {
		return ErrDuplicateSKU
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	return s.inventory.Save(item)
}

func (s *InventoryService) Delete(id uint) (bool, error) {
	return s.inventory.Delete(id)
}
