package services

import (
	"testing"

	"medstock/app/models"
	"medstock/app/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryUpsert(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInventoryService(repo.NewInventoryRepository(env.db))

	item := models.InventoryItem{SKU: "BGL-001", Name: "Bandage roll", Quantity: 40}
	require.NoError(t, svc.Upsert(&item))
	require.NotZero(t, item.ID)

	// same SKU updates in place
	update := models.InventoryItem{SKU: "BGL-001", Name: "Bandage roll XL", Quantity: 55}
	require.NoError(t, svc.Upsert(&update))
	assert.Equal(t, item.ID, update.ID)

	items, total, err := svc.List("", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Bandage roll XL", items[0].Name)
	assert.Equal(t, 55, items[0].Quantity)
}

func TestInventoryUpsertSKUCollision(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInventoryService(repo.NewInventoryRepository(env.db))

	a := models.InventoryItem{SKU: "A-1", Name: "Alpha"}
	b := models.InventoryItem{SKU: "B-2", Name: "Beta"}
	require.NoError(t, svc.Upsert(&a))
	require.NoError(t, svc.Upsert(&b))

	// renaming b onto a's SKU is a conflict, not a silent merge
	b.SKU = "A-1"
	assert.ErrorIs(t, svc.Upsert(&b), ErrDuplicateSKU)
}

func TestInventoryListFilters(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInventoryService(repo.NewInventoryRepository(env.db))
	env.seedItems(t,
		models.InventoryItem{SKU: "BGL-001", Name: "Bandage roll", Category: "wound care"},
		models.InventoryItem{SKU: "SYR-010", Name: "Syringe 10ml", Category: "disposables"},
		models.InventoryItem{SKU: "SYR-020", Name: "Syringe 20ml", Category: "disposables"},
	)

	_, total, err := svc.List("disposables", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	items, total, err := svc.List("", "Bandage", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "BGL-001", items[0].SKU)
}

func TestInventoryDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInventoryService(repo.NewInventoryRepository(env.db))
	item := models.InventoryItem{SKU: "DEL-1", Name: "Doomed"}
	require.NoError(t, svc.Upsert(&item))

	found, err := svc.Delete(item.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.Delete(item.ID)
	require.NoError(t, err)
	assert.False(t, found)
}
