package services

import (
	"context"
	"testing"
	"time"

	"medstock/app/dto"
	"medstock/app/errs"
	"medstock/app/models"
	"medstock/app/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "correct horse"

func TestFullRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t,
		models.InventoryItem{SKU: "BGL-001", Name: "Bandage roll", Category: "wound care", Quantity: 40, Unit: "box"},
		models.InventoryItem{SKU: "SYR-010", Name: "Syringe 10ml", Category: "disposables", Quantity: 200, Unit: "pc"},
	)
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	// drift the dataset after the snapshot
	drift := models.InventoryItem{SKU: "NEW-999", Name: "Added later", Quantity: 1}
	require.NoError(t, env.inventory.Create(&drift))

	summary, err := env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreFull, AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsAdded)
	assert.Equal(t, 0, summary.ItemsUpdated)
	assert.Equal(t, 0, summary.ItemsSkipped)

	items := env.liveItems(t)
	require.Len(t, items, 2)
	skus := []string{items[0].SKU, items[1].SKU}
	assert.ElementsMatch(t, []string{"BGL-001", "SYR-010"}, skus)
}

func TestFullRestoreTakesPreRestoreSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "GLV-100", Name: "Nitrile gloves", Quantity: 500})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	_, err = env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreFull, AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)

	snapshots, err := env.backups.List(repo.BackupFilter{Type: models.BackupPreRestore}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshots.Total)
}

func TestMergeRestoreCounts(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t,
		models.InventoryItem{SKU: "KEEP-01", Name: "Unchanged", Quantity: 10},
		models.InventoryItem{SKU: "UPD-01", Name: "Old name", Quantity: 5},
	)
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	// mutate one live row and remove the other pattern: the backup also
	// carries a row the live set lacks after this delete
	updated, err := env.inventory.FindBySKU("UPD-01")
	require.NoError(t, err)
	updated.Name = "New name"
	updated.Quantity = 7
	require.NoError(t, env.inventory.Save(updated))

	keep, err := env.inventory.FindBySKU("KEEP-01")
	require.NoError(t, err)
	_, err = env.inventory.Delete(keep.ID)
	require.NoError(t, err)

	summary, err := env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreMerge, AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemsAdded)   // KEEP-01 re-created
	assert.Equal(t, 1, summary.ItemsUpdated) // UPD-01 reverted to the backup
	assert.Equal(t, 0, summary.ItemsSkipped)

	reverted, err := env.inventory.FindBySKU("UPD-01")
	require.NoError(t, err)
	assert.Equal(t, "Old name", reverted.Name)
	assert.Equal(t, 5, reverted.Quantity)
}

func TestMergeKeepsLiveRowIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "UPD-01", Name: "Old name", Quantity: 5})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	live, err := env.inventory.FindBySKU("UPD-01")
	require.NoError(t, err)
	origID := live.ID
	live.Quantity = 9
	require.NoError(t, env.inventory.Save(live))

	_, err = env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreMerge, AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)

	after, err := env.inventory.FindBySKU("UPD-01")
	require.NoError(t, err)
	assert.Equal(t, origID, after.ID)
	assert.Equal(t, 5, after.Quantity)
}

func TestPreviewWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t,
		models.InventoryItem{SKU: "A-1", Name: "Alpha", Quantity: 1},
		models.InventoryItem{SKU: "B-2", Name: "Beta", Quantity: 2},
	)
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	live, err := env.inventory.FindBySKU("B-2")
	require.NoError(t, err)
	live.Quantity = 99
	require.NoError(t, env.inventory.Save(live))

	summary, err := env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestorePreview, AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ItemsAdded)
	assert.Equal(t, 1, summary.ItemsUpdated)
	assert.Equal(t, 0, summary.ItemsSkipped)

	// the drifted row is untouched
	after, err := env.inventory.FindBySKU("B-2")
	require.NoError(t, err)
	assert.Equal(t, 99, after.Quantity)

	// no pre-restore snapshot either
	snapshots, err := env.backups.List(repo.BackupFilter{Type: models.BackupPreRestore}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshots.Total)
}

func TestPreviewIdenticalDatasetReportsZero(t *testing.T) {
	env := newTestEnv(t)
	items := make([]models.InventoryItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, models.InventoryItem{
			SKU:      string(rune('A'+i)) + "-SKU",
			Name:     "Item",
			Quantity: i,
		})
	}
	env.seedItems(t, items...)
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	summary, err := env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestorePreview, AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ItemsAdded)
	assert.Equal(t, 0, summary.ItemsUpdated)
	assert.Equal(t, 0, summary.ItemsSkipped)
}

func TestRestoreVerifiesAdminPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "X-1", Name: "X", Quantity: 1})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	for _, mode := range []RestoreMode{RestoreFull, RestoreMerge, RestorePreview} {
		_, err := env.backups.Restore(context.Background(), b.ID,
			RestoreOptions{Mode: mode, AdminPassword: "wrong"}, env.admin)
		var be *errs.BackupError
		require.ErrorAs(t, err, &be, "mode %s", mode)
		assert.Equal(t, errs.CodeBadPassword, be.Code)
		assert.True(t, be.Recoverable)
	}
}

func TestRestoreRejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.backups.Restore(context.Background(), "whatever",
		RestoreOptions{Mode: "sideways", AdminPassword: adminPassword}, env.admin)
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodeInvalidMode, be.Code)
}

func TestRestoreRejectsIncompleteBackup(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "X-1", Name: "X", Quantity: 1})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	b.Status = models.BackupFailed
	require.NoError(t, env.db.Save(b).Error)

	_, err = env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreMerge, AdminPassword: adminPassword}, env.admin)
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodeNotCompleted, be.Code)
	assert.True(t, be.Recoverable)
}

func TestDedupeBySKULastWins(t *testing.T) {
	items := []models.InventoryItem{
		{SKU: "DUP-1", Name: "first", Quantity: 1},
		{SKU: "OTH-1", Name: "other", Quantity: 2},
		{SKU: "DUP-1", Name: "second", Quantity: 3},
	}
	out := dedupeBySKU(items)
	require.Len(t, out, 2)
	assert.Equal(t, "second", out[0].Name)
	assert.Equal(t, 3, out[0].Quantity)
	assert.Equal(t, "OTH-1", out[1].SKU)
}

func TestItemDiffers(t *testing.T) {
	now := time.Now()
	later := now.Add(24 * time.Hour)
	base := models.InventoryItem{SKU: "S", Name: "N", Category: "C", Quantity: 1, Unit: "U", Location: "L"}

	same := base
	same.ID = 42 // ids never matter
	assert.False(t, itemDiffers(&base, &same))

	changed := base
	changed.Quantity = 2
	assert.True(t, itemDiffers(&base, &changed))

	withExpiry := base
	withExpiry.ExpiryDate = &now
	assert.True(t, itemDiffers(&base, &withExpiry))

	otherExpiry := withExpiry
	otherExpiry.ExpiryDate = &later
	assert.True(t, itemDiffers(&withExpiry, &otherExpiry))

	sameExpiry := withExpiry
	assert.False(t, itemDiffers(&withExpiry, &sameExpiry))
}

func TestRestoreEncryptedBackup(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "ENC-1", Name: "Sealed", Quantity: 4})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{Password: "s3cret"}, env.admin.ID)
	require.NoError(t, err)

	_, err = env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreMerge, AdminPassword: adminPassword}, env.admin)
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodePasswordNeeded, be.Code)

	summary, err := env.backups.Restore(context.Background(), b.ID,
		RestoreOptions{Mode: RestoreMerge, Password: "s3cret", AdminPassword: adminPassword}, env.admin)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ItemsAdded)
}
