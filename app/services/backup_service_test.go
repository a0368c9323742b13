package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"medstock/app/db"
	"medstock/app/dto"
	"medstock/app/errs"
	"medstock/app/models"
	"medstock/app/repo"
	"medstock/app/storage"
	"medstock/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	backups   *BackupService
	users     *UserService
	inventory *repo.InventoryRepository
	store     *storage.LocalStore
	admin     *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.ConnectSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.User{}, &models.BackupCode{}, &models.Session{},
		&models.PasswordResetToken{}, &models.SecurityAuditLog{},
		&models.InventoryItem{}, &models.Backup{}, &models.Notification{},
		&models.HelpArticle{}, &models.Setting{},
	))

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.Backup{
		Driver:          "local",
		ScheduleEvery:   24 * time.Hour,
		StorageCapacity: 1 << 30,
		EncryptionSalt:  "test-salt",
	}
	invRepo := repo.NewInventoryRepository(gdb)
	users := NewUserService(repo.NewUserRepository(gdb), repo.NewResetTokenRepository(gdb))
	backups := NewBackupService(
		cfg,
		repo.NewBackupRepository(gdb),
		invRepo,
		repo.NewAuditRepository(gdb),
		repo.NewUserRepository(gdb),
		repo.NewSettingRepository(gdb),
		store,
		zerolog.Nop(),
	)

	admin, err := users.Register("admin@test.local", "Admin", "correct horse", models.RoleAdmin)
	require.NoError(t, err)

	return &testEnv{db: gdb, backups: backups, users: users, inventory: invRepo, store: store, admin: admin}
}

func (e *testEnv) seedItems(t *testing.T, items ...models.InventoryItem) {
	t.Helper()
	for i := range items {
		require.NoError(t, e.inventory.Create(&items[i]))
	}
}

func (e *testEnv) liveItems(t *testing.T) []models.InventoryItem {
	t.Helper()
	items, err := e.inventory.All()
	require.NoError(t, err)
	return items
}

func TestCreateBackupCompletes(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t,
		models.InventoryItem{SKU: "BGL-001", Name: "Bandage roll", Category: "wound care", Quantity: 40, Unit: "box"},
		models.InventoryItem{SKU: "SYR-010", Name: "Syringe 10ml", Category: "disposables", Quantity: 200, Unit: "pc"},
	)

	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{Type: "MANUAL"}, env.admin.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BackupCompleted, b.Status)
	assert.Equal(t, 2, b.RecordCount)
	assert.NotEmpty(t, b.Checksum)
	assert.NotEmpty(t, b.StoragePath)
	assert.Greater(t, b.FileSize, int64(0))
	require.NotNil(t, b.CompletedAt)
}

func TestCreateBackupRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{Type: "WEEKLY"}, env.admin.ID)
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodeInvalidMode, be.Code)
	assert.True(t, be.Recoverable)
}

func TestGetMissingBackup(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.backups.Get(uuid.NewString())
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodeNotFound, be.Code)
	assert.True(t, be.Recoverable)
}

func TestValidateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "GLV-100", Name: "Nitrile gloves", Quantity: 500, Unit: "pair"})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	first, err := env.backups.Validate(context.Background(), b.ID, "")
	require.NoError(t, err)
	assert.True(t, first.Valid)
	assert.Empty(t, first.Errors)
	assert.Contains(t, first.Checks, "checksum")

	second, err := env.backups.Validate(context.Background(), b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, first.Valid, second.Valid)
	assert.Equal(t, first.Checks, second.Checks)

	stored, err := env.backups.Get(b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Validated)
	require.NotNil(t, stored.ValidatedAt)
}

func TestValidateDetectsTampering(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "MSK-001", Name: "Surgical mask", Quantity: 1000})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	// overwrite the artifact with a structurally valid archive whose
	// checksum no longer matches
	tampered := []byte(`{"meta":{"version":1,"created_at":"2026-01-01T00:00:00Z","record_count":0,"checksum":"deadbeef"},"body":{"items":[]}}`)
	_, err = env.store.Put(context.Background(), b.Filename, tampered)
	require.NoError(t, err)

	res, err := env.backups.Validate(context.Background(), b.ID, "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)

	stored, err := env.backups.Get(b.ID)
	require.NoError(t, err)
	assert.False(t, stored.Validated)
}

func TestEncryptedBackupNeedsPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "THM-001", Name: "Thermometer", Quantity: 25})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{Password: "s3cret"}, env.admin.ID)
	require.NoError(t, err)
	assert.True(t, b.Encrypted)

	_, err = env.backups.Validate(context.Background(), b.ID, "")
	require.NoError(t, err) // validation reports, it does not fail

	res, err := env.backups.Validate(context.Background(), b.ID, "wrong")
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = env.backups.Validate(context.Background(), b.ID, "s3cret")
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestDeleteBackupRemovesArtifact(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "IVF-500", Name: "IV fluid 500ml", Quantity: 60})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)

	require.NoError(t, env.backups.Delete(context.Background(), b.ID, env.admin.ID))

	_, err = env.backups.Get(b.ID)
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodeNotFound, be.Code)

	_, err = env.store.Get(context.Background(), b.StoragePath)
	assert.True(t, errors.Is(err, storage.ErrArtifactNotFound))
}

func TestDeleteMissingBackup(t *testing.T) {
	env := newTestEnv(t)
	err := env.backups.Delete(context.Background(), uuid.NewString(), env.admin.ID)
	var be *errs.BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, errs.CodeNotFound, be.Code)
	assert.True(t, be.Recoverable)
}

func TestMarkTamperedFlagsBackup(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "OXY-001", Name: "Oxygen mask", Quantity: 30})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{}, env.admin.ID)
	require.NoError(t, err)
	_, err = env.backups.Validate(context.Background(), b.ID, "")
	require.NoError(t, err)

	env.backups.MarkTampered(b.StoragePath)

	stored, err := env.backups.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupCorrupted, stored.Status)
	assert.False(t, stored.Validated)
	assert.Nil(t, stored.ValidatedAt)
}

func TestListBackupsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.seedItems(t, models.InventoryItem{SKU: "GZE-001", Name: "Gauze pad", Quantity: 300})
	_, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{Type: "MANUAL"}, env.admin.ID)
	require.NoError(t, err)
	_, err = env.backups.Create(context.Background(), dto.CreateBackupRequest{Type: "AUTOMATIC"}, env.admin.ID)
	require.NoError(t, err)

	all, err := env.backups.List(repo.BackupFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	manual, err := env.backups.List(repo.BackupFilter{Type: "MANUAL"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), manual.Total)

	named, err := env.backups.List(repo.BackupFilter{Search: "manual"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), named.Total)
}

func TestHealthMetricsAlerts(t *testing.T) {
	env := newTestEnv(t)

	// empty history: stale-backup alert only
	m, err := env.backups.HealthMetrics()
	require.NoError(t, err)
	assert.Nil(t, m.LastBackupAt)
	assert.Contains(t, m.Alerts, "no backup in the last 48h")

	env.seedItems(t, models.InventoryItem{SKU: "ALC-001", Name: "Alcohol swab", Quantity: 800})
	b, err := env.backups.Create(context.Background(), dto.CreateBackupRequest{Type: "AUTOMATIC"}, env.admin.ID)
	require.NoError(t, err)

	m, err = env.backups.HealthMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.LastBackupAt)
	require.NotNil(t, m.NextScheduledAt)
	assert.Equal(t, 1, m.SuccessStreak)
	assert.Equal(t, int64(0), m.Failures30d)
	assert.Equal(t, b.FileSize, m.StorageUsed)
	assert.NotContains(t, m.Alerts, "no backup in the last 48h")
}
