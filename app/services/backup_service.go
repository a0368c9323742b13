package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medstock/app/dto"
	"medstock/app/errs"
	"medstock/app/models"
	"medstock/app/repo"
	"medstock/app/storage"
	"medstock/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const archiveVersion = 1

// archiveBody is the serialized dataset; the checksum in archiveMeta is
// computed over its canonical JSON encoding.
type archiveBody struct {
	Items     []models.InventoryItem    `json:"items"`
	AuditLogs []models.SecurityAuditLog `json:"audit_logs,omitempty"`
	Users     []models.User             `json:"users,omitempty"`
	Settings  []models.Setting          `json:"settings,omitempty"`
}

type archiveMeta struct {
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	RecordCount int       `json:"record_count"`
	Checksum    string    `json:"checksum"`
}

type archive struct {
	Meta archiveMeta `json:"meta"`
	Body archiveBody `json:"body"`
}

type BackupService struct {
	cfg       config.Backup
	backups   *repo.BackupRepository
	inventory *repo.InventoryRepository
	audits    *repo.AuditRepository
	users     *repo.UserRepository
	settings  *repo.SettingRepository
	store     storage.ArtifactStore
	logger    zerolog.Logger
}

func NewBackupService(
	cfg config.Backup,
	backups *repo.BackupRepository,
	inventory *repo.InventoryRepository,
	audits *repo.AuditRepository,
	users *repo.UserRepository,
	settings *repo.SettingRepository,
	store storage.ArtifactStore,
	logger zerolog.Logger,
) *BackupService {
	return &BackupService{
		cfg:       cfg,
		backups:   backups,
		inventory: inventory,
		audits:    audits,
		users:     users,
		settings:  settings,
		store:     store,
		logger:    logger,
	}
}

// Create serializes the selected dataset into an artifact and records
// the outcome on the Backup row. Failures end up in the row's status
// and error message rather than only in logs.
func (s *BackupService) Create(ctx context.Context, req dto.CreateBackupRequest, actorID uint) (*models.Backup, error) {
	btype := models.BackupType(req.Type)
	switch btype {
	case models.BackupManual, models.BackupAutomatic, models.BackupPreRestore:
	case "":
		btype = models.BackupManual
	default:
		return nil, errs.Recoverable(errs.CodeInvalidMode, fmt.Sprintf("unknown backup type %q", req.Type))
	}

	now := time.Now()
	b := &models.Backup{
		ID:               uuid.NewString(),
		Filename:         fmt.Sprintf("medstock-%s-%s.json", now.Format("20060102-150405"), btype),
		Type:             btype,
		Format:           "json",
		Status:           models.BackupInProgress,
		Encrypted:        req.Password != "",
		RangeFrom:        req.RangeFrom,
		RangeTo:          req.RangeTo,
		IncludeAuditLogs: req.IncludeAuditLogs,
		IncludeUsers:     req.IncludeUsers,
		IncludeSettings:  req.IncludeSettings,
		CreatedBy:        actorID,
		StartedAt:        now,
	}
	if err := s.backups.Create(b); err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}

	if err := s.writeArtifact(ctx, b, req.Password); err != nil {
		b.Status = models.BackupFailed
		b.ErrorMessage = err.Error()
		done := time.Now()
		b.CompletedAt = &done
		if saveErr := s.backups.Save(b); saveErr != nil {
			s.logger.Error().Err(saveErr).Str("backup", b.ID).Msg("record backup failure")
		}
		s.logger.Error().Err(err).Str("backup", b.ID).Msg("backup failed")
		return b, err
	}

	done := time.Now()
	b.Status = models.BackupCompleted
	b.CompletedAt = &done
	if err := s.backups.Save(b); err != nil {
		return nil, fmt.Errorf("finalize backup: %w", err)
	}
	s.logger.Info().Str("backup", b.ID).Int("records", b.RecordCount).Int64("size", b.FileSize).Msg("backup completed")
	return b, nil
}

func (s *BackupService) writeArtifact(ctx context.Context, b *models.Backup, password string) error {
	body, err := s.collect(b)
	if err != nil {
		return err
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	checksum := checksumHex(bodyJSON)
	arc := archive{
		Meta: archiveMeta{
			Version:     archiveVersion,
			CreatedAt:   b.StartedAt,
			RecordCount: len(body.Items),
			Checksum:    checksum,
		},
		Body: body,
	}
	data, err := json.Marshal(arc)
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if password != "" {
		data, err = storage.Encrypt(data, password, s.cfg.EncryptionSalt)
		if err != nil {
			return fmt.Errorf("encrypt archive: %w", err)
		}
	}
	path, err := s.store.Put(ctx, b.Filename, data)
	if err != nil {
		return errs.Fatal(errs.CodeStorageFailure, "store artifact", err)
	}
	b.StoragePath = path
	b.FileSize = int64(len(data))
	b.RecordCount = len(body.Items)
	b.Checksum = checksum
	return nil
}

func (s *BackupService) collect(b *models.Backup) (archiveBody, error) {
	var body archiveBody
	items, err := s.inventory.All()
	if err != nil {
		return body, fmt.Errorf("collect inventory: %w", err)
	}
	body.Items = items
	if b.IncludeAuditLogs {
		logs, err := s.audits.ListSince(b.RangeFrom, b.RangeTo)
		if err != nil {
			return body, fmt.Errorf("collect audit logs: %w", err)
		}
		body.AuditLogs = logs
	}
	if b.IncludeUsers {
		users, err := s.users.List()
		if err != nil {
			return body, fmt.Errorf("collect users: %w", err)
		}
		// password hashes travel; 2FA secrets do not
		for i := range users {
			users[i].TwoFactorSecret = ""
			users[i].TwoFactorPending = ""
		}
		body.Users = users
	}
	if b.IncludeSettings {
		settings, err := s.settings.All()
		if err != nil {
			return body, fmt.Errorf("collect settings: %w", err)
		}
		body.Settings = settings
	}
	return body, nil
}

func (s *BackupService) List(f repo.BackupFilter, page, limit int) (*dto.BackupListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	rows, total, err := s.backups.List(f, page, limit)
	if err != nil {
		return nil, err
	}
	out := &dto.BackupListResponse{Total: total, Page: page, Limit: limit}
	for _, b := range rows {
		out.Backups = append(out.Backups, ToBackupResponse(&b))
	}
	return out, nil
}

func (s *BackupService) Get(id string) (*models.Backup, error) {
	b, err := s.backups.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Recoverable(errs.CodeNotFound, "backup not found")
	}
	return b, err
}

// Validate re-reads the artifact and verifies structural integrity. It
// never touches inventory data and is idempotent: the same unmodified
// backup always yields the same verdict.
func (s *BackupService) Validate(ctx context.Context, id, password string) (*dto.ValidationResult, error) {
	b, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	res := &dto.ValidationResult{Valid: true}
	check := func(name string, err error) {
		if err != nil {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
			return
		}
		res.Checks = append(res.Checks, name)
	}

	arc, readErr := s.loadArchive(ctx, b, password)
	check("artifact readable", readErr)
	if readErr != nil {
		return res, nil
	}
	var checksumErr error
	bodyJSON, err := json.Marshal(arc.Body)
	if err != nil {
		checksumErr = err
	} else if checksumHex(bodyJSON) != arc.Meta.Checksum {
		checksumErr = errors.New("checksum mismatch")
	}
	check("checksum", checksumErr)

	var countErr error
	if arc.Meta.RecordCount != len(arc.Body.Items) {
		countErr = fmt.Errorf("meta says %d items, body has %d", arc.Meta.RecordCount, len(arc.Body.Items))
	} else if b.Status == models.BackupCompleted && b.RecordCount != len(arc.Body.Items) {
		countErr = fmt.Errorf("backup row says %d items, artifact has %d", b.RecordCount, len(arc.Body.Items))
	}
	check("record count", countErr)

	var versionErr error
	if arc.Meta.Version != archiveVersion {
		versionErr = fmt.Errorf("unsupported archive version %d", arc.Meta.Version)
	}
	check("archive version", versionErr)

	if res.Valid {
		now := time.Now()
		b.Validated = true
		b.ValidatedAt = &now
		if err := s.backups.Save(b); err != nil {
			return nil, fmt.Errorf("record validation: %w", err)
		}
	}
	return res, nil
}

// loadArchive fetches, decrypts, and parses an artifact. Bad passwords
// come back recoverable; corrupted payloads do not.
func (s *BackupService) loadArchive(ctx context.Context, b *models.Backup, password string) (*archive, error) {
	if b.Encrypted && password == "" {
		return nil, errs.Recoverable(errs.CodePasswordNeeded, "backup is encrypted")
	}
	data, err := s.store.Get(ctx, b.StoragePath)
	if errors.Is(err, storage.ErrArtifactNotFound) {
		return nil, errs.Fatal(errs.CodeCorruptArchive, "artifact missing from storage", err)
	}
	if err != nil {
		return nil, errs.Fatal(errs.CodeStorageFailure, "read artifact", err)
	}
	if b.Encrypted {
		data, err = storage.Decrypt(data, password, s.cfg.EncryptionSalt)
		if errors.Is(err, storage.ErrDecrypt) {
			return nil, errs.Recoverable(errs.CodeBadPassword, "wrong decryption password")
		}
		if err != nil {
			return nil, errs.Fatal(errs.CodeStorageFailure, "decrypt artifact", err)
		}
	}
	var arc archive
	if err := json.Unmarshal(data, &arc); err != nil {
		return nil, errs.Fatal(errs.CodeCorruptArchive, "artifact is not a valid archive", err)
	}
	return &arc, nil
}

// Delete removes the row and its artifact. Irreversible.
func (s *BackupService) Delete(ctx context.Context, id string, actorID uint) error {
	b, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, b.StoragePath); err != nil && !errors.Is(err, storage.ErrArtifactNotFound) {
		return errs.Fatal(errs.CodeStorageFailure, "remove artifact", err)
	}
	if err := s.backups.Delete(id); err != nil {
		return fmt.Errorf("delete backup row: %w", err)
	}
	s.logger.Info().Str("backup", id).Uint("actor", actorID).Msg("backup deleted")
	return nil
}

// MarkTampered flags the backup owning a storage path as CORRUPTED and
// clears its validation. Wired to the artifact directory watcher.
func (s *BackupService) MarkTampered(path string) {
	b, err := s.backups.FindByStoragePath(path)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Str("path", path).Msg("lookup tampered artifact")
		}
		return
	}
	b.Status = models.BackupCorrupted
	b.Validated = false
	b.ValidatedAt = nil
	if err := s.backups.Save(b); err != nil {
		s.logger.Error().Err(err).Str("backup", b.ID).Msg("flag corrupted backup")
		return
	}
	s.logger.Warn().Str("backup", b.ID).Msg("backup flagged corrupted after on-disk change")
}

func ToBackupResponse(b *models.Backup) dto.BackupResponse {
	return dto.BackupResponse{
		ID:          b.ID,
		Filename:    b.Filename,
		Type:        string(b.Type),
		Format:      b.Format,
		FileSize:    b.FileSize,
		RecordCount: b.RecordCount,
		Status:      string(b.Status),
		Encrypted:   b.Encrypted,
		Validated:   b.Validated,
		ValidatedAt: b.ValidatedAt,
		CreatedAt:   b.CreatedAt,
		Error:       b.ErrorMessage,
	}
}

func checksumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
