package services

import (
	"context"
	"fmt"
	"time"

	"medstock/app/dto"
	"medstock/app/errs"
	"medstock/app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RestoreMode string

const (
	RestoreFull    RestoreMode = "full"
	RestoreMerge   RestoreMode = "merge"
	RestorePreview RestoreMode = "preview"
)

type RestoreOptions struct {
	Mode RestoreMode
	// Password decrypts an encrypted artifact. Not needed for preview.
	Password string
	// AdminPassword is the actor's account password, re-verified for every
	// mode before anything is read or written.
	AdminPassword string
}

// Restore applies a backup to the live dataset. full wipes and replaces
// inside one transaction (all or nothing); merge upserts per row with
// the backup winning conflicts and row failures counted, not fatal;
// preview runs the merge diff without writing anything.
func (s *BackupService) Restore(ctx context.Context, id string, opts RestoreOptions, actor *models.User) (*dto.RestoreSummary, error) {
	start := time.Now()

	switch opts.Mode {
	case RestoreFull, RestoreMerge, RestorePreview:
	default:
		return nil, errs.Recoverable(errs.CodeInvalidMode, fmt.Sprintf("unknown restore mode %q", opts.Mode))
	}

	// every mode, preview included, re-verifies the actor's own password
	if actor == nil || bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(opts.AdminPassword)) != nil {
		return nil, errs.Recoverable(errs.CodeBadPassword, "admin password verification failed")
	}

	b, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BackupCompleted {
		return nil, errs.Recoverable(errs.CodeNotCompleted, fmt.Sprintf("backup status is %s", b.Status))
	}

	// preview never needs the decryption password for an unencrypted
	// archive, and full/merge fail early on a missing one inside
	// loadArchive.
	password := opts.Password
	arc, err := s.loadArchive(ctx, b, password)
	if err != nil {
		return nil, err
	}

	// duplicate SKUs inside the payload: last occurrence wins before the
	// diff against live data.
	records := dedupeBySKU(arc.Body.Items)

	// full and merge mutate the dataset; snapshot it first so the
	// operation itself stays reversible.
	if opts.Mode != RestorePreview {
		if _, err := s.Create(ctx, dto.CreateBackupRequest{Type: string(models.BackupPreRestore)}, actor.ID); err != nil {
			return nil, fmt.Errorf("pre-restore snapshot: %w", err)
		}
	}

	summary := &dto.RestoreSummary{Errors: []string{}}
	switch opts.Mode {
	case RestoreFull:
		err = s.restoreFull(records, summary)
	case RestoreMerge:
		err = s.restoreMerge(records, summary)
	case RestorePreview:
		err = s.restorePreview(records, summary)
	}
	summary.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		s.logger.Error().Err(err).Str("backup", id).Str("mode", string(opts.Mode)).Msg("restore failed")
		return summary, err
	}
	s.logger.Info().
		Str("backup", id).
		Str("mode", string(opts.Mode)).
		Int("added", summary.ItemsAdded).
		Int("updated", summary.ItemsUpdated).
		Int("skipped", summary.ItemsSkipped).
		Msg("restore finished")
	return summary, nil
}

// restoreFull replaces the dataset wholesale. Any row failure rolls the
// whole transaction back.
func (s *BackupService) restoreFull(records []models.InventoryItem, summary *dto.RestoreSummary) error {
	err := s.inventory.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.InventoryItem{}).Error; err != nil {
			return fmt.Errorf("wipe inventory: %w", err)
		}
		for i := range records {
			item := records[i]
			item.ID = 0 // ids regenerate
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("insert %s: %w", item.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		return errs.Fatal(errs.CodeRestoreConflict, "full restore aborted", err)
	}
	summary.ItemsAdded = len(records)
	return nil
}

// restoreMerge upserts record by record. Conflicts resolve in favor of
// the backup; a failing row is skipped and reported, not fatal.
func (s *BackupService) restoreMerge(records []models.InventoryItem, summary *dto.RestoreSummary) error {
	for i := range records {
		rec := records[i]
		live, err := s.inventory.FindBySKU(rec.SKU)
		if err != nil {
			summary.ItemsSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", rec.SKU, err))
			continue
		}
		switch {
		case live == nil:
			rec.ID = 0
			if err := s.inventory.Create(&rec); err != nil {
				summary.ItemsSkipped++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", rec.SKU, err))
				continue
			}
			summary.ItemsAdded++
		case itemDiffers(live, &rec):
			rec.ID = live.ID
			rec.CreatedAt = live.CreatedAt
			if err := s.inventory.Save(&rec); err != nil {
				summary.ItemsSkipped++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", rec.SKU, err))
				continue
			}
			summary.ItemsUpdated++
		default:
			// identical row, nothing to count
		}
	}
	return nil
}

// restorePreview computes the merge summary without any writes. The
// persisted dataset is untouched by construction.
func (s *BackupService) restorePreview(records []models.InventoryItem, summary *dto.RestoreSummary) error {
	for i := range records {
		rec := records[i]
		live, err := s.inventory.FindBySKU(rec.SKU)
		if err != nil {
			summary.ItemsSkipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", rec.SKU, err))
			continue
		}
		switch {
		case live == nil:
			summary.ItemsAdded++
		case itemDiffers(live, &rec):
			summary.ItemsUpdated++
		}
	}
	return nil
}

func dedupeBySKU(items []models.InventoryItem) []models.InventoryItem {
	byKey := make(map[string]int, len(items))
	out := make([]models.InventoryItem, 0, len(items))
	for _, it := range items {
		if idx, seen := byKey[it.SKU]; seen {
			out[idx] = it
			continue
		}
		byKey[it.SKU] = len(out)
		out = append(out, it)
	}
	return out
}

// itemDiffers compares the fields a backup carries, ignoring ids and
// timestamps that regenerate on write.
func itemDiffers(live, rec *models.InventoryItem) bool {
	if live.Name != rec.Name || live.Category != rec.Category ||
		live.Quantity != rec.Quantity || live.Unit != rec.Unit ||
		live.Location != rec.Location {
		return true
	}
	switch {
	case live.ExpiryDate == nil && rec.ExpiryDate == nil:
		return false
	case live.ExpiryDate == nil || rec.ExpiryDate == nil:
		return true
	default:
		return !live.ExpiryDate.Equal(*rec.ExpiryDate)
	}
}
