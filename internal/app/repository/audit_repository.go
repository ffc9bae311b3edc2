package repository

import (
	"time"

	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"gorm.io/gorm"
)

// AuditRepository is deliberately append-only: entries are never updated or
// deleted once written.
type AuditRepository interface {
	Append(entry *model.AuditLogEntry) error
	ListForSME(smeID uint) ([]model.AuditLogEntry, error)
	ListMergeEntries(masterSMEID uint) ([]model.MergeAuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(entry *model.AuditLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	logger.Debug("Appending audit entry", map[string]interface{}{
		"sme_id": entry.SMEID,
		"action": entry.Action,
	})

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to append audit entry", err, map[string]interface{}{
			"sme_id": entry.SMEID,
			"action": entry.Action,
		})
		return err
	}
	return nil
}

// ListForSME returns the record's audit trail in insertion order. The
// autoincrement id breaks timestamp ties so entries written in the same
// instant keep their write order.
func (r *auditRepository) ListForSME(smeID uint) ([]model.AuditLogEntry, error) {
	var entries []model.AuditLogEntry
	err := r.db.Where("sme_id = ?", smeID).
		Order("timestamp ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		logger.Error("Failed to list audit entries", err, map[string]interface{}{
			"sme_id": smeID,
		})
		return nil, err
	}
	return entries, nil
}

func (r *auditRepository) ListMergeEntries(masterSMEID uint) ([]model.MergeAuditEntry, error) {
	var entries []model.MergeAuditEntry
	err := r.db.Where("master_sme_id = ?", masterSMEID).
		Order("merged_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		logger.Error("Failed to list merge audit entries", err, map[string]interface{}{
			"master_sme_id": masterSMEID,
		})
		return nil, err
	}
	return entries, nil
}
