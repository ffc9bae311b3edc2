package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MergeService collapses a confirmed duplicate into its master record
type MergeService interface {
	Merge(masterID, mergedID, actorID uint, reason string) (*model.MSME, error)
}

type mergeService struct {
	db    *gorm.DB
	locks recordLocks
}

func NewMergeService(db *gorm.DB) MergeService {
	return &mergeService{db: db}
}

// recordLocks serializes merges touching the same record. Each id gets its
// own mutex and both sides of a merge are locked in ascending id order, so
// overlapping merges such as Merge(a,b) and Merge(c,b) contend on the shared
// record and cannot deadlock.
type recordLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func (p *recordLocks) lock(a, b uint) func() {
	if a > b {
		a, b = b, a
	}
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[uint]*sync.Mutex)
	}
	first, ok := p.locks[a]
	if !ok {
		first = &sync.Mutex{}
		p.locks[a] = first
	}
	second, ok := p.locks[b]
	if !ok {
		second = &sync.Mutex{}
		p.locks[b] = second
	}
	p.mu.Unlock()

	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// Merge folds the duplicate record into the master under a single
// transaction:
//  1. scalar reconciliation (master wins, empty master fields adopt the
//     duplicate's values),
//  2. re-parent child rows onto the master,
//  3. write the merge audit entry with the duplicate's pre-merge snapshot,
//  4. mark the duplicate superseded,
//  5. append a "merged" audit entry against the master.
//
// Validation failures leave no state change; any persistence failure rolls
// the whole merge back.
func (s *mergeService) Merge(masterID, mergedID, actorID uint, reason string) (*model.MSME, error) {
	logger.Info("Merging MSME records", map[string]interface{}{
		"master_sme_id": masterID,
		"merged_sme_id": mergedID,
		"actor_id":      actorID,
	})

	if masterID == mergedID {
		return nil, apperrors.NewValidationError("master and merged record must be distinct", masterID)
	}

	unlock := s.locks.lock(masterID, mergedID)
	defer unlock()

	tx := s.db.Begin()
	if tx.Error != nil {
		logger.Error("Failed to begin merge transaction", tx.Error)
		return nil, apperrors.NewPersistenceError("begin", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic in Merge, transaction rolled back", fmt.Errorf("%v", r))
			panic(r)
		}
	}()

	// Load both records inside the transaction so the superseded checks see
	// any merge that committed since the caller picked this pair. The
	// duplicate is loaded with its children so the snapshot captures the full
	// pre-merge state.
	master, err := s.loadForMerge(tx, masterID, false)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	merged, err := s.loadForMerge(tx, mergedID, true)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	snapshot, err := json.Marshal(merged)
	if err != nil {
		tx.Rollback()
		return nil, apperrors.NewPersistenceError("snapshot", err)
	}

	// 1. Scalar reconciliation
	adopted := reconcileScalars(master, merged)
	if err := tx.Save(master).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to save reconciled master", err, map[string]interface{}{
			"master_sme_id": masterID,
		})
		return nil, apperrors.NewPersistenceError("reconcile", err)
	}

	// 2. Re-parent children. Rows are moved as-is; deduplication is a human
	// decision, not a merge side effect.
	childTables := []interface{}{
		&model.Owner{}, &model.Document{},
		&model.ProgramParticipation{}, &model.FinanceReferral{},
	}
	for _, child := range childTables {
		err := tx.Model(child).Where("sme_id = ?", mergedID).
			Update("sme_id", masterID).Error
		if err != nil {
			tx.Rollback()
			logger.Error("Failed to re-parent child rows", err, map[string]interface{}{
				"merged_sme_id": mergedID,
			})
			return nil, apperrors.NewPersistenceError("reparent", err)
		}
	}

	// 3. Merge audit entry with the pre-merge snapshot
	now := time.Now()
	mergeEntry := model.MergeAuditEntry{
		MasterSMEID:   masterID,
		MergedSMEID:   mergedID,
		MergedSMEData: datatypes.JSON(snapshot),
		MergeReason:   reason,
		MergedBy:      actorID,
		MergedAt:      now,
	}
	if err := tx.Create(&mergeEntry).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to write merge audit entry", err, map[string]interface{}{
			"master_sme_id": masterID,
			"merged_sme_id": mergedID,
		})
		return nil, apperrors.NewPersistenceError("merge audit", err)
	}

	// 4. Supersede the duplicate. The row stays queryable forever; only its
	// status and back-reference change. The status guard makes the update a
	// no-op if another writer superseded the record first, so a record can
	// never be merged away twice.
	res := tx.Model(&model.MSME{}).
		Where("id = ? AND status <> ?", mergedID, model.StatusSuperseded).
		Updates(map[string]interface{}{
			"status":             model.StatusSuperseded,
			"merged_into_sme_id": masterID,
		})
	if res.Error != nil {
		tx.Rollback()
		logger.Error("Failed to supersede merged record", res.Error, map[string]interface{}{
			"merged_sme_id": mergedID,
		})
		return nil, apperrors.NewPersistenceError("supersede", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		var current model.MSME
		into := uint(0)
		if s.db.First(&current, mergedID).Error == nil && current.MergedIntoSMEID != nil {
			into = *current.MergedIntoSMEID
		}
		logger.Warn("Merge lost to a concurrent merge", map[string]interface{}{
			"merged_sme_id":  mergedID,
			"merged_into_id": into,
		})
		return nil, apperrors.NewAlreadyMergedError(mergedID, into)
	}

	// 5. One "merged" entry against the master
	auditEntry := model.AuditLogEntry{
		SMEID:     masterID,
		Action:    model.AuditMerged,
		Field:     "merged_sme_id",
		NewValue:  fmt.Sprintf("%d", mergedID),
		ActorID:   actorID,
		Timestamp: now,
	}
	if err := tx.Create(&auditEntry).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to append merge audit log entry", err, map[string]interface{}{
			"master_sme_id": masterID,
		})
		return nil, apperrors.NewPersistenceError("audit", err)
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to commit merge transaction", err)
		return nil, apperrors.NewPersistenceError("commit", err)
	}

	logger.Info("MSME records merged", map[string]interface{}{
		"master_sme_id":  masterID,
		"merged_sme_id":  mergedID,
		"adopted_fields": adopted,
	})
	return master, nil
}

func (s *mergeService) loadForMerge(tx *gorm.DB, id uint, withChildren bool) (*model.MSME, error) {
	query := tx
	if withChildren {
		query = query.Preload("Owners").Preload("Documents").
			Preload("ProgramParticipations").Preload("FinanceReferrals")
	}

	var sme model.MSME
	if err := query.First(&sme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("sme", id)
		}
		return nil, apperrors.NewPersistenceError("load", err)
	}

	if sme.Status == model.StatusSuperseded {
		var into uint
		if sme.MergedIntoSMEID != nil {
			into = *sme.MergedIntoSMEID
		}
		return nil, apperrors.NewAlreadyMergedError(id, into)
	}
	return &sme, nil
}

// reconcileScalars fills the master's empty scalar fields from the duplicate,
// one field at a time. A populated master field always wins; whole-record
// overwrites never happen. Returns the names of the adopted fields.
func reconcileScalars(master, dup *model.MSME) []string {
	adopted := make([]string, 0, 8)

	adoptString := func(name string, dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			adopted = append(adopted, name)
		}
	}

	adoptString("trading_name", &master.TradingName, dup.TradingName)
	adoptString("ownership_type", &master.OwnershipType, dup.OwnershipType)
	adoptString("sector", &master.Sector, dup.Sector)
	adoptString("sub_sector", &master.SubSector, dup.SubSector)
	adoptString("business_size", &master.BusinessSize, dup.BusinessSize)
	adoptString("primary_phone", &master.PrimaryPhone, dup.PrimaryPhone)
	adoptString("secondary_phone", &master.SecondaryPhone, dup.SecondaryPhone)
	adoptString("email", &master.Email, dup.Email)
	adoptString("province_id", &master.ProvinceID, dup.ProvinceID)
	adoptString("district_id", &master.DistrictID, dup.DistrictID)
	adoptString("llg", &master.LLG, dup.LLG)
	adoptString("ward", &master.Ward, dup.Ward)
	adoptString("village", &master.Village, dup.Village)
	adoptString("bank_name", &master.BankName, dup.BankName)
	adoptString("account_type", &master.AccountType, dup.AccountType)
	adoptString("mobile_money_provider", &master.MobileMoneyProvider, dup.MobileMoneyProvider)
	adoptString("green_category", &master.GreenCategory, dup.GreenCategory)
	adoptString("energy_source", &master.EnergySource, dup.EnergySource)

	if len(master.ProductsServices) == 0 && len(dup.ProductsServices) > 0 {
		master.ProductsServices = dup.ProductsServices
		adopted = append(adopted, "products_services")
	}
	if master.EmployeeCount == 0 && dup.EmployeeCount != 0 {
		master.EmployeeCount = dup.EmployeeCount
		adopted = append(adopted, "employee_count")
	}
	if master.AnnualRevenue == 0 && dup.AnnualRevenue != 0 {
		master.AnnualRevenue = dup.AnnualRevenue
		adopted = append(adopted, "annual_revenue")
	}
	if master.GreenScore == 0 && dup.GreenScore != 0 {
		master.GreenScore = dup.GreenScore
		adopted = append(adopted, "green_score")
	}

	return adopted
}
