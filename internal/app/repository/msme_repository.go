package repository

import (
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"gorm.io/gorm"
)

type MSMEFilter struct {
	ProvinceID      string
	DistrictID      string
	Status          string
	Sector          string
	Search          string // matched against business and trading names
	IncludeChildren bool
	Page            int
	PageSize        int
}

type MSMERepository interface {
	Create(sme *model.MSME) error
	BulkCreate(smes []model.MSME, batchSize int) error
	Update(sme *model.MSME) error
	FindAll(filter MSMEFilter) ([]model.MSME, int64, error)
	FindByID(id uint, includeChildren bool) (*model.MSME, error)
	FindByIDs(ids []uint) ([]model.MSME, error)
	ListForDetection() ([]model.MSME, error)
	NextSequence() (uint, error)
	AddOwner(owner *model.Owner) error
	OwnersBySME(smeID uint) ([]model.Owner, error)
	AddDocument(doc *model.Document) error
	AddProgramParticipation(p *model.ProgramParticipation) error
	AddFinanceReferral(ref *model.FinanceReferral) error
}

type msmeRepository struct {
	db *gorm.DB
}

func NewMSMERepository(db *gorm.DB) MSMERepository {
	return &msmeRepository{db: db}
}

func (r *msmeRepository) Create(sme *model.MSME) error {
	logger.Debug("Creating MSME record", map[string]interface{}{
		"registration_number": sme.RegistrationNumber,
		"business_name":       sme.BusinessName,
		"province_id":         sme.ProvinceID,
	})

	if err := r.db.Create(sme).Error; err != nil {
		logger.Error("Failed to create MSME record", err, map[string]interface{}{
			"registration_number": sme.RegistrationNumber,
			"business_name":       sme.BusinessName,
		})
		return err
	}

	logger.Debug("MSME record created", map[string]interface{}{
		"sme_id":              sme.ID,
		"registration_number": sme.RegistrationNumber,
	})
	return nil
}

// BulkCreate inserts survey imports in batches
func (r *msmeRepository) BulkCreate(smes []model.MSME, batchSize int) error {
	logger.Info("Bulk creating MSME records", map[string]interface{}{
		"count":      len(smes),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(smes, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create MSME records", err, nil)
		return err
	}
	return nil
}

func (r *msmeRepository) Update(sme *model.MSME) error {
	logger.Debug("Updating MSME record", map[string]interface{}{
		"sme_id": sme.ID,
	})

	if err := r.db.Save(sme).Error; err != nil {
		logger.Error("Failed to update MSME record", err, map[string]interface{}{
			"sme_id": sme.ID,
		})
		return err
	}
	return nil
}

func (r *msmeRepository) FindAll(filter MSMEFilter) ([]model.MSME, int64, error) {
	logger.Debug("Finding MSME records", map[string]interface{}{
		"province_id": filter.ProvinceID,
		"status":      filter.Status,
		"search":      filter.Search,
	})

	query := r.db.Model(&model.MSME{})

	if filter.ProvinceID != "" {
		query = query.Where("province_id = ?", filter.ProvinceID)
	}
	if filter.DistrictID != "" {
		query = query.Where("district_id = ?", filter.DistrictID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("business_name LIKE ? OR trading_name LIKE ? OR registration_number LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count MSME records", err, nil)
		return nil, 0, err
	}

	if filter.IncludeChildren {
		query = query.Preload("Owners").Preload("Documents").
			Preload("ProgramParticipations").Preload("FinanceReferrals")
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var smes []model.MSME
	if err := query.Order("id ASC").Find(&smes).Error; err != nil {
		logger.Error("Failed to find MSME records", err, nil)
		return nil, 0, err
	}
	return smes, total, nil
}

func (r *msmeRepository) FindByID(id uint, includeChildren bool) (*model.MSME, error) {
	query := r.db
	if includeChildren {
		query = query.Preload("Owners").Preload("Documents").
			Preload("ProgramParticipations").Preload("FinanceReferrals")
	}

	var sme model.MSME
	if err := query.First(&sme, id).Error; err != nil {
		return nil, err
	}
	return &sme, nil
}

func (r *msmeRepository) FindByIDs(ids []uint) ([]model.MSME, error) {
	var smes []model.MSME
	if err := r.db.Where("id IN ?", ids).Find(&smes).Error; err != nil {
		return nil, err
	}
	return smes, nil
}

// ListForDetection returns every live record in insertion order. Superseded
// records have already been merged away and never re-enter detection.
func (r *msmeRepository) ListForDetection() ([]model.MSME, error) {
	var smes []model.MSME
	err := r.db.Where("status <> ?", model.StatusSuperseded).
		Order("id ASC").Find(&smes).Error
	if err != nil {
		logger.Error("Failed to list records for detection", err, nil)
		return nil, err
	}
	return smes, nil
}

// NextSequence returns the next registry sequence number for registration
// number generation
func (r *msmeRepository) NextSequence() (uint, error) {
	var maxID *uint
	if err := r.db.Model(&model.MSME{}).Unscoped().Select("MAX(id)").Scan(&maxID).Error; err != nil {
		return 0, err
	}
	if maxID == nil {
		return 1, nil
	}
	return *maxID + 1, nil
}

func (r *msmeRepository) AddOwner(owner *model.Owner) error {
	if err := r.db.Create(owner).Error; err != nil {
		logger.Error("Failed to add owner", err, map[string]interface{}{
			"sme_id": owner.SMEID,
		})
		return err
	}
	return nil
}

func (r *msmeRepository) OwnersBySME(smeID uint) ([]model.Owner, error) {
	var owners []model.Owner
	if err := r.db.Where("sme_id = ?", smeID).Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *msmeRepository) AddDocument(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		logger.Error("Failed to add document", err, map[string]interface{}{
			"sme_id": doc.SMEID,
		})
		return err
	}
	return nil
}

func (r *msmeRepository) AddProgramParticipation(p *model.ProgramParticipation) error {
	if err := r.db.Create(p).Error; err != nil {
		logger.Error("Failed to add program participation", err, map[string]interface{}{
			"sme_id": p.SMEID,
		})
		return err
	}
	return nil
}

func (r *msmeRepository) AddFinanceReferral(ref *model.FinanceReferral) error {
	if err := r.db.Create(ref).Error; err != nil {
		logger.Error("Failed to add finance referral", err, map[string]interface{}{
			"sme_id": ref.SMEID,
		})
		return err
	}
	return nil
}
