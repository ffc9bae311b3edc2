package repository

import (
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"gorm.io/gorm"
)

type CandidateFilter struct {
	Status   string
	MinScore int
	SMEID    uint // candidates involving this record
}

type DuplicateRepository interface {
	Create(candidate *model.DuplicateCandidate) error
	Update(candidate *model.DuplicateCandidate) error
	FindByID(id uint) (*model.DuplicateCandidate, error)
	FindAll(filter CandidateFilter) ([]model.DuplicateCandidate, error)
	ExistingPairs() (map[[2]uint]bool, error)
	PairExists(smeID1, smeID2 uint) (bool, error)
}

type duplicateRepository struct {
	db *gorm.DB
}

func NewDuplicateRepository(db *gorm.DB) DuplicateRepository {
	return &duplicateRepository{db: db}
}

func (r *duplicateRepository) Create(candidate *model.DuplicateCandidate) error {
	logger.Debug("Creating duplicate candidate", map[string]interface{}{
		"sme_id_1": candidate.SMEID1,
		"sme_id_2": candidate.SMEID2,
		"score":    candidate.SimilarityScore,
	})

	if err := r.db.Create(candidate).Error; err != nil {
		logger.Error("Failed to create duplicate candidate", err, map[string]interface{}{
			"sme_id_1": candidate.SMEID1,
			"sme_id_2": candidate.SMEID2,
		})
		return err
	}
	return nil
}

func (r *duplicateRepository) Update(candidate *model.DuplicateCandidate) error {
	logger.Debug("Updating duplicate candidate", map[string]interface{}{
		"candidate_id": candidate.ID,
		"status":       candidate.Status,
	})

	if err := r.db.Save(candidate).Error; err != nil {
		logger.Error("Failed to update duplicate candidate", err, map[string]interface{}{
			"candidate_id": candidate.ID,
		})
		return err
	}
	return nil
}

func (r *duplicateRepository) FindByID(id uint) (*model.DuplicateCandidate, error) {
	var candidate model.DuplicateCandidate
	if err := r.db.Preload("SME1").Preload("SME2").First(&candidate, id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *duplicateRepository) FindAll(filter CandidateFilter) ([]model.DuplicateCandidate, error) {
	logger.Debug("Finding duplicate candidates", map[string]interface{}{
		"status":    filter.Status,
		"min_score": filter.MinScore,
	})

	query := r.db.Model(&model.DuplicateCandidate{}).Preload("SME1").Preload("SME2")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinScore > 0 {
		query = query.Where("similarity_score >= ?", filter.MinScore)
	}
	if filter.SMEID != 0 {
		query = query.Where("sme_id_1 = ? OR sme_id_2 = ?", filter.SMEID, filter.SMEID)
	}

	var candidates []model.DuplicateCandidate
	if err := query.Order("similarity_score DESC, id ASC").Find(&candidates).Error; err != nil {
		logger.Error("Failed to find duplicate candidates", err, nil)
		return nil, err
	}
	return candidates, nil
}

// ExistingPairs returns every tracked pair regardless of status, keyed by
// the canonical (smaller, larger) id ordering. Detection uses this to skip
// pairs that already have a candidate.
func (r *duplicateRepository) ExistingPairs() (map[[2]uint]bool, error) {
	var candidates []model.DuplicateCandidate
	if err := r.db.Select("sme_id_1", "sme_id_2").Find(&candidates).Error; err != nil {
		logger.Error("Failed to load existing candidate pairs", err, nil)
		return nil, err
	}

	pairs := make(map[[2]uint]bool, len(candidates))
	for _, c := range candidates {
		pairs[[2]uint{c.SMEID1, c.SMEID2}] = true
	}
	return pairs, nil
}

func (r *duplicateRepository) PairExists(smeID1, smeID2 uint) (bool, error) {
	if smeID1 > smeID2 {
		smeID1, smeID2 = smeID2, smeID1
	}

	var count int64
	err := r.db.Model(&model.DuplicateCandidate{}).
		Where("sme_id_1 = ? AND sme_id_2 = ?", smeID1, smeID2).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
