package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/internal/matching"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"github.com/pngsmec/msme-registry-backend/pkg/redis"
	"gorm.io/gorm"
)

// Resolve actions
const (
	ActionMerge        = "merge"
	ActionNotDuplicate = "not_duplicate"
)

// DetectionOptions tunes a detection run
type DetectionOptions struct {
	// PendingThreshold is the minimum score that opens a candidate;
	// zero selects the default.
	PendingThreshold int
}

// DetectionResult summarizes a detection run
type DetectionResult struct {
	RecordsScanned  int `json:"records_scanned"`
	PairsEvaluated  int `json:"pairs_evaluated"`
	PairsSkipped    int `json:"pairs_skipped"` // already tracked
	CandidatesFound int `json:"candidates_found"`
}

// DuplicateService manages the duplicate candidate lifecycle: detection
// opens pending candidates, Resolve moves them to a terminal state.
type DuplicateService interface {
	RunDetection(ctx context.Context, opts DetectionOptions) (*DetectionResult, error)
	DetectAmong(ctx context.Context, records []model.MSME, opts DetectionOptions) (*DetectionResult, error)
	List(filter repository.CandidateFilter) ([]model.DuplicateCandidate, error)
	PendingQueue(ctx context.Context) ([]model.DuplicateCandidate, error)
	Resolve(candidateID uint, action string, masterID uint, notes string, actorID uint) (*model.DuplicateCandidate, error)
}

type duplicateService struct {
	duplicates repository.DuplicateRepository
	smes       repository.MSMERepository
	audits     repository.AuditRepository
	merges     MergeService
	scorer     *matching.Scorer
	threshold  int
}

// NewDuplicateService wires the candidate manager. threshold is the default
// pending threshold; zero selects matching.DefaultPendingThreshold.
func NewDuplicateService(
	duplicates repository.DuplicateRepository,
	smes repository.MSMERepository,
	audits repository.AuditRepository,
	merges MergeService,
	scorer *matching.Scorer,
	threshold int,
) DuplicateService {
	if scorer == nil {
		scorer = matching.NewScorer(nil)
	}
	if threshold <= 0 {
		threshold = matching.DefaultPendingThreshold
	}
	return &duplicateService{
		duplicates: duplicates,
		smes:       smes,
		audits:     audits,
		merges:     merges,
		scorer:     scorer,
		threshold:  threshold,
	}
}

// RunDetection scans every live record in the registry
func (s *duplicateService) RunDetection(ctx context.Context, opts DetectionOptions) (*DetectionResult, error) {
	records, err := s.smes.ListForDetection()
	if err != nil {
		return nil, err
	}
	return s.DetectAmong(ctx, records, opts)
}

// DetectAmong runs the pairwise scan over the given records. The scan is
// deterministic (i<j over the caller's order) and idempotent: pairs that
// already have a candidate in any status are skipped, so re-running never
// re-opens resolved pairs. Cancellation is honored between pair
// evaluations.
func (s *duplicateService) DetectAmong(ctx context.Context, records []model.MSME, opts DetectionOptions) (*DetectionResult, error) {
	threshold := opts.PendingThreshold
	if threshold <= 0 {
		threshold = s.threshold
	}

	logger.Info("Starting duplicate detection run", map[string]interface{}{
		"records":   len(records),
		"threshold": threshold,
	})

	existing, err := s.duplicates.ExistingPairs()
	if err != nil {
		return nil, err
	}

	// normalize once per record, not once per pair
	normalized := make([]matching.NormalizedFields, len(records))
	for i, rec := range records {
		normalized[i] = matching.Normalize(matching.Record{
			ID:             rec.ID,
			BusinessName:   rec.BusinessName,
			TradingName:    rec.TradingName,
			PrimaryPhone:   rec.PrimaryPhone,
			SecondaryPhone: rec.SecondaryPhone,
			ProvinceID:     rec.ProvinceID,
			DistrictID:     rec.DistrictID,
		})
	}

	result := &DetectionResult{RecordsScanned: len(records)}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			// cancellation checkpoint between pair evaluations; work
			// committed so far stays committed
			select {
			case <-ctx.Done():
				logger.Warn("Detection run cancelled", map[string]interface{}{
					"pairs_evaluated":  result.PairsEvaluated,
					"candidates_found": result.CandidatesFound,
				})
				return result, ctx.Err()
			default:
			}

			id1, id2 := records[i].ID, records[j].ID
			if id1 > id2 {
				id1, id2 = id2, id1
			}
			if existing[[2]uint{id1, id2}] {
				result.PairsSkipped++
				continue
			}

			score, reasons := s.scorer.Score(normalized[i], normalized[j])
			result.PairsEvaluated++
			if score < threshold {
				continue
			}

			candidate := &model.DuplicateCandidate{
				SMEID1:          id1,
				SMEID2:          id2,
				SimilarityScore: score,
				MatchReasons:    reasons,
				Status:          model.CandidatePending,
			}
			if err := s.duplicates.Create(candidate); err != nil {
				// a concurrent run can win the insert; the unique pair
				// index turns that into a skip, not a failure
				if apperrors.IsDuplicateKey(err) {
					logger.Debug("Pair tracked by a concurrent run", map[string]interface{}{
						"sme_id_1": id1,
						"sme_id_2": id2,
					})
					existing[[2]uint{id1, id2}] = true
					result.PairsSkipped++
					continue
				}
				return result, apperrors.NewPersistenceError("create candidate", err)
			}
			existing[[2]uint{id1, id2}] = true
			result.CandidatesFound++
		}
	}

	// the pending queue changed; drop the cached copy
	if err := redis.InvalidatePendingQueue(ctx); err != nil {
		logger.Warn("Pending queue cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Duplicate detection run completed", map[string]interface{}{
		"pairs_evaluated":  result.PairsEvaluated,
		"pairs_skipped":    result.PairsSkipped,
		"candidates_found": result.CandidatesFound,
	})
	return result, nil
}

func (s *duplicateService) List(filter repository.CandidateFilter) ([]model.DuplicateCandidate, error) {
	return s.duplicates.FindAll(filter)
}

// PendingQueue returns pending candidates ordered by score. Reads go through
// the Redis cache; the database stays the single source of truth.
func (s *duplicateService) PendingQueue(ctx context.Context) ([]model.DuplicateCandidate, error) {
	if cached, err := redis.GetPendingQueue(ctx); err == nil && cached != "" {
		var candidates []model.DuplicateCandidate
		if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
			logger.Debug("Pending queue served from cache", map[string]interface{}{
				"count": len(candidates),
			})
			return candidates, nil
		}
		// fall through to the database on a corrupt cache entry
	}

	candidates, err := s.duplicates.FindAll(repository.CandidateFilter{Status: model.CandidatePending})
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(candidates); err == nil {
		_ = redis.SetPendingQueue(ctx, string(payload))
	}
	return candidates, nil
}

// Resolve moves a pending candidate to a terminal state. Terminal candidates
// are immutable: a second resolve attempt fails without side effects.
func (s *duplicateService) Resolve(candidateID uint, action string, masterID uint, notes string, actorID uint) (*model.DuplicateCandidate, error) {
	logger.Info("Resolving duplicate candidate", map[string]interface{}{
		"candidate_id": candidateID,
		"action":       action,
		"actor_id":     actorID,
	})

	candidate, err := s.duplicates.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("duplicate candidate", candidateID)
		}
		return nil, err
	}

	if candidate.IsTerminal() {
		return nil, apperrors.NewInvalidStateError(
			"candidate has already been resolved", candidate.Status, candidateID)
	}

	switch action {
	case ActionMerge:
		return s.resolveMerge(candidate, masterID, notes, actorID)
	case ActionNotDuplicate:
		return s.resolveNotDuplicate(candidate, notes, actorID)
	default:
		return nil, apperrors.NewValidationError("unknown resolve action: " + action)
	}
}

func (s *duplicateService) resolveMerge(candidate *model.DuplicateCandidate, masterID uint, notes string, actorID uint) (*model.DuplicateCandidate, error) {
	if !candidate.Involves(masterID) {
		return nil, apperrors.NewValidationError(
			"master record must be one of the candidate pair",
			candidate.SMEID1, candidate.SMEID2)
	}

	mergedID := candidate.SMEID1
	if mergedID == masterID {
		mergedID = candidate.SMEID2
	}

	if _, err := s.merges.Merge(masterID, mergedID, actorID, notes); err != nil {
		return nil, err
	}

	now := time.Now()
	candidate.Status = model.CandidateMerged
	candidate.ReviewedBy = &actorID
	candidate.ReviewedAt = &now
	candidate.Notes = notes
	candidate.MergedIntoSMEID = &masterID
	if err := s.duplicates.Update(candidate); err != nil {
		return nil, apperrors.NewPersistenceError("update candidate", err)
	}

	s.invalidateQueue()

	logger.Info("Candidate resolved as merge", map[string]interface{}{
		"candidate_id":  candidate.ID,
		"master_sme_id": masterID,
		"merged_sme_id": mergedID,
	})
	return candidate, nil
}

func (s *duplicateService) resolveNotDuplicate(candidate *model.DuplicateCandidate, notes string, actorID uint) (*model.DuplicateCandidate, error) {
	now := time.Now()
	candidate.Status = model.CandidateNotDuplicate
	candidate.ReviewedBy = &actorID
	candidate.ReviewedAt = &now
	candidate.Notes = notes
	if err := s.duplicates.Update(candidate); err != nil {
		return nil, apperrors.NewPersistenceError("update candidate", err)
	}

	// the determination touches both records, so each gets an entry
	for _, smeID := range []uint{candidate.SMEID1, candidate.SMEID2} {
		entry := &model.AuditLogEntry{
			SMEID:     smeID,
			Action:    model.AuditUpdated,
			Field:     "duplicate_review",
			NewValue:  model.CandidateNotDuplicate,
			ActorID:   actorID,
			Timestamp: now,
		}
		if err := s.audits.Append(entry); err != nil {
			return nil, apperrors.NewPersistenceError("audit", err)
		}
	}

	s.invalidateQueue()

	logger.Info("Candidate resolved as not duplicate", map[string]interface{}{
		"candidate_id": candidate.ID,
	})
	return candidate, nil
}

func (s *duplicateService) invalidateQueue() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redis.InvalidatePendingQueue(ctx); err != nil {
		logger.Warn("Pending queue cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
