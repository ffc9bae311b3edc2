package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/internal/app/service"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/internal/middleware"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
)

type DuplicateController struct {
	duplicateService service.DuplicateService
}

func NewDuplicateController(duplicateService service.DuplicateService) *DuplicateController {
	return &DuplicateController{duplicateService: duplicateService}
}

type DetectRequest struct {
	PendingThreshold int `json:"pending_threshold"`
}

// Detect handles POST /duplicates/detect. The scan honors request
// cancellation; candidates created before the client disconnects stay
// created.
func (ctrl *DuplicateController) Detect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DetectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
			return
		}
	}
	if req.PendingThreshold < 0 || req.PendingThreshold > 100 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Pending threshold must be between 0 and 100")
		return
	}

	result, err := ctrl.duplicateService.RunDetection(c.Request.Context(), service.DetectionOptions{
		PendingThreshold: req.PendingThreshold,
	})
	if err != nil {
		if errors.Is(err, c.Request.Context().Err()) && c.Request.Context().Err() != nil {
			// client went away mid-scan; nothing left to respond to
			log.Warn("Detection run aborted by client", map[string]interface{}{
				"pairs_evaluated": result.PairsEvaluated,
			})
			return
		}
		log.Error("Detection run failed", err, nil)
		apperrors.InternalError(c, "Duplicate detection failed. Please try again later")
		return
	}

	c.JSON(http.StatusOK, result)
}

// List handles GET /duplicates
func (ctrl *DuplicateController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := c.Query("status")
	if status != "" && status != model.CandidatePending &&
		status != model.CandidateMerged && status != model.CandidateNotDuplicate {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown candidate status: "+status)
		return
	}

	minScore, _ := strconv.Atoi(c.Query("min_score"))
	smeID, _ := strconv.ParseUint(c.Query("sme_id"), 10, 32)

	candidates, err := ctrl.duplicateService.List(repository.CandidateFilter{
		Status:   status,
		MinScore: minScore,
		SMEID:    uint(smeID),
	})
	if err != nil {
		log.Error("Failed to list duplicate candidates", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

// PendingQueue handles GET /duplicates/pending. This is the review queue the
// dashboard polls, so reads go through the cache.
func (ctrl *DuplicateController) PendingQueue(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	pending, err := ctrl.duplicateService.PendingQueue(c.Request.Context())
	if err != nil {
		log.Error("Failed to load pending queue", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": pending,
		"total":      len(pending),
	})
}

type ResolveRequest struct {
	Action      string `json:"action" binding:"required"`
	MasterSMEID uint   `json:"master_sme_id"`
	Notes       string `json:"notes"`
}

// Resolve handles POST /duplicates/:id/resolve
func (ctrl *DuplicateController) Resolve(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Action is required")
		return
	}

	if req.Action == service.ActionMerge && req.MasterSMEID == 0 {
		apperrors.BadRequest(c, apperrors.DuplicateInvalidMaster, "Merging requires a master record")
		return
	}

	resolved, err := ctrl.duplicateService.Resolve(id, req.Action, req.MasterSMEID, req.Notes, actorID)
	if err != nil {
		ctrl.respondResolveError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, resolved)
}

func (ctrl *DuplicateController) respondResolveError(c *gin.Context, log *logger.Logger, err error) {
	var validationErr *apperrors.ValidationError
	var stateErr *apperrors.InvalidStateError
	var mergedErr *apperrors.AlreadyMergedError
	var notFoundErr *apperrors.NotFoundError

	switch {
	case errors.As(err, &notFoundErr):
		if notFoundErr.Resource == "sme" {
			apperrors.NotFound(c, apperrors.SMENotFound, notFoundErr.Error())
			return
		}
		apperrors.NotFound(c, apperrors.DuplicateNotFound, notFoundErr.Error())
	case errors.As(err, &stateErr):
		apperrors.Conflict(c, apperrors.DuplicateNotPending, stateErr.Message)
	case errors.As(err, &mergedErr):
		apperrors.Conflict(c, apperrors.DuplicateAlreadyMerged, mergedErr.Error())
	case errors.As(err, &validationErr):
		code := apperrors.DuplicateInvalidAction
		if len(validationErr.SMEIDs) == 2 {
			code = apperrors.DuplicateInvalidMaster
		}
		apperrors.BadRequest(c, code, validationErr.Message)
	default:
		log.Error("Resolve failed", err, nil)
		apperrors.InternalError(c, "Resolution failed. No changes were applied")
	}
}
