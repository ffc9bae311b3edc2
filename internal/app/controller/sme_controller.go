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
	"github.com/pngsmec/msme-registry-backend/internal/storage"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
)

type SMEController struct {
	smeService service.SMEService
	storage    *storage.S3Storage
}

func NewSMEController(smeService service.SMEService, s3Storage *storage.S3Storage) *SMEController {
	return &SMEController{
		smeService: smeService,
		storage:    s3Storage,
	}
}

// respondDomainError maps the typed service errors onto HTTP responses. The
// notFoundCode lets each controller keep its own resource code.
func respondDomainError(c *gin.Context, log *logger.Logger, err error, notFoundCode string) {
	var validationErr *apperrors.ValidationError
	var stateErr *apperrors.InvalidStateError
	var mergedErr *apperrors.AlreadyMergedError
	var notFoundErr *apperrors.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, validationErr.Message)
	case errors.As(err, &stateErr):
		apperrors.Conflict(c, apperrors.ResourceConflict, stateErr.Message)
	case errors.As(err, &mergedErr):
		apperrors.Conflict(c, apperrors.SMESuperseded, mergedErr.Error())
	case errors.As(err, &notFoundErr):
		apperrors.NotFound(c, notFoundCode, notFoundErr.Error())
	default:
		log.Error("Unexpected service error", err, nil)
		info := apperrors.ParseError(err, c.Request.URL.Path)
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}

// parseIDParam parses the :id path segment, responding 400 on failure
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// List handles GET /smes
func (ctrl *SMEController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := repository.MSMEFilter{
		ProvinceID: c.Query("province_id"),
		DistrictID: c.Query("district_id"),
		Status:     c.Query("status"),
		Sector:     c.Query("sector"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	smes, total, err := ctrl.smeService.List(filter)
	if err != nil {
		log.Error("Failed to list MSMEs", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"smes":      smes,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Register handles POST /smes
func (ctrl *SMEController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	var sme model.MSME
	if err := c.ShouldBindJSON(&sme); err != nil {
		log.Warn("Invalid registration payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	registered, err := ctrl.smeService.Register(&sme, actorID)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusCreated, registered)
}

// Get handles GET /smes/:id
func (ctrl *SMEController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	sme, err := ctrl.smeService.Get(id)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusOK, sme)
}

// Update handles PUT /smes/:id
func (ctrl *SMEController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input service.SMEMutation
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	updated, err := ctrl.smeService.Update(id, input, actorID)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusOK, updated)
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus handles POST /smes/:id/status
func (ctrl *SMEController) ChangeStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Status is required")
		return
	}

	updated, err := ctrl.smeService.ChangeStatus(id, req.Status, actorID)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Verify handles POST /smes/:id/verify
func (ctrl *SMEController) Verify(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	verified, err := ctrl.smeService.Verify(id, actorID)
	if err != nil {
		var stateErr *apperrors.InvalidStateError
		if errors.As(err, &stateErr) {
			apperrors.Conflict(c, apperrors.SMEAlreadyVerified, stateErr.Message)
			return
		}
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusOK, verified)
}

// AddOwner handles POST /smes/:id/owners
func (ctrl *SMEController) AddOwner(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var owner model.Owner
	if err := c.ShouldBindJSON(&owner); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	created, err := ctrl.smeService.AddOwner(id, &owner, actorID)
	if err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			apperrors.BadRequest(c, apperrors.SMEOwnershipExceeded, validationErr.Message)
			return
		}
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusCreated, created)
}

type UploadURLRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes"`
}

var allowedDocumentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

const maxDocumentSize = 10 * 1024 * 1024 // 10MB

// RequestUploadURL handles POST /smes/:id/documents/upload-url. The client
// uploads directly to object storage with the presigned URL, then registers
// the document with AttachDocument.
func (ctrl *SMEController) RequestUploadURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "File name and content type are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedDocumentTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
		return
	}
	if req.SizeBytes > 0 {
		if err := ctrl.storage.ValidateFileSize(req.SizeBytes, maxDocumentSize); err != nil {
			apperrors.BadRequest(c, apperrors.UploadFileTooLarge, err.Error())
			return
		}
	}

	if _, err := ctrl.smeService.Get(id); err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	resp, err := ctrl.storage.PresignDocumentUpload(id, req.FileName, req.ContentType)
	if err != nil {
		log.Error("Failed to generate upload URL", err, map[string]interface{}{
			"sme_id": id,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, resp)
}

type AttachDocumentRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
	FileName     string `json:"file_name" binding:"required"`
	ObjectKey    string `json:"object_key" binding:"required"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// AttachDocument handles POST /smes/:id/documents
func (ctrl *SMEController) AttachDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Document type, file name and object key are required")
		return
	}

	doc := &model.Document{
		DocumentType: req.DocumentType,
		FileName:     req.FileName,
		ObjectKey:    req.ObjectKey,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
	}
	created, err := ctrl.smeService.AttachDocument(id, doc, actorID)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// EnrollProgram handles POST /smes/:id/programs
func (ctrl *SMEController) EnrollProgram(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var participation model.ProgramParticipation
	if err := c.ShouldBindJSON(&participation); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	created, err := ctrl.smeService.EnrollProgram(id, &participation, actorID)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// AddFinanceReferral handles POST /smes/:id/referrals
func (ctrl *SMEController) AddFinanceReferral(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actorID, _ := middleware.GetUserID(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var referral model.FinanceReferral
	if err := c.ShouldBindJSON(&referral); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	created, err := ctrl.smeService.AddFinanceReferral(id, &referral, actorID)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// AuditTrail handles GET /smes/:id/audit
func (ctrl *SMEController) AuditTrail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	trail, err := ctrl.smeService.AuditTrail(id)
	if err != nil {
		respondDomainError(c, log, err, apperrors.SMENotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sme_id":  id,
		"entries": trail,
	})
}
