package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/internal/app/service"
	"github.com/pngsmec/msme-registry-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDuplicateControllerTest(t *testing.T) (*DuplicateController, *gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	duplicateRepo := repository.NewDuplicateRepository(testDB)
	smeRepo := repository.NewMSMERepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	mergeService := service.NewMergeService(testDB)
	duplicateService := service.NewDuplicateService(duplicateRepo, smeRepo, auditRepo, mergeService, nil, 0)
	duplicateController := NewDuplicateController(duplicateService)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return duplicateController, router, testDB
}

// Helper to run handlers as a reviewing officer
func asOfficer(handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint(7))
		c.Set("user_role", model.RoleSMECOfficer)
		handler(c)
	}
}

func seedNearDuplicatePair(t *testing.T, testDB *gorm.DB) (*model.MSME, *model.MSME) {
	a := &model.MSME{
		RegistrationNumber: "SMEC-2026-00301",
		BusinessName:       "Highlands Fresh Produce Ltd",
		PrimaryPhone:       "+675 7123 4567",
		ProvinceID:         "western-highlands",
		DistrictID:         "mount-hagen",
		Status:             model.StatusVerified,
	}
	b := &model.MSME{
		RegistrationNumber: "SMEC-2026-00302",
		BusinessName:       "Highland Fresh Produce",
		PrimaryPhone:       "+67571234567",
		ProvinceID:         "western-highlands",
		DistrictID:         "mount-hagen",
		Status:             model.StatusSubmitted,
	}
	require.NoError(t, testDB.Create(a).Error)
	require.NoError(t, testDB.Create(b).Error)
	return a, b
}

func TestDuplicateController_Detect(t *testing.T) {
	controller, router, testDB := setupDuplicateControllerTest(t)
	seedNearDuplicatePair(t, testDB)

	router.POST("/duplicates/detect", asOfficer(controller.Detect))

	req := httptest.NewRequest(http.MethodPost, "/duplicates/detect", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result service.DetectionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.RecordsScanned)
	assert.Equal(t, 1, result.CandidatesFound)
}

func TestDuplicateController_Detect_ThresholdOutOfRange(t *testing.T) {
	controller, router, _ := setupDuplicateControllerTest(t)

	router.POST("/duplicates/detect", asOfficer(controller.Detect))

	body := bytes.NewBufferString(`{"pending_threshold": 150}`)
	req := httptest.NewRequest(http.MethodPost, "/duplicates/detect", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateController_List(t *testing.T) {
	controller, router, testDB := setupDuplicateControllerTest(t)
	a, b := seedNearDuplicatePair(t, testDB)

	require.NoError(t, testDB.Create(&model.DuplicateCandidate{
		SMEID1: a.ID, SMEID2: b.ID,
		SimilarityScore: 88,
		MatchReasons:    model.StringArray{"name_match"},
		Status:          model.CandidatePending,
	}).Error)

	router.GET("/duplicates", asOfficer(controller.List))

	req := httptest.NewRequest(http.MethodGet, "/duplicates?status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["total"])
}

func TestDuplicateController_List_UnknownStatus(t *testing.T) {
	controller, router, _ := setupDuplicateControllerTest(t)

	router.GET("/duplicates", asOfficer(controller.List))

	req := httptest.NewRequest(http.MethodGet, "/duplicates?status=archived", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateController_Resolve_Merge(t *testing.T) {
	controller, router, testDB := setupDuplicateControllerTest(t)
	a, b := seedNearDuplicatePair(t, testDB)

	candidate := &model.DuplicateCandidate{
		SMEID1: a.ID, SMEID2: b.ID,
		SimilarityScore: 88,
		Status:          model.CandidatePending,
	}
	require.NoError(t, testDB.Create(candidate).Error)

	router.POST("/duplicates/:id/resolve", asOfficer(controller.Resolve))

	body := bytes.NewBufferString(fmt.Sprintf(
		`{"action":"merge","master_sme_id":%d,"notes":"same business"}`, a.ID))
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/duplicates/%d/resolve", candidate.ID), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var merged model.MSME
	require.NoError(t, testDB.First(&merged, b.ID).Error)
	assert.Equal(t, model.StatusSuperseded, merged.Status)
}

func TestDuplicateController_Resolve_MergeWithoutMaster(t *testing.T) {
	controller, router, testDB := setupDuplicateControllerTest(t)
	a, b := seedNearDuplicatePair(t, testDB)

	candidate := &model.DuplicateCandidate{
		SMEID1: a.ID, SMEID2: b.ID,
		SimilarityScore: 88,
		Status:          model.CandidatePending,
	}
	require.NoError(t, testDB.Create(candidate).Error)

	router.POST("/duplicates/:id/resolve", asOfficer(controller.Resolve))

	body := bytes.NewBufferString(`{"action":"merge"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/duplicates/%d/resolve", candidate.ID), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateController_Resolve_AlreadyResolved(t *testing.T) {
	controller, router, testDB := setupDuplicateControllerTest(t)
	a, b := seedNearDuplicatePair(t, testDB)

	candidate := &model.DuplicateCandidate{
		SMEID1: a.ID, SMEID2: b.ID,
		SimilarityScore: 88,
		Status:          model.CandidateNotDuplicate,
	}
	require.NoError(t, testDB.Create(candidate).Error)

	router.POST("/duplicates/:id/resolve", asOfficer(controller.Resolve))

	body := bytes.NewBufferString(`{"action":"not_duplicate"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/duplicates/%d/resolve", candidate.ID), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDuplicateController_Resolve_NotFound(t *testing.T) {
	controller, router, _ := setupDuplicateControllerTest(t)

	router.POST("/duplicates/:id/resolve", asOfficer(controller.Resolve))

	body := bytes.NewBufferString(`{"action":"not_duplicate"}`)
	req := httptest.NewRequest(http.MethodPost, "/duplicates/9999/resolve", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateController_PendingQueue(t *testing.T) {
	controller, router, testDB := setupDuplicateControllerTest(t)
	a, b := seedNearDuplicatePair(t, testDB)

	require.NoError(t, testDB.Create(&model.DuplicateCandidate{
		SMEID1: a.ID, SMEID2: b.ID,
		SimilarityScore: 88,
		Status:          model.CandidatePending,
	}).Error)

	router.GET("/duplicates/pending", asOfficer(controller.PendingQueue))

	req := httptest.NewRequest(http.MethodGet, "/duplicates/pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["total"])
}
