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

func setupSMEControllerTest(t *testing.T) (*SMEController, *gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	smeRepo := repository.NewMSMERepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	smeService := service.NewSMEService(smeRepo, auditRepo)
	smeController := NewSMEController(smeService, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return smeController, router, testDB
}

func TestSMEController_Register(t *testing.T) {
	controller, router, testDB := setupSMEControllerTest(t)

	router.POST("/smes", asOfficer(controller.Register))

	body := bytes.NewBufferString(`{
		"business_name": "Kokopo Cocoa Exports",
		"province_id": "east-new-britain",
		"district_id": "kokopo",
		"sector": "agriculture"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/smes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created model.MSME
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, model.StatusSubmitted, created.Status)
	assert.NotEmpty(t, created.RegistrationNumber)

	var count int64
	testDB.Model(&model.MSME{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSMEController_Register_MissingName(t *testing.T) {
	controller, router, _ := setupSMEControllerTest(t)

	router.POST("/smes", asOfficer(controller.Register))

	body := bytes.NewBufferString(`{"province_id": "morobe"}`)
	req := httptest.NewRequest(http.MethodPost, "/smes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSMEController_Get(t *testing.T) {
	controller, router, testDB := setupSMEControllerTest(t)

	sme := &model.MSME{
		RegistrationNumber: "SMEC-2026-00401",
		BusinessName:       "Goroka Coffee Roasters",
		Status:             model.StatusVerified,
	}
	require.NoError(t, testDB.Create(sme).Error)

	router.GET("/smes/:id", asOfficer(controller.Get))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/smes/%d", sme.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var found model.MSME
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Equal(t, "Goroka Coffee Roasters", found.BusinessName)
}

func TestSMEController_Get_NotFound(t *testing.T) {
	controller, router, _ := setupSMEControllerTest(t)

	router.GET("/smes/:id", asOfficer(controller.Get))

	req := httptest.NewRequest(http.MethodGet, "/smes/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSMEController_Get_InvalidID(t *testing.T) {
	controller, router, _ := setupSMEControllerTest(t)

	router.GET("/smes/:id", asOfficer(controller.Get))

	req := httptest.NewRequest(http.MethodGet, "/smes/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSMEController_ChangeStatus_RejectsSuperseded(t *testing.T) {
	controller, router, testDB := setupSMEControllerTest(t)

	sme := &model.MSME{
		RegistrationNumber: "SMEC-2026-00402",
		BusinessName:       "Buka Fisheries",
		Status:             model.StatusSubmitted,
	}
	require.NoError(t, testDB.Create(sme).Error)

	router.POST("/smes/:id/status", asOfficer(controller.ChangeStatus))

	body := bytes.NewBufferString(`{"status":"superseded"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/smes/%d/status", sme.ID), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSMEController_Update_SupersededConflict(t *testing.T) {
	controller, router, testDB := setupSMEControllerTest(t)

	master := &model.MSME{
		RegistrationNumber: "SMEC-2026-00403",
		BusinessName:       "Alotau General Store Ltd",
		Status:             model.StatusVerified,
	}
	require.NoError(t, testDB.Create(master).Error)

	merged := &model.MSME{
		RegistrationNumber: "SMEC-2026-00404",
		BusinessName:       "Alotau General Store",
		Status:             model.StatusSuperseded,
		MergedIntoSMEID:    &master.ID,
	}
	require.NoError(t, testDB.Create(merged).Error)

	router.PUT("/smes/:id", asOfficer(controller.Update))

	body := bytes.NewBufferString(`{"trading_name":"AGS"}`)
	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/smes/%d", merged.ID), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSMEController_AuditTrail(t *testing.T) {
	controller, router, testDB := setupSMEControllerTest(t)

	smeRepo := repository.NewMSMERepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	smeService := service.NewSMEService(smeRepo, auditRepo)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Kavieng Boat Repairs"}, 1)
	require.NoError(t, err)
	_, err = smeService.ChangeStatus(sme.ID, model.StatusUnderReview, 1)
	require.NoError(t, err)

	router.GET("/smes/:id/audit", asOfficer(controller.AuditTrail))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/smes/%d/audit", sme.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		SMEID   uint                  `json:"sme_id"`
		Entries []model.AuditLogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, sme.ID, response.SMEID)
	require.Len(t, response.Entries, 2)
	assert.Equal(t, model.AuditCreated, response.Entries[0].Action)
	assert.Equal(t, model.AuditStatusChanged, response.Entries[1].Action)
}
