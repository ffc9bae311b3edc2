package service

import (
	"strings"
	"testing"

	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSMEServiceTest(t *testing.T) (SMEService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	smeRepo := repository.NewMSMERepository(testDB)
	auditRepo := repository.NewAuditRepository(testDB)
	return NewSMEService(smeRepo, auditRepo), testDB
}

func TestSMEService_Register(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme := &model.MSME{
		BusinessName: "Kokopo Cocoa Exports",
		ProvinceID:   "east-new-britain",
		DistrictID:   "kokopo",
	}
	registered, err := smeService.Register(sme, 3)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSubmitted, registered.Status)
	assert.True(t, strings.HasPrefix(registered.RegistrationNumber, "SMEC-"),
		"got %q", registered.RegistrationNumber)

	// registration writes exactly one "created" entry
	var entries []model.AuditLogEntry
	testDB.Where("sme_id = ?", registered.ID).Find(&entries)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditCreated, entries[0].Action)
	assert.Equal(t, uint(3), entries[0].ActorID)
}

func TestSMEService_Register_RequiresName(t *testing.T) {
	smeService, _ := setupSMEServiceTest(t)

	_, err := smeService.Register(&model.MSME{}, 1)
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSMEService_Register_OwnershipOverflow(t *testing.T) {
	smeService, _ := setupSMEServiceTest(t)

	sme := &model.MSME{
		BusinessName: "Split Ownership Traders",
		Owners: []model.Owner{
			{FullName: "A", OwnershipPercentage: 60},
			{FullName: "B", OwnershipPercentage: 50},
		},
	}
	_, err := smeService.Register(sme, 1)
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSMEService_Update_AuditsChangedFields(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Lae Transport Services"}, 1)
	require.NoError(t, err)

	phone := "+675 7200 8811"
	size := "small"
	updated, err := smeService.Update(sme.ID, SMEMutation{
		PrimaryPhone: &phone,
		BusinessSize: &size,
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, phone, updated.PrimaryPhone)
	assert.Equal(t, "small", updated.BusinessSize)

	var entries []model.AuditLogEntry
	testDB.Where("sme_id = ? AND action = ?", sme.ID, model.AuditUpdated).Find(&entries)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Field, "primary_phone")
	assert.Contains(t, entries[0].Field, "business_size")
}

func TestSMEService_Update_NoChangesNoAudit(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Wewak Bakery"}, 1)
	require.NoError(t, err)

	_, err = smeService.Update(sme.ID, SMEMutation{}, 2)
	require.NoError(t, err)

	var count int64
	testDB.Model(&model.AuditLogEntry{}).
		Where("sme_id = ? AND action = ?", sme.ID, model.AuditUpdated).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSMEService_ChangeStatus(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Goroka Coffee Roasters"}, 1)
	require.NoError(t, err)

	updated, err := smeService.ChangeStatus(sme.ID, model.StatusUnderReview, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReview, updated.Status)

	var entries []model.AuditLogEntry
	testDB.Where("sme_id = ? AND action = ?", sme.ID, model.AuditStatusChanged).Find(&entries)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSubmitted, entries[0].OldValue)
	assert.Equal(t, model.StatusUnderReview, entries[0].NewValue)
}

func TestSMEService_ChangeStatus_RejectsSuperseded(t *testing.T) {
	smeService, _ := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Buka Fisheries"}, 1)
	require.NoError(t, err)

	// superseded is owned by the merge engine
	_, err = smeService.ChangeStatus(sme.ID, model.StatusSuperseded, 2)
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = smeService.ChangeStatus(sme.ID, "archived", 2)
	assert.ErrorAs(t, err, &validationErr)
}

func TestSMEService_Verify(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Mt Hagen Hardware"}, 1)
	require.NoError(t, err)

	verified, err := smeService.Verify(sme.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, uint(9), *verified.VerifiedBy)
	assert.NotNil(t, verified.VerifiedAt)

	var entries []model.AuditLogEntry
	testDB.Where("sme_id = ? AND action = ?", sme.ID, model.AuditVerified).Find(&entries)
	assert.Len(t, entries, 1)

	// verifying twice is an invalid state transition
	_, err = smeService.Verify(sme.ID, 9)
	var stateErr *apperrors.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestSMEService_AddOwner_OwnershipCap(t *testing.T) {
	smeService, _ := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Kavieng Boat Repairs"}, 1)
	require.NoError(t, err)

	_, err = smeService.AddOwner(sme.ID, &model.Owner{FullName: "John Toua", OwnershipPercentage: 70}, 1)
	require.NoError(t, err)

	// a second owner pushing the total over 100 is rejected
	_, err = smeService.AddOwner(sme.ID, &model.Owner{FullName: "Peter Toua", OwnershipPercentage: 40}, 1)
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = smeService.AddOwner(sme.ID, &model.Owner{FullName: "Peter Toua", OwnershipPercentage: 30}, 1)
	assert.NoError(t, err)
}

func TestSMEService_MutationsRejectSuperseded(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Alotau General Store"}, 1)
	require.NoError(t, err)

	master, err := smeService.Register(&model.MSME{BusinessName: "Alotau General Store Ltd"}, 1)
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.MSME{}).Where("id = ?", sme.ID).
		Updates(map[string]interface{}{
			"status":             model.StatusSuperseded,
			"merged_into_sme_id": master.ID,
		}).Error)

	name := "New Name"
	_, err = smeService.Update(sme.ID, SMEMutation{BusinessName: &name}, 1)
	var mergedErr *apperrors.AlreadyMergedError
	require.ErrorAs(t, err, &mergedErr)
	assert.Equal(t, master.ID, mergedErr.MergedIntoID)
}

func TestSMEService_EnrollProgram(t *testing.T) {
	smeService, testDB := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Vanimo Timber Works"}, 1)
	require.NoError(t, err)

	participation, err := smeService.EnrollProgram(sme.ID, &model.ProgramParticipation{
		ProgramName: "Green Finance Readiness",
		ProgramType: "training",
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, model.ParticipationEnrolled, participation.Status)
	assert.False(t, participation.EnrolledAt.IsZero())

	var entries []model.AuditLogEntry
	testDB.Where("sme_id = ? AND action = ?", sme.ID, model.AuditProgramEnrolled).Find(&entries)
	assert.Len(t, entries, 1)
}

func TestSMEService_AuditTrail_Order(t *testing.T) {
	smeService, _ := setupSMEServiceTest(t)

	sme, err := smeService.Register(&model.MSME{BusinessName: "Kimbe Palm Services"}, 1)
	require.NoError(t, err)

	_, err = smeService.ChangeStatus(sme.ID, model.StatusUnderReview, 2)
	require.NoError(t, err)
	_, err = smeService.Verify(sme.ID, 2)
	require.NoError(t, err)

	trail, err := smeService.AuditTrail(sme.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)

	// insertion order: created, status_changed, verified
	assert.Equal(t, model.AuditCreated, trail[0].Action)
	assert.Equal(t, model.AuditStatusChanged, trail[1].Action)
	assert.Equal(t, model.AuditVerified, trail[2].Action)
	assert.True(t, trail[0].ID < trail[1].ID && trail[1].ID < trail[2].ID)
}
