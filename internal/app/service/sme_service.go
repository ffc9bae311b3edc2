package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"github.com/pngsmec/msme-registry-backend/pkg/util"
	"gorm.io/gorm"
)

// SMEMutation carries the updatable fields of an MSME record. Nil pointers
// leave the stored value untouched.
type SMEMutation struct {
	BusinessName        *string   `json:"business_name"`
	TradingName         *string   `json:"trading_name"`
	OwnershipType       *string   `json:"ownership_type"`
	Sector              *string   `json:"sector"`
	SubSector           *string   `json:"sub_sector"`
	ProductsServices    *[]string `json:"products_services"`
	BusinessSize        *string   `json:"business_size"`
	EmployeeCount       *int      `json:"employee_count"`
	AnnualRevenue       *float64  `json:"annual_revenue"`
	PrimaryPhone        *string   `json:"primary_phone"`
	SecondaryPhone      *string   `json:"secondary_phone"`
	Email               *string   `json:"email"`
	ProvinceID          *string   `json:"province_id"`
	DistrictID          *string   `json:"district_id"`
	LLG                 *string   `json:"llg"`
	Ward                *string   `json:"ward"`
	Village             *string   `json:"village"`
	HasBankAccount      *bool     `json:"has_bank_account"`
	BankName            *string   `json:"bank_name"`
	AccountType         *string   `json:"account_type"`
	MobileMoneyProvider *string   `json:"mobile_money_provider"`
	GreenCategory       *string   `json:"green_category"`
	GreenScore          *int      `json:"green_score"`
	EnergySource        *string   `json:"energy_source"`
	WomenLed            *bool     `json:"women_led"`
	YouthLed            *bool     `json:"youth_led"`
	PWDOwnership        *bool     `json:"pwd_ownership"`
}

// SMEService is the registry workflow: registration, updates, status
// transitions and the supporting child records. Every mutation writes
// exactly one audit entry.
type SMEService interface {
	Register(sme *model.MSME, actorID uint) (*model.MSME, error)
	Update(id uint, input SMEMutation, actorID uint) (*model.MSME, error)
	List(filter repository.MSMEFilter) ([]model.MSME, int64, error)
	Get(id uint) (*model.MSME, error)
	ChangeStatus(id uint, status string, actorID uint) (*model.MSME, error)
	Verify(id uint, actorID uint) (*model.MSME, error)
	AddOwner(smeID uint, owner *model.Owner, actorID uint) (*model.Owner, error)
	AttachDocument(smeID uint, doc *model.Document, actorID uint) (*model.Document, error)
	EnrollProgram(smeID uint, participation *model.ProgramParticipation, actorID uint) (*model.ProgramParticipation, error)
	AddFinanceReferral(smeID uint, referral *model.FinanceReferral, actorID uint) (*model.FinanceReferral, error)
	AuditTrail(smeID uint) ([]model.AuditLogEntry, error)
}

type smeService struct {
	smes   repository.MSMERepository
	audits repository.AuditRepository
}

func NewSMEService(smes repository.MSMERepository, audits repository.AuditRepository) SMEService {
	return &smeService{smes: smes, audits: audits}
}

// Register creates a new MSME record in submitted status and assigns its
// registration number
func (s *smeService) Register(sme *model.MSME, actorID uint) (*model.MSME, error) {
	logger.Info("Registering MSME", map[string]interface{}{
		"business_name": sme.BusinessName,
		"province_id":   sme.ProvinceID,
		"actor_id":      actorID,
	})

	if sme.BusinessName == "" {
		return nil, apperrors.NewValidationError("business name is required")
	}
	if err := validateOwnership(sme.Owners); err != nil {
		return nil, err
	}

	if sme.RegistrationNumber == "" {
		seq, err := s.smes.NextSequence()
		if err != nil {
			return nil, apperrors.NewPersistenceError("sequence", err)
		}
		sme.RegistrationNumber = util.NextRegistrationNumber(seq)
	}
	if sme.Status == "" {
		sme.Status = model.StatusSubmitted
	}

	if err := s.smes.Create(sme); err != nil {
		return nil, apperrors.NewPersistenceError("register", err)
	}

	if err := s.appendAudit(sme.ID, model.AuditCreated, "", "", sme.RegistrationNumber, actorID); err != nil {
		return nil, err
	}

	logger.Info("MSME registered", map[string]interface{}{
		"sme_id":              sme.ID,
		"registration_number": sme.RegistrationNumber,
	})
	return sme, nil
}

// Update applies the mutation and records which fields changed. The
// registration number is immutable and not part of SMEMutation.
func (s *smeService) Update(id uint, input SMEMutation, actorID uint) (*model.MSME, error) {
	logger.Info("Updating MSME", map[string]interface{}{
		"sme_id":   id,
		"actor_id": actorID,
	})

	sme, err := s.loadLive(id)
	if err != nil {
		return nil, err
	}

	changed := applyMutation(sme, input)
	if len(changed) == 0 {
		return sme, nil
	}

	if err := s.smes.Update(sme); err != nil {
		return nil, apperrors.NewPersistenceError("update", err)
	}

	if err := s.appendAudit(id, model.AuditUpdated, strings.Join(changed, ","), "", "", actorID); err != nil {
		return nil, err
	}

	logger.Info("MSME updated", map[string]interface{}{
		"sme_id":         id,
		"changed_fields": changed,
	})
	return sme, nil
}

func (s *smeService) List(filter repository.MSMEFilter) ([]model.MSME, int64, error) {
	return s.smes.FindAll(filter)
}

func (s *smeService) Get(id uint) (*model.MSME, error) {
	sme, err := s.smes.FindByID(id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("sme", id)
		}
		return nil, err
	}
	return sme, nil
}

// ChangeStatus moves a record through the verification workflow. Superseded
// is terminal and only ever set by the merge engine.
func (s *smeService) ChangeStatus(id uint, status string, actorID uint) (*model.MSME, error) {
	logger.Info("Changing MSME status", map[string]interface{}{
		"sme_id":   id,
		"status":   status,
		"actor_id": actorID,
	})

	if !model.IsValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status: "+status, id)
	}
	if status == model.StatusSuperseded {
		return nil, apperrors.NewValidationError("superseded is set by merging, not by status change", id)
	}

	sme, err := s.loadLive(id)
	if err != nil {
		return nil, err
	}
	if sme.Status == status {
		return sme, nil
	}

	old := sme.Status
	sme.Status = status
	if err := s.smes.Update(sme); err != nil {
		return nil, apperrors.NewPersistenceError("status change", err)
	}

	if err := s.appendAudit(id, model.AuditStatusChanged, "status", old, status, actorID); err != nil {
		return nil, err
	}
	return sme, nil
}

// Verify marks a record verified and stamps the verifying officer
func (s *smeService) Verify(id uint, actorID uint) (*model.MSME, error) {
	logger.Info("Verifying MSME", map[string]interface{}{
		"sme_id":   id,
		"actor_id": actorID,
	})

	sme, err := s.loadLive(id)
	if err != nil {
		return nil, err
	}
	if sme.Status == model.StatusVerified {
		return nil, apperrors.NewInvalidStateError("record is already verified", sme.Status, id)
	}

	old := sme.Status
	now := time.Now()
	sme.Status = model.StatusVerified
	sme.VerifiedAt = &now
	sme.VerifiedBy = &actorID
	if err := s.smes.Update(sme); err != nil {
		return nil, apperrors.NewPersistenceError("verify", err)
	}

	if err := s.appendAudit(id, model.AuditVerified, "status", old, model.StatusVerified, actorID); err != nil {
		return nil, err
	}
	return sme, nil
}

// AddOwner attaches an owner, keeping the total ownership percentage within
// 100
func (s *smeService) AddOwner(smeID uint, owner *model.Owner, actorID uint) (*model.Owner, error) {
	if _, err := s.loadLive(smeID); err != nil {
		return nil, err
	}

	existing, err := s.smes.OwnersBySME(smeID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load owners", err)
	}
	if err := validateOwnership(append(existing, *owner)); err != nil {
		return nil, err
	}

	owner.SMEID = smeID
	if err := s.smes.AddOwner(owner); err != nil {
		return nil, apperrors.NewPersistenceError("add owner", err)
	}

	if err := s.appendAudit(smeID, model.AuditUpdated, "owners", "", owner.FullName, actorID); err != nil {
		return nil, err
	}
	return owner, nil
}

func (s *smeService) AttachDocument(smeID uint, doc *model.Document, actorID uint) (*model.Document, error) {
	if _, err := s.loadLive(smeID); err != nil {
		return nil, err
	}

	doc.SMEID = smeID
	doc.UploadedBy = actorID
	if err := s.smes.AddDocument(doc); err != nil {
		return nil, apperrors.NewPersistenceError("attach document", err)
	}

	if err := s.appendAudit(smeID, model.AuditDocumentAdded, "documents", "", doc.FileName, actorID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *smeService) EnrollProgram(smeID uint, participation *model.ProgramParticipation, actorID uint) (*model.ProgramParticipation, error) {
	if _, err := s.loadLive(smeID); err != nil {
		return nil, err
	}
	if participation.ProgramName == "" {
		return nil, apperrors.NewValidationError("program name is required", smeID)
	}

	participation.SMEID = smeID
	participation.EnrolledBy = actorID
	if participation.Status == "" {
		participation.Status = model.ParticipationEnrolled
	}
	if participation.EnrolledAt.IsZero() {
		participation.EnrolledAt = time.Now()
	}
	if err := s.smes.AddProgramParticipation(participation); err != nil {
		return nil, apperrors.NewPersistenceError("enroll program", err)
	}

	if err := s.appendAudit(smeID, model.AuditProgramEnrolled, "programs", "", participation.ProgramName, actorID); err != nil {
		return nil, err
	}
	return participation, nil
}

func (s *smeService) AddFinanceReferral(smeID uint, referral *model.FinanceReferral, actorID uint) (*model.FinanceReferral, error) {
	if _, err := s.loadLive(smeID); err != nil {
		return nil, err
	}
	if referral.Institution == "" {
		return nil, apperrors.NewValidationError("institution is required", smeID)
	}

	referral.SMEID = smeID
	referral.ReferredBy = actorID
	if referral.Status == "" {
		referral.Status = model.ReferralPending
	}
	if err := s.smes.AddFinanceReferral(referral); err != nil {
		return nil, apperrors.NewPersistenceError("add referral", err)
	}

	if err := s.appendAudit(smeID, model.AuditUpdated, "finance_referrals", "", referral.Institution, actorID); err != nil {
		return nil, err
	}
	return referral, nil
}

func (s *smeService) AuditTrail(smeID uint) ([]model.AuditLogEntry, error) {
	if _, err := s.Get(smeID); err != nil {
		return nil, err
	}
	return s.audits.ListForSME(smeID)
}

// loadLive loads a record and rejects superseded ones: a merged-away record
// can be read but never mutated again.
func (s *smeService) loadLive(id uint) (*model.MSME, error) {
	sme, err := s.smes.FindByID(id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("sme", id)
		}
		return nil, err
	}
	if sme.Status == model.StatusSuperseded {
		var into uint
		if sme.MergedIntoSMEID != nil {
			into = *sme.MergedIntoSMEID
		}
		return nil, apperrors.NewAlreadyMergedError(id, into)
	}
	return sme, nil
}

func (s *smeService) appendAudit(smeID uint, action, field, oldValue, newValue string, actorID uint) error {
	entry := &model.AuditLogEntry{
		SMEID:    smeID,
		Action:   action,
		Field:    field,
		OldValue: oldValue,
		NewValue: newValue,
		ActorID:  actorID,
	}
	if err := s.audits.Append(entry); err != nil {
		return apperrors.NewPersistenceError("audit", err)
	}
	return nil
}

func validateOwnership(owners []model.Owner) error {
	total := 0.0
	for _, o := range owners {
		if o.OwnershipPercentage < 0 {
			return apperrors.NewValidationError("ownership percentage cannot be negative")
		}
		total += o.OwnershipPercentage
	}
	if total > 100 {
		return apperrors.NewValidationError(
			fmt.Sprintf("ownership percentages total %.1f, exceeding 100", total))
	}
	return nil
}

// applyMutation copies set fields onto the record and returns the names of
// the fields that actually changed
func applyMutation(sme *model.MSME, input SMEMutation) []string {
	changed := make([]string, 0, 4)

	setString := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setBool := func(name string, dst *bool, src *bool) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setInt := func(name string, dst *int, src *int) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}

	setString("business_name", &sme.BusinessName, input.BusinessName)
	setString("trading_name", &sme.TradingName, input.TradingName)
	setString("ownership_type", &sme.OwnershipType, input.OwnershipType)
	setString("sector", &sme.Sector, input.Sector)
	setString("sub_sector", &sme.SubSector, input.SubSector)
	setString("business_size", &sme.BusinessSize, input.BusinessSize)
	setString("primary_phone", &sme.PrimaryPhone, input.PrimaryPhone)
	setString("secondary_phone", &sme.SecondaryPhone, input.SecondaryPhone)
	setString("email", &sme.Email, input.Email)
	setString("province_id", &sme.ProvinceID, input.ProvinceID)
	setString("district_id", &sme.DistrictID, input.DistrictID)
	setString("llg", &sme.LLG, input.LLG)
	setString("ward", &sme.Ward, input.Ward)
	setString("village", &sme.Village, input.Village)
	setString("bank_name", &sme.BankName, input.BankName)
	setString("account_type", &sme.AccountType, input.AccountType)
	setString("mobile_money_provider", &sme.MobileMoneyProvider, input.MobileMoneyProvider)
	setString("green_category", &sme.GreenCategory, input.GreenCategory)
	setString("energy_source", &sme.EnergySource, input.EnergySource)

	setInt("employee_count", &sme.EmployeeCount, input.EmployeeCount)
	setInt("green_score", &sme.GreenScore, input.GreenScore)

	setBool("has_bank_account", &sme.HasBankAccount, input.HasBankAccount)
	setBool("women_led", &sme.WomenLed, input.WomenLed)
	setBool("youth_led", &sme.YouthLed, input.YouthLed)
	setBool("pwd_ownership", &sme.PWDOwnership, input.PWDOwnership)

	if input.AnnualRevenue != nil && sme.AnnualRevenue != *input.AnnualRevenue {
		sme.AnnualRevenue = *input.AnnualRevenue
		changed = append(changed, "annual_revenue")
	}
	if input.ProductsServices != nil {
		sme.ProductsServices = *input.ProductsServices
		changed = append(changed, "products_services")
	}

	return changed
}
