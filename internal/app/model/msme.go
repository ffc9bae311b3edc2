package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// StringArray stores a string slice as a JSON array so the same column works
// on PostgreSQL and on the sqlite test database
type StringArray []string

// Value implements database/sql/driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements database/sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}

	return json.Unmarshal(bytes, s)
}

// MSME statuses. A record leaves the registry only through supersession:
// merges never delete rows.
const (
	StatusDraft       = "draft"
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusVerified    = "verified"
	StatusActive      = "active"
	StatusSuspended   = "suspended"
	StatusInactive    = "inactive"
	StatusSuperseded  = "superseded" // merged into another record
)

// ValidStatuses lists every accepted MSME status value
var ValidStatuses = []string{
	StatusDraft, StatusSubmitted, StatusUnderReview, StatusVerified,
	StatusActive, StatusSuspended, StatusInactive, StatusSuperseded,
}

// IsValidStatus reports whether s is a known MSME status
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// MSME is a registered micro, small or medium enterprise
type MSME struct {
	ID                 uint   `gorm:"primarykey" json:"id"`
	RegistrationNumber string `gorm:"uniqueIndex:idx_smes_registration_number;not null" json:"registration_number"` // immutable, SMEC-YYYY-NNNNN

	// Business identity
	BusinessName  string `gorm:"not null;index" json:"business_name"`
	TradingName   string `json:"trading_name"`
	OwnershipType string `gorm:"type:varchar(40)" json:"ownership_type"` // sole_trader, partnership, company, cooperative, informal

	// Classification
	Sector           string         `gorm:"index" json:"sector"`
	SubSector        string         `json:"sub_sector"`
	// stored in the pq array literal format, which round-trips through a
	// plain text column on both postgres and the sqlite test database
	ProductsServices pq.StringArray `gorm:"type:text" json:"products_services"`
	BusinessSize     string         `gorm:"type:varchar(10)" json:"business_size"` // micro, small, medium
	EmployeeCount    int            `json:"employee_count"`
	AnnualRevenue    float64        `json:"annual_revenue"` // PGK

	// Contact
	PrimaryPhone   string `gorm:"type:varchar(30)" json:"primary_phone"`
	SecondaryPhone string `gorm:"type:varchar(30)" json:"secondary_phone"`
	Email          string `json:"email"`

	// Location (stable gazetteer identifiers)
	ProvinceID string `gorm:"index;type:varchar(60)" json:"province_id"`
	DistrictID string `gorm:"index;type:varchar(60)" json:"district_id"`
	LLG        string `json:"llg"`
	Ward       string `json:"ward"`
	Village    string `json:"village"`

	// Banking and finance access
	HasBankAccount      bool   `gorm:"default:false" json:"has_bank_account"`
	BankName            string `json:"bank_name"`
	AccountType         string `json:"account_type"`
	MobileMoneyProvider string `json:"mobile_money_provider"`

	// Green economy profile
	GreenCategory string `json:"green_category"`
	GreenScore    int    `json:"green_score"`
	EnergySource  string `json:"energy_source"`

	// Inclusion flags
	WomenLed     bool `gorm:"default:false" json:"women_led"`
	YouthLed     bool `gorm:"default:false" json:"youth_led"`
	PWDOwnership bool `gorm:"default:false" json:"pwd_ownership"`

	// Lifecycle
	Status          string     `gorm:"type:varchar(20);index;not null;default:draft" json:"status"`
	MergedIntoSMEID *uint      `gorm:"index" json:"merged_into_sme_id,omitempty"` // set when status is superseded
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	VerifiedBy      *uint      `json:"verified_by,omitempty"`

	// Children (re-parented on merge, never deduplicated)
	Owners                []Owner                `gorm:"foreignKey:SMEID" json:"owners,omitempty"`
	Documents             []Document             `gorm:"foreignKey:SMEID" json:"documents,omitempty"`
	ProgramParticipations []ProgramParticipation `gorm:"foreignKey:SMEID" json:"program_participations,omitempty"`
	FinanceReferrals      []FinanceReferral      `gorm:"foreignKey:SMEID" json:"finance_referrals,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MSME) TableName() string {
	return "smes"
}

// Owner is a person with an ownership stake in an MSME
type Owner struct {
	ID                  uint    `gorm:"primarykey" json:"id"`
	SMEID               uint    `gorm:"not null;index" json:"sme_id"`
	FullName            string  `gorm:"not null" json:"full_name"`
	Gender              string  `gorm:"type:varchar(10)" json:"gender"`
	Phone               string  `gorm:"type:varchar(30)" json:"phone"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
	IsYouth             bool    `gorm:"default:false" json:"is_youth"`
	IsPWD               bool    `gorm:"default:false" json:"is_pwd"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Owner) TableName() string {
	return "owners"
}
