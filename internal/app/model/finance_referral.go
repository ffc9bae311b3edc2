package model

import "time"

// Finance referral statuses
const (
	ReferralPending  = "pending"
	ReferralAccepted = "accepted"
	ReferralDeclined = "declined"
	ReferralFunded   = "funded"
)

// FinanceReferral is a referral of an MSME to a financial institution
type FinanceReferral struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	SMEID            uint    `gorm:"not null;index" json:"sme_id"`
	Institution      string  `gorm:"not null" json:"institution"`
	ProductType      string  `gorm:"type:varchar(40)" json:"product_type"` // loan, grant, equity, savings
	Amount           float64 `json:"amount"`                               // PGK
	ReadinessRating  string  `gorm:"type:varchar(20)" json:"readiness_rating"` // low, medium, high
	Status           string  `gorm:"type:varchar(20);default:pending" json:"status"`
	ReferredBy       uint    `json:"referred_by"`
	InstitutionNotes string  `gorm:"type:text" json:"institution_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FinanceReferral) TableName() string {
	return "finance_referrals"
}
