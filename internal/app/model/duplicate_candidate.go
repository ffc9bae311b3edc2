package model

import "time"

// Duplicate candidate statuses. pending is the only non-terminal state.
const (
	CandidatePending      = "pending"
	CandidateMerged       = "merged"
	CandidateNotDuplicate = "not_duplicate"
)

// Match reason tags emitted by the similarity scorer
const (
	ReasonNameMatch     = "name_match"
	ReasonPhoneMatch    = "phone_match"
	ReasonLocationMatch = "location_match"
)

// DuplicateCandidate is a scored pair of MSME records flagged for review.
// The pair is stored canonically with SMEID1 < SMEID2; the composite unique
// index makes detection idempotent.
type DuplicateCandidate struct {
	ID              uint        `gorm:"primarykey" json:"id"`
	SMEID1          uint        `gorm:"column:sme_id_1;not null;uniqueIndex:idx_duplicate_candidates_pair" json:"sme_id_1"`
	SMEID2          uint        `gorm:"column:sme_id_2;not null;uniqueIndex:idx_duplicate_candidates_pair" json:"sme_id_2"`
	SimilarityScore int         `gorm:"not null" json:"similarity_score"` // 0..100
	MatchReasons    StringArray `gorm:"type:json" json:"match_reasons"`
	Status          string      `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`

	// Review outcome
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes"`
	MergedIntoSMEID *uint      `json:"merged_into_sme_id,omitempty"` // master chosen on merge

	SME1 *MSME `gorm:"foreignKey:SMEID1" json:"sme_1,omitempty"`
	SME2 *MSME `gorm:"foreignKey:SMEID2" json:"sme_2,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DuplicateCandidate) TableName() string {
	return "duplicate_candidates"
}

// IsTerminal reports whether the candidate has been resolved
func (d *DuplicateCandidate) IsTerminal() bool {
	return d.Status != CandidatePending
}

// Involves reports whether the given MSME id is one of the pair
func (d *DuplicateCandidate) Involves(smeID uint) bool {
	return d.SMEID1 == smeID || d.SMEID2 == smeID
}

// ConfidenceBand returns the descriptive review band for a score.
// Banding never changes behaviour; it only guides reviewer attention.
func ConfidenceBand(score int) string {
	switch {
	case score >= 85:
		return "high"
	case score >= 70:
		return "medium"
	default:
		return "low"
	}
}
