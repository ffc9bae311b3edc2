package model

import "time"

// Program participation statuses
const (
	ParticipationEnrolled  = "enrolled"
	ParticipationCompleted = "completed"
	ParticipationDropped   = "dropped"
)

// ProgramParticipation records an MSME's enrollment in a support program
// (training, grants, mentoring)
type ProgramParticipation struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	SMEID       uint       `gorm:"not null;index" json:"sme_id"`
	ProgramName string     `gorm:"not null" json:"program_name"`
	ProgramType string     `gorm:"type:varchar(40)" json:"program_type"` // training, grant, mentoring, market_access
	Provider    string     `json:"provider"`
	Status      string     `gorm:"type:varchar(20);default:enrolled" json:"status"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	EnrolledBy  uint       `json:"enrolled_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProgramParticipation) TableName() string {
	return "program_participations"
}
