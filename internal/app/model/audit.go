package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions. One entry is written per observable mutation.
const (
	AuditCreated         = "created"
	AuditUpdated         = "updated"
	AuditStatusChanged   = "status_changed"
	AuditDocumentAdded   = "document_added"
	AuditVerified        = "verified"
	AuditProgramEnrolled = "program_enrolled"
	AuditMerged          = "merged"
)

// AuditLogEntry is an append-only record of a change to an MSME record.
// Rows are never updated or deleted; ordering is by timestamp with the
// autoincrement id as the insertion-sequence tie-break.
type AuditLogEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	SMEID     uint      `gorm:"not null;index" json:"sme_id"`
	Action    string    `gorm:"type:varchar(30);not null" json:"action"`
	Field     string    `json:"field,omitempty"`
	OldValue  string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  string    `gorm:"type:text" json:"new_value,omitempty"`
	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// MergeAuditEntry preserves the merged record's full pre-merge state so a
// merge can be audited (and manually reconstructed) after the fact
type MergeAuditEntry struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	MasterSMEID   uint           `gorm:"not null;index" json:"master_sme_id"`
	MergedSMEID   uint           `gorm:"not null;index" json:"merged_sme_id"`
	MergedSMEData datatypes.JSON `gorm:"not null" json:"merged_sme_data"` // full pre-merge snapshot
	MergeReason   string         `gorm:"type:text" json:"merge_reason"`
	MergedBy      uint           `gorm:"not null" json:"merged_by"`
	MergedAt      time.Time      `gorm:"not null" json:"merged_at"`
}

func (MergeAuditEntry) TableName() string {
	return "merge_audit_log"
}
