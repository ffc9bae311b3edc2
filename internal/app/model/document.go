package model

import "time"

// Document types accepted by the registry
const (
	DocTypeBusinessRegistration = "business_registration"
	DocTypeTINCertificate       = "tin_certificate"
	DocTypeBankStatement        = "bank_statement"
	DocTypeOwnerID              = "owner_id"
	DocTypePhoto                = "photo"
)

// Document is a supporting file attached to an MSME record, stored in S3
type Document struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	SMEID        uint   `gorm:"not null;index" json:"sme_id"`
	DocumentType string `gorm:"type:varchar(40);not null" json:"document_type"`
	FileName     string `gorm:"not null" json:"file_name"`
	ObjectKey    string `gorm:"not null" json:"object_key"` // S3 key
	ContentType  string `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
	Verified     bool   `gorm:"default:false" json:"verified"`
	UploadedBy   uint   `json:"uploaded_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
