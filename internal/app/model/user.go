package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin             = "admin"
	RoleSMECOfficer       = "smec_officer"
	RoleProvincialOfficer = "provincial_officer"
	RoleReadonly          = "readonly"
)

// User is an administrative account on the registry
type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Email        string `gorm:"uniqueIndex:idx_users_email;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `json:"full_name"`
	Role         string `gorm:"type:varchar(30);not null;default:readonly" json:"role"`

	// Provincial officers only see their own province
	ProvinceID *string `gorm:"type:varchar(60)" json:"province_id,omitempty"`

	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
