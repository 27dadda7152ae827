package model

import (
	"time"

	"gorm.io/gorm"
)

// Admin roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Admin back-office account — table admins.
type Admin struct {
	AdminID      string     `gorm:"type:uuid;primaryKey"                      json:"admin_id"`
	Email        string     `gorm:"type:varchar(255);not null"                json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'admin'" json:"role"`
	LastLoginAt  *time.Time `                                                 json:"last_login_at,omitempty"`
	SoftDeleteModel
}

// TableName table name.
func (Admin) TableName() string { return "admins" }

// BeforeCreate assigns the primary key.
func (a *Admin) BeforeCreate(*gorm.DB) error {
	newID(&a.AdminID)
	return nil
}
