package model

import (
	"time"

	"gorm.io/gorm"
)

// Audit actions.
const (
	AuditCreate       = "CREATE"
	AuditUpdate       = "UPDATE"
	AuditArchive      = "ARCHIVE"
	AuditRestore      = "RESTORE"
	AuditDelete       = "DELETE"
	AuditImport       = "IMPORT"
	AuditRecompute    = "RECOMPUTE"
	AuditInferGenders = "FIX_GENDERS"
	AuditCreateAdmin  = "CREATE_ADMIN"
	AuditLogin        = "LOGIN"
)

// AuditLog append-only journal of administrative actions — table audit_logs.
type AuditLog struct {
	AuditLogID string    `gorm:"type:uuid;primaryKey"                       json:"audit_log_id"`
	ActorEmail string    `gorm:"type:varchar(255);not null"                 json:"actor_email"`
	Action     string    `gorm:"type:varchar(20);not null"                  json:"action"`
	Matricule  string    `gorm:"type:varchar(30);not null;default:''"       json:"matricule"`
	Details    string    `gorm:"type:text;not null;default:''"              json:"details"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"   json:"created_at"`
}

// TableName table name.
func (AuditLog) TableName() string { return "audit_logs" }

// BeforeCreate assigns the primary key.
func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	newID(&l.AuditLogID)
	return nil
}
