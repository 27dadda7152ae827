package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every repository.
type Repository struct {
	db       *gorm.DB
	Teacher  TeacherRepository
	Admin    AdminRepository
	AuditLog AuditLogRepository
}

// NewRepository builds the aggregate on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		Teacher:  NewTeacherRepo(db),
		Admin:    NewAdminRepo(db),
		AuditLog: NewAuditLogRepo(db),
	}
}

// BeginTx starts a transaction. The caller commits or rolls back.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns an aggregate bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction runs fn inside one transaction, committed when fn returns nil.
// An aggregate assembled without a database (in-memory fakes) runs fn
// directly.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
