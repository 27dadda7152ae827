package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
)

// DefaultAuditPage journal size shown when no page size is given.
const DefaultAuditPage = 100

// AuditService administrative journal.
type AuditService interface {
	// Record appends an entry. Failures are logged, never returned: a lost
	// journal line must not undo the write it describes.
	Record(ctx context.Context, actor Actor, action, matricule, details string)
	List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, actor Actor, action, matricule, details string) {
	entry := &model.AuditLog{
		ActorEmail: actor.Email,
		Action:     action,
		Matricule:  matricule,
		Details:    details,
	}
	if err := s.repo.AuditLog.Create(ctx, entry); err != nil {
		s.logger.Warn("audit entry lost",
			zap.String("action", action),
			zap.String("matricule", matricule),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, req *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	limit := req.PageSize
	if limit <= 0 {
		limit = DefaultAuditPage
	}
	offset := (req.GetPage() - 1) * limit

	entries, total, err := s.repo.AuditLog.List(ctx, repository.AuditLogFilter{
		Action:    req.Action,
		Matricule: req.Matricule,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		s.logger.Error("list audit logs failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, dto.AuditLogResponse{
			ID:         e.AuditLogID,
			ActorEmail: e.ActorEmail,
			Action:     e.Action,
			Matricule:  e.Matricule,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return result, total, nil
}

func (s *auditService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.repo.AuditLog.CountSince(ctx, since)
}
