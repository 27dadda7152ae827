package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/jwt"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
)

// Service aggregates every service.
type Service struct {
	Auth        AuthService
	Audit       AuditService
	Teacher     TeacherService
	Import      ImportService
	Stats       StatsService
	Certificate CertificateService
	Export      ExportService
}

// Actor identifies the administrator behind a write.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// idPtr returns the actor id for the created_by/updated_by columns, nil for
// system actors without an account.
func (a Actor) idPtr() *string {
	if a.ID == "" {
		return nil
	}
	id := a.ID
	return &id
}

// SystemActor is used by the command line tools.
var SystemActor = Actor{Email: "system@cli"}

// Cache is the JSON cache used for dashboard figures. *redis.Client
// implements it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenBlacklist revokes access tokens. *redis.Client implements it.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Deps optional collaborators. Nil Cache and Blacklist disable caching and
// token revocation.
type Deps struct {
	Cache     Cache
	Blacklist TokenBlacklist
	Metrics   *metrics.Metrics
}

// NewService builds the aggregate.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}

	audit := NewAuditService(repo, logger)
	calc := newRetirementEvaluator(deps.Metrics, logger)
	stats := NewStatsService(cfg, repo, deps.Cache, deps.Metrics, logger)

	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, deps.Blacklist, audit, logger),
		Audit:       audit,
		Teacher:     NewTeacherService(repo, calc, audit, stats, logger),
		Import:      NewImportService(cfg, repo, calc, audit, stats, deps.Metrics, logger),
		Stats:       stats,
		Certificate: NewCertificateService(cfg, repo, calc, deps.Metrics, logger),
		Export:      NewExportService(repo, logger),
	}
}
