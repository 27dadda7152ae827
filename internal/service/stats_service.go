package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/redis"
)

const statsCacheKey = "stats:dashboard"

// dashboardCategories buckets shown on the dashboard, in order.
var dashboardCategories = []string{"A", "B", "C", "D"}

// StatsService dashboard figures.
type StatsService interface {
	Stats(ctx context.Context, now time.Time) (*dto.StatsResponse, error)
	Invalidate(ctx context.Context)
}

type statsService struct {
	cfg     *config.Config
	repo    *repository.Repository
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStatsService creates a StatsService. cache may be nil.
func NewStatsService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	m *metrics.Metrics,
	logger *zap.Logger,
) StatsService {
	return &statsService{cfg: cfg, repo: repo, cache: cache, metrics: m, logger: logger}
}

func (s *statsService) Stats(ctx context.Context, now time.Time) (*dto.StatsResponse, error) {
	if s.cache != nil {
		var cached dto.StatsResponse
		err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	start := time.Now()
	resp, err := s.compute(ctx, now)
	if err != nil {
		s.logger.Error("compute stats failed", zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveStats(start)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, resp, s.cfg.Redis.StatsTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *statsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (s *statsService) compute(ctx context.Context, now time.Time) (*dto.StatsResponse, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	alertEnd := today.AddDate(0, 0, s.cfg.Alerts.ImminentRetirementDays)

	var (
		total, colleges, incomplete, auditToday int64
		letters, sexes                          map[string]int64
		thisYear, imminent                      []model.Teacher
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.Teacher.CountActive(gctx)
		return
	})
	g.Go(func() (err error) {
		colleges, err = s.repo.Teacher.CountColleges(gctx)
		return
	})
	g.Go(func() (err error) {
		incomplete, err = s.repo.Teacher.CountIncomplete(gctx)
		return
	})
	g.Go(func() (err error) {
		letters, err = s.repo.Teacher.CountByGradeLetter(gctx)
		return
	})
	g.Go(func() (err error) {
		sexes, err = s.repo.Teacher.CountBySexe(gctx)
		return
	})
	g.Go(func() (err error) {
		thisYear, err = s.repo.Teacher.ListRetiringBetween(gctx, yearStart, yearEnd)
		return
	})
	g.Go(func() (err error) {
		imminent, err = s.repo.Teacher.ListRetiringBetween(gctx, today, alertEnd)
		return
	})
	g.Go(func() (err error) {
		auditToday, err = s.repo.AuditLog.CountSince(gctx, today)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.StatsResponse{
		Total:             int(total),
		Categories:        categoryBreakdown(letters, total),
		Genders:           dto.GenderStat{M: int(sexes[model.SexeMale]), F: int(sexes[model.SexeFemale])},
		Colleges:          int(colleges),
		RetiringThisYear:  len(thisYear),
		AuditEntriesToday: int(auditToday),
		Alerts: []dto.Alert{
			{Kind: dto.AlertImminentRetirement, Count: len(imminent)},
			{Kind: dto.AlertIncompleteRecord, Count: int(incomplete)},
		},
		UpcomingRetirements: make([]dto.UpcomingRetiree, 0, len(imminent)),
		GeneratedAt:         now.UTC().Format(time.RFC3339),
	}
	for _, t := range imminent {
		resp.UpcomingRetirements = append(resp.UpcomingRetirements, dto.UpcomingRetiree{
			ID:            t.TeacherID,
			Matricule:     t.Matricule,
			Nom:           t.Nom,
			Prenoms:       t.Prenoms,
			Etablissement: t.Etablissement,
			DateRetraite:  formatDate(t.DateRetraite),
		})
	}
	return resp, nil
}

// categoryBreakdown folds grade letters into the dashboard buckets. An
// empty grade counts as C, like everywhere else.
func categoryBreakdown(letters map[string]int64, total int64) []dto.CategoryStat {
	counts := make(map[string]int64, len(dashboardCategories))
	for letter, n := range letters {
		counts[retirement.Letter(letter)] += n
	}

	out := make([]dto.CategoryStat, 0, len(dashboardCategories))
	for _, c := range dashboardCategories {
		out = append(out, dto.CategoryStat{
			Category: c,
			Count:    int(counts[c]),
			Percent:  percent(counts[c], total),
		})
	}
	return out
}

// percent returns part/total as a percentage with one decimal place.
func percent(part, total int64) string {
	if total == 0 {
		return decimal.Zero.StringFixed(1)
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		StringFixed(1)
}
