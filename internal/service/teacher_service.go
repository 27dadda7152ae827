package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	pkgerrors "github.com/NarcisseDedome/gestionpersonnel/pkg/errors"
)

// ── teacher records errors ──

var (
	ErrTeacherNotFound   = errors.New("enseignant introuvable")
	ErrMatriculeExists   = errors.New("ce matricule existe déjà")
	ErrMatriculeRequired = errors.New("le matricule est obligatoire")
	ErrNomRequired       = errors.New("le nom est obligatoire")
)

// TeacherService teacher records use cases.
type TeacherService interface {
	Create(ctx context.Context, req *dto.CreateTeacherRequest, actor Actor) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, actor Actor) (*dto.TeacherResponse, error)
	Archive(ctx context.Context, id string, archived bool, actor Actor) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, id string, actor Actor) error
	RecomputeRetirement(ctx context.Context, actor Actor) (*dto.RecomputeResponse, error)
	InferGenders(ctx context.Context, actor Actor) (*dto.InferGendersResponse, error)
	PreviewRetirement(req *dto.RetirementPreviewRequest) *dto.RetirementPreviewResponse
}

// statsInvalidator drops cached dashboard figures after a write.
type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

type teacherService struct {
	repo   *repository.Repository
	calc   *retirementEvaluator
	audit  AuditService
	stats  statsInvalidator
	logger *zap.Logger
}

// NewTeacherService creates a TeacherService.
func NewTeacherService(
	repo *repository.Repository,
	calc *retirementEvaluator,
	audit AuditService,
	stats statsInvalidator,
	logger *zap.Logger,
) TeacherService {
	return &teacherService{
		repo:   repo,
		calc:   calc,
		audit:  audit,
		stats:  stats,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest, actor Actor) (*dto.TeacherResponse, error) {
	matricule := strings.TrimSpace(req.Matricule)
	if matricule == "" {
		return nil, ErrMatriculeRequired
	}
	if strings.TrimSpace(req.Nom) == "" {
		return nil, ErrNomRequired
	}

	if _, err := s.repo.Teacher.GetByMatricule(ctx, matricule); err == nil {
		return nil, ErrMatriculeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	teacher := &model.Teacher{
		Matricule:        matricule,
		Nom:              strings.TrimSpace(req.Nom),
		Prenoms:          strings.TrimSpace(req.Prenoms),
		Sexe:             normalizeSexe(req.Sexe),
		DateNaissance:    strings.TrimSpace(req.DateNaissance),
		LieuNaissance:    strings.TrimSpace(req.LieuNaissance),
		Grade:            strings.TrimSpace(req.Grade),
		Corps:            strings.TrimSpace(req.Corps),
		Discipline:       strings.TrimSpace(req.Discipline),
		Etablissement:    strings.TrimSpace(req.Etablissement),
		Fonction:         strings.TrimSpace(req.Fonction),
		Commune:          strings.TrimSpace(req.Commune),
		Statut:           strings.TrimSpace(req.Statut),
		Telephone:        strings.TrimSpace(req.Telephone),
		DatePriseService: strings.TrimSpace(req.DatePriseService),
	}
	teacher.CreatedBy = actor.idPtr()
	teacher.UpdatedBy = actor.idPtr()
	s.calc.apply(teacher)

	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrMatriculeExists
		}
		s.logger.Error("create teacher failed", zap.String("matricule", matricule), zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actor, model.AuditCreate, teacher.Matricule, teacher.Nom+" "+teacher.Prenoms)
	s.stats.Invalidate(ctx)

	return toTeacherResponse(teacher), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTeacherResponse(teacher), nil
}

func (s *teacherService) load(ctx context.Context, id string) (*model.Teacher, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("load teacher failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return teacher, nil
}

// ────────────────────── List ──────────────────────

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, repository.TeacherFilter{
		Search:          req.Search,
		Category:        req.Category,
		IncludeArchived: req.IncludeArchived,
		College:         req.College,
		Offset:          req.GetOffset(),
		Limit:           req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("list teachers failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		result = append(result, *toTeacherResponse(&teachers[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, actor Actor) (*dto.TeacherResponse, error) {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != teacher.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Matricule != nil {
		matricule := strings.TrimSpace(*req.Matricule)
		if matricule == "" {
			return nil, ErrMatriculeRequired
		}
		if matricule != teacher.Matricule {
			existing, err := s.repo.Teacher.GetByMatricule(ctx, matricule)
			if err == nil && existing.TeacherID != id {
				return nil, ErrMatriculeExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		teacher.Matricule = matricule
	}
	if req.Nom != nil {
		if strings.TrimSpace(*req.Nom) == "" {
			return nil, ErrNomRequired
		}
		teacher.Nom = strings.TrimSpace(*req.Nom)
	}
	if req.Sexe != nil {
		teacher.Sexe = normalizeSexe(*req.Sexe)
	}
	setTrimmed(&teacher.Prenoms, req.Prenoms)
	setTrimmed(&teacher.DateNaissance, req.DateNaissance)
	setTrimmed(&teacher.LieuNaissance, req.LieuNaissance)
	setTrimmed(&teacher.Grade, req.Grade)
	setTrimmed(&teacher.Corps, req.Corps)
	setTrimmed(&teacher.Discipline, req.Discipline)
	setTrimmed(&teacher.Etablissement, req.Etablissement)
	setTrimmed(&teacher.Fonction, req.Fonction)
	setTrimmed(&teacher.Commune, req.Commune)
	setTrimmed(&teacher.Statut, req.Statut)
	setTrimmed(&teacher.Telephone, req.Telephone)
	setTrimmed(&teacher.DatePriseService, req.DatePriseService)

	teacher.UpdatedBy = actor.idPtr()
	s.calc.apply(teacher)

	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrDuplicate):
			return nil, ErrMatriculeExists
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("update teacher failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actor, model.AuditUpdate, teacher.Matricule, "")
	s.stats.Invalidate(ctx)

	return toTeacherResponse(teacher), nil
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ────────────────────── Archive / Delete ──────────────────────

func (s *teacherService) Archive(ctx context.Context, id string, archived bool, actor Actor) (*dto.TeacherResponse, error) {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Teacher.SetArchived(ctx, id, archived, actor.idPtr()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("archive teacher failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	action := model.AuditArchive
	if !archived {
		action = model.AuditRestore
	}
	s.audit.Record(ctx, actor, action, teacher.Matricule, "")
	s.stats.Invalidate(ctx)

	return s.GetByID(ctx, id)
}

func (s *teacherService) Delete(ctx context.Context, id string, actor Actor) error {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Teacher.Delete(ctx, id, actor.idPtr()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		s.logger.Error("delete teacher failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.audit.Record(ctx, actor, model.AuditDelete, teacher.Matricule, teacher.Nom+" "+teacher.Prenoms)
	s.stats.Invalidate(ctx)
	return nil
}

// ────────────────────── RecomputeRetirement ──────────────────────

// RecomputeRetirement rewrites the derived columns of every record,
// archived ones included. Only changed rows are written.
func (s *teacherService) RecomputeRetirement(ctx context.Context, actor Actor) (*dto.RecomputeResponse, error) {
	teachers, _, err := s.repo.Teacher.List(ctx, repository.TeacherFilter{IncludeArchived: true})
	if err != nil {
		s.logger.Error("list teachers for recompute failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.RecomputeResponse{Total: len(teachers), ByReason: map[string]int{}}
	for i := range teachers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &teachers[i]
		res, changed := s.calc.apply(t)
		if res.Determined() {
			resp.Determined++
		} else {
			resp.Undetermined++
			resp.ByReason[res.Reason.String()]++
		}
		if !changed {
			continue
		}
		if err := s.repo.Teacher.UpdateDerived(ctx, t.TeacherID, t.DateRetraite, t.IsCollege); err != nil {
			s.logger.Error("update derived columns failed", zap.String("matricule", t.Matricule), zap.Error(err))
			return nil, err
		}
		resp.Changed++
	}

	s.logger.Info("retirement dates recomputed",
		zap.Int("total", resp.Total),
		zap.Int("changed", resp.Changed),
		zap.Int("undetermined", resp.Undetermined),
	)
	s.audit.Record(ctx, actor, model.AuditRecompute, "",
		fmt.Sprintf("%d fiches, %d modifiées, %d indéterminées", resp.Total, resp.Changed, resp.Undetermined))
	if resp.Changed > 0 {
		s.stats.Invalidate(ctx)
	}
	return resp, nil
}

// ────────────────────── InferGenders ──────────────────────

// InferGenders switches records stored as M to F when the given names are
// recognisably feminine.
func (s *teacherService) InferGenders(ctx context.Context, actor Actor) (*dto.InferGendersResponse, error) {
	teachers, _, err := s.repo.Teacher.List(ctx, repository.TeacherFilter{IncludeArchived: true})
	if err != nil {
		s.logger.Error("list teachers for gender inference failed", zap.Error(err))
		return nil, err
	}

	var ids, matricules []string
	for _, t := range teachers {
		if t.Sexe == model.SexeMale && looksFeminine(t.Prenoms) {
			ids = append(ids, t.TeacherID)
			matricules = append(matricules, t.Matricule)
		}
	}

	n, err := s.repo.Teacher.SetSexe(ctx, ids, model.SexeFemale, actor.idPtr())
	if err != nil {
		s.logger.Error("update genders failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("genders inferred", zap.Int64("corrected", n))
	if n > 0 {
		s.audit.Record(ctx, actor, model.AuditInferGenders, "", fmt.Sprintf("%d corrections", n))
		s.stats.Invalidate(ctx)
	}
	return &dto.InferGendersResponse{Corrected: int(n), Matricules: matricules}, nil
}

// ────────────────────── Preview ──────────────────────

func (s *teacherService) PreviewRetirement(req *dto.RetirementPreviewRequest) *dto.RetirementPreviewResponse {
	return s.calc.preview(req)
}

// ── helpers ──

func normalizeSexe(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), model.SexeFemale) {
		return model.SexeFemale
	}
	return model.SexeMale
}

// sameDate compares calendar dates, nil meaning undetermined.
func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return formatDate(a) == formatDate(b)
}

// formatDate renders a stored DATE as YYYY-MM-DD. Drivers return DATE
// columns at midnight UTC or in the session zone; the wall-clock date is
// the stored value either way.
func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(retirement.DateLayout)
}

func toTeacherResponse(t *model.Teacher) *dto.TeacherResponse {
	return &dto.TeacherResponse{
		ID:               t.TeacherID,
		Matricule:        t.Matricule,
		Nom:              t.Nom,
		Prenoms:          t.Prenoms,
		Sexe:             t.Sexe,
		DateNaissance:    t.DateNaissance,
		LieuNaissance:    t.LieuNaissance,
		Grade:            t.Grade,
		Category:         retirement.Letter(t.Grade),
		Corps:            t.Corps,
		Discipline:       t.Discipline,
		Etablissement:    t.Etablissement,
		Fonction:         t.Fonction,
		Commune:          t.Commune,
		Statut:           t.Statut,
		Telephone:        t.Telephone,
		DatePriseService: t.DatePriseService,
		DateRetraite:     formatDate(t.DateRetraite),
		IsCollege:        t.IsCollege,
		IsArchived:       t.IsArchived,
		Version:          t.Version,
		CreatedAt:        t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
