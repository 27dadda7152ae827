package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	pkgerrors "github.com/NarcisseDedome/gestionpersonnel/pkg/errors"
)

// TeacherFilter directory query. Limit <= 0 means no paging.
type TeacherFilter struct {
	Search          string
	Category        string // grade letter; "" or "ALL" for every category
	IncludeArchived bool
	College         *bool
	Offset          int
	Limit           int
}

// TeacherRepository teacher record data access.
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByMatricule(ctx context.Context, matricule string) (*model.Teacher, error)
	List(ctx context.Context, filter TeacherFilter) ([]model.Teacher, int64, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	UpdateDerived(ctx context.Context, id string, dateRetraite *time.Time, isCollege bool) error
	SetArchived(ctx context.Context, id string, archived bool, actorID *string) error
	SetSexe(ctx context.Context, ids []string, sexe string, actorID *string) (int64, error)
	Delete(ctx context.Context, id string, actorID *string) error

	// ── dashboard aggregates (active records only) ──
	CountActive(ctx context.Context) (int64, error)
	CountByGradeLetter(ctx context.Context) (map[string]int64, error)
	CountBySexe(ctx context.Context) (map[string]int64, error)
	CountColleges(ctx context.Context) (int64, error)
	CountIncomplete(ctx context.Context) (int64, error)
	ListRetiringBetween(ctx context.Context, from, to time.Time) ([]model.Teacher, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo creates a TeacherRepository.
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	err := r.db.WithContext(ctx).Create(teacher).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicate
	}
	return err
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByMatricule(ctx context.Context, matricule string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("matricule = ?", matricule).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(ctx context.Context, filter TeacherFilter) ([]model.Teacher, int64, error) {
	var teachers []model.Teacher
	var total int64

	db := applyTeacherFilter(r.db.WithContext(ctx).Model(&model.Teacher{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("nom ASC").Order("prenoms ASC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&teachers).Error; err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

func applyTeacherFilter(db *gorm.DB, filter TeacherFilter) *gorm.DB {
	if !filter.IncludeArchived {
		db = db.Where("is_archived = ?", false)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where(
			"LOWER(nom) LIKE ? OR LOWER(prenoms) LIKE ? OR LOWER(matricule) LIKE ? OR LOWER(etablissement) LIKE ?",
			like, like, like, like,
		)
	}
	if c := strings.ToUpper(strings.TrimSpace(filter.Category)); c != "" && c != "ALL" {
		db = db.Where("UPPER(grade) LIKE ?", c+"%")
	}
	if filter.College != nil {
		db = db.Where("is_college = ?", *filter.College)
	}
	return db
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	oldVersion := teacher.Version
	result := r.db.WithContext(ctx).
		Model(teacher).
		Where("teacher_id = ? AND version = ?", teacher.TeacherID, oldVersion).
		Updates(map[string]interface{}{
			"matricule":          teacher.Matricule,
			"nom":                teacher.Nom,
			"prenoms":            teacher.Prenoms,
			"sexe":               teacher.Sexe,
			"date_naissance":     teacher.DateNaissance,
			"lieu_naissance":     teacher.LieuNaissance,
			"grade":              teacher.Grade,
			"corps":              teacher.Corps,
			"discipline":         teacher.Discipline,
			"etablissement":      teacher.Etablissement,
			"fonction":           teacher.Fonction,
			"commune":            teacher.Commune,
			"statut":             teacher.Statut,
			"telephone":          teacher.Telephone,
			"date_prise_service": teacher.DatePriseService,
			"date_retraite":      teacher.DateRetraite,
			"is_college":         teacher.IsCollege,
			"is_archived":        teacher.IsArchived,
			"updated_by":         teacher.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrDuplicate
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	teacher.Version = oldVersion + 1
	return nil
}

// UpdateDerived rewrites the computed columns without an optimistic lock
// check. Bulk recomputation must not fail on concurrent edits of other
// fields.
func (r *teacherRepo) UpdateDerived(ctx context.Context, id string, dateRetraite *time.Time, isCollege bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("teacher_id = ?", id).
		Updates(map[string]interface{}{
			"date_retraite": dateRetraite,
			"is_college":    isCollege,
			"version":       gorm.Expr("version + 1"),
		}).Error
}

func (r *teacherRepo) SetArchived(ctx context.Context, id string, archived bool, actorID *string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("teacher_id = ?", id).
		Updates(map[string]interface{}{
			"is_archived": archived,
			"updated_by":  actorID,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teacherRepo) SetSexe(ctx context.Context, ids []string, sexe string, actorID *string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Teacher{}).
		Where("teacher_id IN ?", ids).
		Updates(map[string]interface{}{
			"sexe":       sexe,
			"updated_by": actorID,
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

func (r *teacherRepo) Delete(ctx context.Context, id string, actorID *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Teacher{}).
			Where("teacher_id = ?", id).
			Update("deleted_by", actorID).Error; err != nil {
			return err
		}
		result := tx.Where("teacher_id = ?", id).Delete(&model.Teacher{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ── dashboard aggregates ──

func (r *teacherRepo) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Teacher{}).Where("is_archived = ?", false)
}

func (r *teacherRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.active(ctx).Count(&n).Error
	return n, err
}

type groupCount struct {
	Bucket string
	Total  int64
}

func (r *teacherRepo) CountByGradeLetter(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	err := r.active(ctx).
		Select("UPPER(SUBSTR(grade, 1, 1)) AS bucket, COUNT(*) AS total").
		Group("UPPER(SUBSTR(grade, 1, 1))").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func (r *teacherRepo) CountBySexe(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	err := r.active(ctx).
		Select("sexe AS bucket, COUNT(*) AS total").
		Group("sexe").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func toCountMap(rows []groupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[strings.TrimSpace(row.Bucket)] += row.Total
	}
	return out
}

func (r *teacherRepo) CountColleges(ctx context.Context) (int64, error) {
	var n int64
	err := r.active(ctx).Where("is_college = ?", true).Count(&n).Error
	return n, err
}

// CountIncomplete counts records missing a field the retirement workflow
// depends on, or whose retirement date could not be determined.
func (r *teacherRepo) CountIncomplete(ctx context.Context) (int64, error) {
	var n int64
	err := r.active(ctx).
		Where("date_naissance = '' OR matricule = '' OR etablissement = '' OR date_retraite IS NULL").
		Count(&n).Error
	return n, err
}

func (r *teacherRepo) ListRetiringBetween(ctx context.Context, from, to time.Time) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.active(ctx).
		Where("date_retraite >= ? AND date_retraite <= ?", from, to).
		Order("date_retraite ASC").Order("nom ASC").
		Find(&teachers).Error
	return teachers, err
}
