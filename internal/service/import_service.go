package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
)

// ── import errors ──

var (
	ErrImportNoData      = errors.New("le fichier ne contient aucune ligne de données (la première ligne est l'en-tête)")
	ErrImportTooManyRows = errors.New("le fichier dépasse le nombre maximal de lignes")
	ErrImportBadHeader   = errors.New("colonnes obligatoires absentes de l'en-tête (MATRICULE, NOM)")
	ErrImportBadFile     = errors.New("fichier Excel illisible")
)

// ImportService spreadsheet import of personnel records.
type ImportService interface {
	ParseImportFile(reader io.Reader) ([]dto.ImportRow, error)
	Import(ctx context.Context, rows []dto.ImportRow, actor Actor) (*dto.ImportResponse, error)
	ImportFile(ctx context.Context, path string, actor Actor) (*dto.ImportResponse, error)
}

type importService struct {
	cfg     *config.Config
	repo    *repository.Repository
	calc    *retirementEvaluator
	audit   AuditService
	stats   statsInvalidator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewImportService creates an ImportService.
func NewImportService(
	cfg *config.Config,
	repo *repository.Repository,
	calc *retirementEvaluator,
	audit AuditService,
	stats statsInvalidator,
	m *metrics.Metrics,
	logger *zap.Logger,
) ImportService {
	return &importService{
		cfg:     cfg,
		repo:    repo,
		calc:    calc,
		audit:   audit,
		stats:   stats,
		metrics: m,
		logger:  logger,
	}
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile reads the first sheet. Cells are read raw so date cells
// keep their spreadsheet serial.
func (s *importService) ParseImportFile(reader io.Reader) ([]dto.ImportRow, error) {
	f, err := excelize.OpenReader(reader, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex[colMatricule] < 0 || colIndex[colNom] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []dto.ImportRow
	for i := 1; i < len(excelRows); i++ {
		cells := excelRows[i]
		get := func(col string) string {
			idx := colIndex[col]
			if idx < 0 || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}

		item := dto.ImportRow{
			Row:              i + 1,
			Matricule:        get(colMatricule),
			Nom:              get(colNom),
			Prenoms:          get(colPrenoms),
			Sexe:             get(colSexe),
			DateNaissance:    dateCell(get(colDateNaissance)),
			LieuNaissance:    get(colLieuNaissance),
			Grade:            get(colGrade),
			Corps:            get(colCorps),
			Discipline:       get(colDiscipline),
			Etablissement:    get(colEtablissement),
			Fonction:         get(colFonction),
			Commune:          get(colCommune),
			Statut:           get(colStatut),
			Telephone:        get(colTelephone),
			DatePriseService: dateCell(get(colDatePriseService)),
		}

		if isBlankRow(cells) {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > s.cfg.Import.MaxRows {
		return nil, fmt.Errorf("%w (%d > %d)", ErrImportTooManyRows, len(rows), s.cfg.Import.MaxRows)
	}

	return rows, nil
}

// Whole numbers in this range are a bare birth or hiring year.
const (
	minYearCell = 1900
	maxYearCell = 2100
)

// dateCell rewrites a numeric date cell as YYYY-MM-DD so the stored text
// reads the same way on every later recompute. A zero cell is empty.
func dateCell(raw string) string {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if f == 0 {
		return ""
	}
	if f == math.Trunc(f) && f >= minYearCell && f <= maxYearCell {
		return raw
	}
	d, err := retirement.SerialDate(f).Date()
	if err != nil {
		return raw
	}
	return d.Format(retirement.DateLayout)
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ── header mapping ──

const (
	colMatricule        = "matricule"
	colNom              = "nom"
	colPrenoms          = "prenoms"
	colSexe             = "sexe"
	colDateNaissance    = "date_naissance"
	colLieuNaissance    = "lieu_naissance"
	colGrade            = "grade"
	colCorps            = "corps"
	colDiscipline       = "discipline"
	colEtablissement    = "etablissement"
	colFonction         = "fonction"
	colCommune          = "commune"
	colStatut           = "statut"
	colTelephone        = "telephone"
	colDatePriseService = "date_prise_service"
)

// headerAliases normalized header text -> column.
var headerAliases = map[string]string{
	"MATRICULE":                colMatricule,
	"N MATRICULE":              colMatricule,
	"NUMERO MATRICULE":         colMatricule,
	"NOM":                      colNom,
	"NOMS":                     colNom,
	"PRENOMS":                  colPrenoms,
	"PRENOM":                   colPrenoms,
	"SEXE":                     colSexe,
	"GENRE":                    colSexe,
	"DATE DE NAISSANCE":        colDateNaissance,
	"DATE NAISSANCE":           colDateNaissance,
	"NE LE":                    colDateNaissance,
	"LIEU DE NAISSANCE":        colLieuNaissance,
	"LIEU NAISSANCE":           colLieuNaissance,
	"GRADE":                    colGrade,
	"CORPS":                    colCorps,
	"DISCIPLINE":               colDiscipline,
	"ETABLISSEMENT":            colEtablissement,
	"ETABLISSEMENT D ATTACHE":  colEtablissement,
	"POSTE":                    colEtablissement,
	"FONCTION":                 colFonction,
	"COMMUNE":                  colCommune,
	"STATUT":                   colStatut,
	"TELEPHONE":                colTelephone,
	"TEL":                      colTelephone,
	"CONTACT":                  colTelephone,
	"DATE DE PRISE DE SERVICE": colDatePriseService,
	"DATE PRISE DE SERVICE":    colDatePriseService,
	"DATE PRISE SERVICE":       colDatePriseService,
	"DPS":                      colDatePriseService,
}

var headerPunctuation = strings.NewReplacer("_", " ", "'", " ", "’", " ", "°", " ", ".", " ", ":", " ")

// normalizeHeader uppercases, removes accents and punctuation and collapses
// spaces: "Date de naissance" and "DATE_NAISSANCE" both match.
func normalizeHeader(h string) string {
	h = accentFolder.Replace(strings.ToUpper(h))
	h = headerPunctuation.Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// parseHeaderIndex maps each column to its index, -1 when absent. The first
// matching header wins.
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{}
	for _, col := range headerAliases {
		idx[col] = -1
	}
	for i, h := range header {
		col, ok := headerAliases[normalizeHeader(h)]
		if ok && idx[col] < 0 {
			idx[col] = i
		}
	}
	return idx
}

// ────────────────────── Import ──────────────────────

// Import upserts rows by matricule in one transaction. Invalid rows are
// reported and skipped; a database error rolls every write back.
func (s *importService) Import(ctx context.Context, rows []dto.ImportRow, actor Actor) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{Total: len(rows)}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			if row.Matricule == "" {
				resp.Failed++
				resp.Errors = append(resp.Errors, dto.ImportError{Row: row.Row, Reason: "matricule manquant"})
				continue
			}
			if row.Nom == "" {
				resp.Failed++
				resp.Errors = append(resp.Errors, dto.ImportError{Row: row.Row, Matricule: row.Matricule, Reason: "nom manquant"})
				continue
			}

			existing, err := tx.Teacher.GetByMatricule(ctx, row.Matricule)
			switch {
			case err == nil:
				applyImportRow(existing, row)
				existing.UpdatedBy = actor.idPtr()
				s.calc.apply(existing)
				if err := tx.Teacher.Update(ctx, existing); err != nil {
					return fmt.Errorf("row %d (%s): %w", row.Row, row.Matricule, err)
				}
				resp.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				teacher := &model.Teacher{Matricule: row.Matricule}
				applyImportRow(teacher, row)
				teacher.CreatedBy = actor.idPtr()
				teacher.UpdatedBy = actor.idPtr()
				s.calc.apply(teacher)
				if err := tx.Teacher.Create(ctx, teacher); err != nil {
					return fmt.Errorf("row %d (%s): %w", row.Row, row.Matricule, err)
				}
				resp.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("import failed, rolled back", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, err
	}

	s.metrics.AddImportRows("created", resp.Created)
	s.metrics.AddImportRows("updated", resp.Updated)
	s.metrics.AddImportRows("failed", resp.Failed)
	s.logger.Info("import finished",
		zap.Int("total", resp.Total),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("failed", resp.Failed),
	)
	s.audit.Record(ctx, actor, model.AuditImport, "",
		fmt.Sprintf("%d lignes : %d créées, %d mises à jour, %d rejetées", resp.Total, resp.Created, resp.Updated, resp.Failed))
	s.stats.Invalidate(ctx)

	return resp, nil
}

// applyImportRow copies a spreadsheet row over a record. Empty optional
// cells keep the stored value.
func applyImportRow(t *model.Teacher, row dto.ImportRow) {
	t.Nom = row.Nom
	if row.Sexe != "" || t.Sexe == "" {
		t.Sexe = importSexe(row.Sexe)
	}
	setIfPresent(&t.Prenoms, row.Prenoms)
	setIfPresent(&t.DateNaissance, row.DateNaissance)
	setIfPresent(&t.LieuNaissance, row.LieuNaissance)
	setIfPresent(&t.Grade, row.Grade)
	setIfPresent(&t.Corps, row.Corps)
	setIfPresent(&t.Discipline, row.Discipline)
	setIfPresent(&t.Etablissement, row.Etablissement)
	setIfPresent(&t.Fonction, row.Fonction)
	setIfPresent(&t.Commune, row.Commune)
	setIfPresent(&t.Statut, row.Statut)
	setIfPresent(&t.Telephone, row.Telephone)
	setIfPresent(&t.DatePriseService, row.DatePriseService)
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// importSexe reads F, FEMININ, FEMME (any case, accents ignored) as female.
func importSexe(v string) string {
	switch accentFolder.Replace(strings.ToUpper(strings.TrimSpace(v))) {
	case "F", "FEMININ", "FEMME":
		return model.SexeFemale
	default:
		return model.SexeMale
	}
}

// ────────────────────── ImportFile ──────────────────────

// ImportFile imports a spreadsheet from the local disk.
func (s *importService) ImportFile(ctx context.Context, path string, actor Actor) (*dto.ImportResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := s.ParseImportFile(f)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, rows, actor)
}
