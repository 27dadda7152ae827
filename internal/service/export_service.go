package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
)

// ── export errors ──

var (
	ErrExportInvalidRange = errors.New("période invalide : la date de fin précède la date de début")
	ErrExportGenerateFail = errors.New("échec de génération du fichier")
)

const calendarProductID = "-//DDESTFP Collines//Gestion du personnel//FR"

// ExportService directory and calendar exports.
type ExportService interface {
	ExportDirectory(ctx context.Context, req *dto.TeacherListRequest) (*Document, error)
	RetirementCalendar(ctx context.Context, from, to time.Time) (*Document, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── ExportDirectory ──────────────────────

var directoryColumns = []struct {
	title string
	width float64
}{
	{"Matricule", 14}, {"Nom", 20}, {"Prénoms", 24}, {"Sexe", 6},
	{"Date de naissance", 16}, {"Lieu de naissance", 18}, {"Grade", 8}, {"Catégorie", 10},
	{"Corps", 12}, {"Discipline", 18}, {"Établissement", 30}, {"Fonction", 18},
	{"Commune", 16}, {"Statut", 12}, {"Téléphone", 14}, {"Date de prise de service", 18},
	{"Date de retraite", 16}, {"CEG", 6}, {"Archivé", 8},
}

// ExportDirectory writes the filtered directory, every page, to a workbook.
func (s *exportService) ExportDirectory(ctx context.Context, req *dto.TeacherListRequest) (*Document, error) {
	teachers, _, err := s.repo.Teacher.List(ctx, repository.TeacherFilter{
		Search:          req.Search,
		Category:        req.Category,
		IncludeArchived: req.IncludeArchived,
		College:         req.College,
	})
	if err != nil {
		s.logger.Error("list teachers for export failed", zap.Error(err))
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Personnel"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#008751"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	dateFmt := "dd/mm/yyyy"
	dateStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})

	for i, c := range directoryColumns {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, c.width)
		f.SetCellValue(sheetName, cell(col, 1), c.title)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(directoryColumns)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	retireCol := colName(16)
	for i, t := range teachers {
		row := i + 2
		values := []interface{}{
			t.Matricule, t.Nom, t.Prenoms, t.Sexe,
			displayDate(t.DateNaissance), t.LieuNaissance, t.Grade, retirement.Letter(t.Grade),
			t.Corps, t.Discipline, t.Etablissement, t.Fonction,
			t.Commune, t.Statut, t.Telephone, displayDate(t.DatePriseService),
			nil, yesNo(t.IsCollege), yesNo(t.IsArchived),
		}
		for j, v := range values {
			if v == nil {
				continue
			}
			f.SetCellValue(sheetName, cell(colName(j), row), v)
		}
		if t.DateRetraite != nil {
			d := *t.DateRetraite
			f.SetCellValue(sheetName, cell(retireCol, row), time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
			f.SetCellStyle(sheetName, cell(retireCol, row), cell(retireCol, row), dateStyle)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &Document{
		Filename:    fmt.Sprintf("personnel_%s.xlsx", s.now().Format("20060102")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        buf.Bytes(),
	}, nil
}

func yesNo(b bool) string {
	if b {
		return "Oui"
	}
	return "Non"
}

// ────────────────────── RetirementCalendar ──────────────────────

// RetirementCalendar publishes one all-day event per active teacher whose
// retirement date falls within [from, to].
func (s *exportService) RetirementCalendar(ctx context.Context, from, to time.Time) (*Document, error) {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return nil, ErrExportInvalidRange
	}

	teachers, err := s.repo.Teacher.ListRetiringBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("list retirements failed", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Départs à la retraite")

	stamp := s.now().UTC()
	for _, t := range teachers {
		if t.DateRetraite == nil {
			continue
		}
		d := *t.DateRetraite
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

		event := cal.AddEvent(fmt.Sprintf("retraite-%s@gestion-personnel", t.TeacherID))
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("Retraite : %s %s", t.Nom, t.Prenoms))
		event.SetDescription(calendarDescription(&t))
		if t.Etablissement != "" {
			event.SetLocation(t.Etablissement)
		}
	}

	return &Document{
		Filename:    fmt.Sprintf("retraites_%s_%s.ics", from.Format("20060102"), to.Format("20060102")),
		ContentType: "text/calendar; charset=utf-8",
		Body:        []byte(cal.Serialize()),
	}, nil
}

func calendarDescription(t *model.Teacher) string {
	return fmt.Sprintf("Matricule %s, grade %s (catégorie %s), %s",
		t.Matricule, orDots(t.Grade), retirement.Letter(t.Grade), orDots(t.Etablissement))
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
