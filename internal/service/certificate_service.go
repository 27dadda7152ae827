package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
)

// Certificate kinds, also used as metric labels.
const (
	CertificateValidity = "validity"
	CertificatePresence = "presence"
)

// Document generated file ready to be streamed.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CertificateService official PDF certificates.
type CertificateService interface {
	ValidityOfService(ctx context.Context, id string) (*Document, error)
	PresenceAtPost(ctx context.Context, id string) (*Document, error)
}

type certificateService struct {
	office  config.OfficeConfig
	repo    *repository.Repository
	calc    *retirementEvaluator
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewCertificateService creates a CertificateService.
func NewCertificateService(
	cfg *config.Config,
	repo *repository.Repository,
	calc *retirementEvaluator,
	m *metrics.Metrics,
	logger *zap.Logger,
) CertificateService {
	return &certificateService{
		office:  cfg.Office,
		repo:    repo,
		calc:    calc,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── ValidityOfService ──────────────────────

func (s *certificateService) ValidityOfService(ctx context.Context, id string) (*Document, error) {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// the printed date is recomputed, never read from a possibly stale column
	res, _ := s.calc.apply(teacher)
	retirementDate := "..."
	if res.Determined() {
		retirementDate = frenchDate(res.Date)
	}

	g := genderOf(teacher.Sexe)
	body := fmt.Sprintf(
		"Je soussignée, Directrice Départementale des Enseignements Secondaire, Technique et de la Formation "+
			"Professionnelle des Collines, certifie que %s %s, %s le %s à %s ; Agent Contractuel de Droit Public "+
			"de l’Etat (ACDPE) ; Corps : %s ; Grade : %s ; Numéro Matricule : %s ; actuellement en service au %s "+
			"en qualité de %s ; est employé%s dans la Fonction Publique depuis le %s par référence premier contrat "+
			"et sera probablement %s à faire valoir ses droits à une pension de retraite le %s, date à laquelle "+
			"%s aura atteint la limite d’âge de %s ; conformément aux textes en vigueur.",
		g.civility, formatName(teacher.Nom, teacher.Prenoms), g.born,
		orDots(displayDate(teacher.DateNaissance)), orDots(teacher.LieuNaissance),
		orDots(teacher.Corps), orDots(teacher.Grade), orDots(teacher.Matricule), orDots(teacher.Etablissement),
		orDots(teacher.Fonction), g.agreement, orDots(displayDate(teacher.DatePriseService)),
		g.admitted, retirementDate, g.pronoun, ageInWords(retirement.CategoryOf(teacher.Grade).RetirementAge()),
	)

	doc, err := s.render("CERTIFICAT DE VALIDITE DE SERVICE", []string{
		body,
		"En foi de quoi, le présent Certificat lui est délivré pour servir et valoir ce que de droit.",
	})
	if err != nil {
		s.logger.Error("render validity certificate failed", zap.String("matricule", teacher.Matricule), zap.Error(err))
		return nil, err
	}

	s.metrics.IncrementCertificate(CertificateValidity)
	return &Document{
		Filename:    "certificat_validite_" + fileSafe(teacher.Matricule) + ".pdf",
		ContentType: "application/pdf",
		Body:        doc,
	}, nil
}

// ────────────────────── PresenceAtPost ──────────────────────

func (s *certificateService) PresenceAtPost(ctx context.Context, id string) (*Document, error) {
	teacher, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	g := genderOf(teacher.Sexe)
	echelle, echelon := gradeScale(teacher.Grade)
	corps := teacher.Corps
	if corps == "" {
		corps = "PA"
	}

	body := fmt.Sprintf(
		"Je soussignée, Directrice Départementale des Enseignements Secondaire, Technique et de la Formation "+
			"Professionnelle des Collines, Certifie que %s %s ; numéro matricule %s ; Agent Contractuel de Droit "+
			"Public de l’Etat (ACDPE) ; %s de Discipline %s ; de la Catégorie %s, échelle %s échelon %s ; muté%s "+
			"par Note de Service n°.................... du ..../..../.... à %s.",
		g.civility, formatName(teacher.Nom, teacher.Prenoms), orDots(teacher.Matricule),
		corps, orDots(teacher.Discipline), retirement.Letter(teacher.Grade), echelle, echelon, g.agreement,
		orDots(teacher.Etablissement),
	)
	presence := fmt.Sprintf("Est présent%s à son poste depuis le %s jusqu’à ce jour, en qualité de %s.",
		g.agreement, orDots(displayDate(teacher.DatePriseService)), orDots(teacher.Fonction))

	doc, err := s.render("CERTIFICAT DE PRESENCE AU POSTE", []string{
		body,
		presence,
		"En foi de quoi, le présent certificat lui est délivré pour servir et valoir ce que de droit.",
	})
	if err != nil {
		s.logger.Error("render presence certificate failed", zap.String("matricule", teacher.Matricule), zap.Error(err))
		return nil, err
	}

	s.metrics.IncrementCertificate(CertificatePresence)
	return &Document{
		Filename:    "presence_poste_" + fileSafe(teacher.Matricule) + ".pdf",
		ContentType: "application/pdf",
		Body:        doc,
	}, nil
}

func (s *certificateService) load(ctx context.Context, id string) (*model.Teacher, error) {
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

// ── layout ──

var (
	flagGreen  = [3]int{0x00, 0x87, 0x51}
	flagYellow = [3]int{0xFC, 0xD1, 0x16}
	flagRed    = [3]int{0xE8, 0x11, 0x2D}
)

const (
	pageWidth   = 595.28 // A4 in points
	marginLeft  = 50.0
	bodyWidth   = 495.0
	signatureX  = 300.0
	signatureW  = 250.0
	contactX    = 350.0
	contactW    = 210.0
	footerBarY  = 785.0
	footerBarW  = 70.0
	headerBarW  = 160.0
	headerTextX = 95.0
)

// render lays out one A4 page: letterhead, date line, title, paragraphs,
// signature and footer bar.
func (s *certificateService) render(title string, paragraphs []string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginLeft, 30, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	s.drawHeader(pdf, tr)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11.5)
	pdf.SetXY(230, 195)
	pdf.CellFormat(0, 14, tr(fmt.Sprintf("%s, le %s", s.office.City, frenchDate(s.now()))), "", 1, "L", false, 0, "")
	pdf.SetXY(marginLeft, 222)
	pdf.CellFormat(0, 14, tr(s.office.Reference), "", 1, "L", false, 0, "")

	pdf.SetXY(marginLeft, 260)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(bodyWidth, 20, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(bodyWidth, 16, "-*-*-*-*-*-*-*-", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(marginLeft, 310)
	for i, p := range paragraphs {
		if i > 0 {
			pdf.Ln(18)
		}
		pdf.SetX(marginLeft)
		pdf.MultiCell(bodyWidth, 17, tr(p), "", "J", false)
	}

	pdf.Ln(48)
	pdf.SetX(signatureX)
	pdf.SetFont("Helvetica", "B", 12)
	signatory := s.office.SignatoryName
	if signatory == "" {
		signatory = "La Directrice Départementale"
	}
	pdf.CellFormat(signatureW, 15, tr(signatory), "", 1, "C", false, 0, "")
	pdf.SetX(signatureX)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(signatureW, 12, tr(s.office.SignatoryTitle), "", "C", false)

	drawTricolour(pdf, (pageWidth-3*footerBarW)/2, footerBarY, footerBarW, 5)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *certificateService) drawHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	if _, err := os.Stat(s.office.LogoPath); err == nil {
		pdf.ImageOptions(s.office.LogoPath, 45, 30, 0, 45, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	} else {
		s.logger.Debug("letterhead logo missing, drawing placeholder", zap.String("path", s.office.LogoPath))
		pdf.SetDrawColor(0, 0, 0)
		pdf.Rect(45, 30, 45, 45, "D")
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.Text(headerTextX, 42, tr("MINISTÈRE DES ENSEIGNEMENTS"))
	pdf.Text(headerTextX, 53, tr("SECONDAIRE, TECHNIQUE ET DE LA"))
	pdf.Text(headerTextX, 64, tr("FORMATION PROFESSIONNELLE"))

	drawTricolour(pdf, headerTextX, 70, headerBarW/3, 2.5)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(headerTextX, 88, tr("RÉPUBLIQUE DU BÉNIN"))

	contact := func(y float64, text string) {
		pdf.SetXY(contactX, y)
		pdf.CellFormat(contactW, 9, tr(text), "", 0, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7.5)
	contact(35, "Route de l'aéroport")
	contact(45, "BP : 10 BP 250 Cotonou")
	contact(55, "Tél : (229) 21 32 38 43 ; Fax : 21 32 41 88")
	contact(65, "Web : www.enseignementsecondaire.gouv.bj")
	pdf.SetFont("Helvetica", "B", 7.5)
	contact(85, "Immeuble Aliou SALAMI, DASSA-ZOUME,")
	contact(94, "Quartier BAKEMA")
	contact(103, "A côté de la préfecture.")
	pdf.SetFont("Helvetica", "", 7.5)
	contact(112, "BP :              Dassa-Zoumè")
	contact(121, "Tél : (229)                      ; Fax :")
	contact(130, "Mail : mestfp.ddcollines@gouv.bj")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginLeft, 148)
	pdf.MultiCell(bodyWidth, 14, tr(s.office.Direction), "", "C", false)
}

// drawTricolour draws the green, yellow and red bars side by side.
func drawTricolour(pdf *fpdf.Fpdf, x, y, w, h float64) {
	for i, c := range [][3]int{flagGreen, flagYellow, flagRed} {
		pdf.SetFillColor(c[0], c[1], c[2])
		pdf.Rect(x+float64(i)*w, y, w, h, "F")
	}
}

// ── wording ──

type gendered struct {
	civility, born, pronoun, admitted, agreement string
}

func genderOf(sexe string) gendered {
	if sexe == model.SexeFemale {
		return gendered{civility: "Madame", born: "née", pronoun: "elle", admitted: "admise", agreement: "e"}
	}
	return gendered{civility: "Monsieur", born: "né", pronoun: "il", admitted: "admis"}
}

// ageInWords spells a statutory retirement age.
func ageInWords(age int) string {
	switch age {
	case retirement.RetirementAgeA:
		return "soixante (60) ans"
	case retirement.RetirementAgeB:
		return "cinquante-huit (58) ans"
	default:
		return "cinquante-cinq (55) ans"
	}
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// frenchDate formats "02 mars 2026".
func frenchDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// formatName renders "NOM Prénoms" with the given names capitalised once.
func formatName(nom, prenoms string) string {
	nom, prenoms = strings.TrimSpace(nom), strings.TrimSpace(prenoms)
	if nom == "" || prenoms == "" {
		return "..."
	}
	first, size := utf8.DecodeRuneInString(prenoms)
	return strings.ToUpper(nom) + " " + strings.ToUpper(string(first)) + strings.ToLower(prenoms[size:])
}

// gradeScale splits a grade such as "A1-4" into échelle "A1" and échelon "4".
func gradeScale(grade string) (echelle, echelon string) {
	parts := strings.SplitN(grade, "-", 3)
	echelle, echelon = "...", "..."
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		echelle = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		echelon = strings.TrimSpace(parts[1])
	}
	return echelle, echelon
}

// displayDate renders stored date text as DD/MM/YYYY when it is a
// spreadsheet serial or an ISO date, and leaves anything else as typed.
func displayDate(raw string) string {
	raw = dateCell(strings.TrimSpace(raw))
	if d, err := time.Parse(retirement.DateLayout, raw); err == nil {
		return d.Format("02/01/2006")
	}
	return raw
}

func orDots(v string) string {
	if strings.TrimSpace(v) == "" {
		return "..."
	}
	return v
}

// fileSafe keeps a matricule usable in a Content-Disposition filename.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
