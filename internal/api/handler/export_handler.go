package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/response"
)

// defaultCalendarSpan window exported when no end date is given.
const defaultCalendarSpan = 1 // year

// ExportHandler spreadsheet and calendar downloads.
type ExportHandler struct {
	exportSvc service.ExportService
	now       func() time.Time
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, now: time.Now}
}

// ExportTeachers GET /api/v1/export/teachers
func (h *ExportHandler) ExportTeachers(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	doc, err := h.exportSvc.ExportDirectory(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.File(c, doc.ContentType, doc.Filename, doc.Body)
}

// ExportRetirements GET /api/v1/export/retirements.ics?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ExportHandler) ExportRetirements(c *gin.Context) {
	from := h.now().UTC()
	if v := c.Query("from"); v != "" {
		d, err := time.Parse(retirement.DateLayout, v)
		if err != nil {
			response.BadRequest(c, 23002, "date de début invalide (AAAA-MM-JJ)")
			return
		}
		from = d
	}
	to := from.AddDate(defaultCalendarSpan, 0, 0)
	if v := c.Query("to"); v != "" {
		d, err := time.Parse(retirement.DateLayout, v)
		if err != nil {
			response.BadRequest(c, 23002, "date de fin invalide (AAAA-MM-JJ)")
			return
		}
		to = d
	}

	doc, err := h.exportSvc.RetirementCalendar(c.Request.Context(), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.File(c, doc.ContentType, doc.Filename, doc.Body)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportInvalidRange):
		response.BadRequest(c, 23001, "période invalide : la date de fin précède la date de début")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
