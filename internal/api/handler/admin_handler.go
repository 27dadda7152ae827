package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/response"
)

// AdminHandler bulk operations, accounts and the journal.
type AdminHandler struct {
	importSvc  service.ImportService
	teacherSvc service.TeacherService
	authSvc    service.AuthService
	auditSvc   service.AuditService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	importSvc service.ImportService,
	teacherSvc service.TeacherService,
	authSvc service.AuthService,
	auditSvc service.AuditService,
) *AdminHandler {
	return &AdminHandler{
		importSvc:  importSvc,
		teacherSvc: teacherSvc,
		authSvc:    authSvc,
		auditSvc:   auditSvc,
	}
}

// Import POST /api/v1/admin/import (multipart, field "file")
func (h *AdminHandler) Import(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "fichier trop volumineux")
			return
		}
		response.BadRequest(c, 21005, "fichier manquant (champ \"file\")")
		return
	}
	if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".xlsx" && ext != ".xlsm" {
		response.BadRequest(c, 21004, "format non pris en charge, fichier .xlsx attendu")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	rows, err := h.importSvc.ParseImportFile(f)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	result, err := h.importSvc.Import(c.Request.Context(), rows, actor)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *AdminHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 21001, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 21002, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 21003, err.Error())
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 21004, "fichier Excel illisible")
	default:
		response.InternalError(c)
	}
}

// Recompute POST /api/v1/admin/recompute
func (h *AdminHandler) Recompute(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.teacherSvc.RecomputeRetirement(c.Request.Context(), actor)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// InferGenders POST /api/v1/admin/infer-genders
func (h *AdminHandler) InferGenders(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.teacherSvc.InferGenders(c.Request.Context(), actor)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// CreateAdmin POST /api/v1/admin/users
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	admin, err := h.authSvc.CreateAdmin(c.Request.Context(), &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.Conflict(c, 24001, "cet email est déjà utilisé")
		case errors.Is(err, service.ErrWeakPassword):
			response.BadRequest(c, 24002, "le mot de passe doit contenir au moins 8 caractères")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, admin)
}

// ListAuditLogs GET /api/v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var req dto.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entries, total, err := h.auditSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = service.DefaultAuditPage
	}
	response.OKPage(c, entries, total, req.GetPage(), pageSize)
}
