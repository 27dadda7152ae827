package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	pkgerrors "github.com/NarcisseDedome/gestionpersonnel/pkg/errors"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/response"
)

// TeacherHandler teacher records, certificates and the retirement preview.
type TeacherHandler struct {
	teacherSvc service.TeacherService
	certSvc    service.CertificateService
}

// NewTeacherHandler creates a TeacherHandler.
func NewTeacherHandler(teacherSvc service.TeacherService, certSvc service.CertificateService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc, certSvc: certSvc}
}

// List GET /api/v1/teachers
func (h *TeacherHandler) List(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teachers, total, err := h.teacherSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, teachers, total, req.GetPage(), req.GetPageSize())
}

// Get GET /api/v1/teachers/:id
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teacherSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, teacher)
}

// Create POST /api/v1/teachers
func (h *TeacherHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teacher, err := h.teacherSvc.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update PUT /api/v1/teachers/:id
func (h *TeacherHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, teacher)
}

// Archive PATCH /api/v1/teachers/:id/archive
func (h *TeacherHandler) Archive(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ArchiveTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teacher, err := h.teacherSvc.Archive(c.Request.Context(), c.Param("id"), *req.Archived, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, teacher)
}

// Delete DELETE /api/v1/teachers/:id
func (h *TeacherHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.teacherSvc.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ValidityCertificate GET /api/v1/teachers/:id/certificate-validity
func (h *TeacherHandler) ValidityCertificate(c *gin.Context) {
	doc, err := h.certSvc.ValidityOfService(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	response.File(c, doc.ContentType, doc.Filename, doc.Body)
}

// PresenceCertificate GET /api/v1/teachers/:id/presence-post
func (h *TeacherHandler) PresenceCertificate(c *gin.Context) {
	doc, err := h.certSvc.PresenceAtPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}
	response.File(c, doc.ContentType, doc.Filename, doc.Body)
}

// PreviewRetirement POST /api/v1/retirement/preview
func (h *TeacherHandler) PreviewRetirement(c *gin.Context) {
	var req dto.RetirementPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	response.OK(c, h.teacherSvc.PreviewRetirement(&req))
}

func (h *TeacherHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 20001, "enseignant introuvable")
	case errors.Is(err, service.ErrMatriculeExists):
		response.Conflict(c, 20002, "ce matricule existe déjà")
	case errors.Is(err, service.ErrMatriculeRequired):
		response.BadRequest(c, 20003, "le matricule est obligatoire")
	case errors.Is(err, service.ErrNomRequired):
		response.BadRequest(c, 20004, "le nom est obligatoire")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20005, "la fiche a été modifiée entre-temps, rechargez-la")
	default:
		response.InternalError(c)
	}
}

func (h *TeacherHandler) handleCertificateError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTeacherNotFound) {
		response.NotFound(c, 22001, "enseignant introuvable")
		return
	}
	response.InternalError(c)
}
