package handler

import "github.com/NarcisseDedome/gestionpersonnel/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth    *AuthHandler
	Teacher *TeacherHandler
	Stats   *StatsHandler
	Export  *ExportHandler
	Admin   *AdminHandler
}

// NewHandler builds the aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Teacher: NewTeacherHandler(svc.Teacher, svc.Certificate),
		Stats:   NewStatsHandler(svc.Stats),
		Export:  NewExportHandler(svc.Export),
		Admin:   NewAdminHandler(svc.Import, svc.Teacher, svc.Auth, svc.Audit),
	}
}
