package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NarcisseDedome/gestionpersonnel/internal/api/middleware"
	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/service"
	pkgerrors "github.com/NarcisseDedome/gestionpersonnel/pkg/errors"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult  *dto.TokenResponse
	loginErr     error
	logoutErr    error
	logoutJTI    string
	meResult     *dto.AdminResponse
	meErr        error
	createResult *dto.AdminResponse
	createErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) CreateAdmin(_ context.Context, _ *dto.CreateAdminRequest, _ service.Actor) (*dto.AdminResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.AdminResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock TeacherService ──

type mockTeacherService struct {
	teacher      *dto.TeacherResponse
	list         []dto.TeacherResponse
	total        int64
	err          error
	lastActor    service.Actor
	lastArchived *bool
	lastList     *dto.TeacherListRequest
	recompute    *dto.RecomputeResponse
	genders      *dto.InferGendersResponse
	preview      *dto.RetirementPreviewResponse
}

func (m *mockTeacherService) Create(_ context.Context, _ *dto.CreateTeacherRequest, actor service.Actor) (*dto.TeacherResponse, error) {
	m.lastActor = actor
	return m.teacher, m.err
}
func (m *mockTeacherService) GetByID(_ context.Context, _ string) (*dto.TeacherResponse, error) {
	return m.teacher, m.err
}
func (m *mockTeacherService) List(_ context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	m.lastList = req
	return m.list, m.total, m.err
}
func (m *mockTeacherService) Update(_ context.Context, _ string, _ *dto.UpdateTeacherRequest, actor service.Actor) (*dto.TeacherResponse, error) {
	m.lastActor = actor
	return m.teacher, m.err
}
func (m *mockTeacherService) Archive(_ context.Context, _ string, archived bool, _ service.Actor) (*dto.TeacherResponse, error) {
	m.lastArchived = &archived
	return m.teacher, m.err
}
func (m *mockTeacherService) Delete(_ context.Context, _ string, _ service.Actor) error {
	return m.err
}
func (m *mockTeacherService) RecomputeRetirement(_ context.Context, actor service.Actor) (*dto.RecomputeResponse, error) {
	m.lastActor = actor
	return m.recompute, m.err
}
func (m *mockTeacherService) InferGenders(_ context.Context, _ service.Actor) (*dto.InferGendersResponse, error) {
	return m.genders, m.err
}
func (m *mockTeacherService) PreviewRetirement(_ *dto.RetirementPreviewRequest) *dto.RetirementPreviewResponse {
	return m.preview
}

// ── Mock CertificateService ──

type mockCertificateService struct {
	doc *service.Document
	err error
}

func (m *mockCertificateService) ValidityOfService(_ context.Context, _ string) (*service.Document, error) {
	return m.doc, m.err
}
func (m *mockCertificateService) PresenceAtPost(_ context.Context, _ string) (*service.Document, error) {
	return m.doc, m.err
}

// ── Mock StatsService ──

type mockStatsService struct {
	stats *dto.StatsResponse
	err   error
	at    time.Time
}

func (m *mockStatsService) Stats(_ context.Context, now time.Time) (*dto.StatsResponse, error) {
	m.at = now
	return m.stats, m.err
}
func (m *mockStatsService) Invalidate(_ context.Context) {}

// ── Mock ExportService ──

type mockExportService struct {
	doc      *service.Document
	err      error
	from, to time.Time
}

func (m *mockExportService) ExportDirectory(_ context.Context, _ *dto.TeacherListRequest) (*service.Document, error) {
	return m.doc, m.err
}
func (m *mockExportService) RetirementCalendar(_ context.Context, from, to time.Time) (*service.Document, error) {
	m.from, m.to = from, to
	return m.doc, m.err
}

// ── Mock ImportService ──

type mockImportService struct {
	rows      []dto.ImportRow
	parseErr  error
	result    *dto.ImportResponse
	importErr error
	parsed    []byte
}

func (m *mockImportService) ParseImportFile(r io.Reader) ([]dto.ImportRow, error) {
	m.parsed, _ = io.ReadAll(r)
	return m.rows, m.parseErr
}
func (m *mockImportService) Import(_ context.Context, _ []dto.ImportRow, _ service.Actor) (*dto.ImportResponse, error) {
	return m.result, m.importErr
}
func (m *mockImportService) ImportFile(_ context.Context, _ string, _ service.Actor) (*dto.ImportResponse, error) {
	return m.result, m.importErr
}

// ── Mock AuditService ──

type mockAuditService struct {
	entries []dto.AuditLogResponse
	total   int64
	err     error
}

func (m *mockAuditService) Record(_ context.Context, _ service.Actor, _, _, _ string) {}
func (m *mockAuditService) List(_ context.Context, _ *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	return m.entries, m.total, m.err
}
func (m *mockAuditService) CountSince(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(middleware.ContextAdminID, "adm-1")
	c.Set(middleware.ContextEmail, "chef@collines.bj")
	c.Set(middleware.ContextRole, "superadmin")
	c.Set(middleware.ContextTokenID, "test-jti")
	c.Set(middleware.ContextExpiresAt, time.Now().Add(time.Hour))
}

// serve registers h on route, optionally behind a fake authentication,
// and runs one request.
func serve(method, route, target string, h gin.HandlerFunc, body io.Reader, contentType string, auth bool) *httptest.ResponseRecorder {
	r := gin.New()
	if auth {
		r.Use(func(c *gin.Context) {
			setAuth(c)
			c.Next()
		})
	}
	r.Handle(method, route, h)

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serveJSON(method, route, target string, h gin.HandlerFunc, payload interface{}, auth bool) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	return serve(method, route, target, h, body, "application/json", auth)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("expected status %d, got %d (%s)", status, w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != code {
		t.Errorf("expected code %d, got %d", code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name    string
		mock    *mockAuthService
		payload interface{}
		status  int
		code    int
	}{
		{
			name:    "success",
			mock:    &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "tok", ExpiresIn: 3600}},
			payload: dto.LoginRequest{Email: "chef@collines.bj", Password: "motdepasse"},
			status:  http.StatusOK,
			code:    0,
		},
		{
			name:    "invalid credentials",
			mock:    &mockAuthService{loginErr: service.ErrInvalidCredentials},
			payload: dto.LoginRequest{Email: "chef@collines.bj", Password: "faux"},
			status:  http.StatusUnauthorized,
			code:    11001,
		},
		{
			name:    "bad email",
			mock:    &mockAuthService{},
			payload: map[string]string{"email": "pas-un-email", "password": "x"},
			status:  http.StatusBadRequest,
			code:    10001,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.mock)
			w := serveJSON(http.MethodPost, "/auth/login", "/auth/login", h.Login, tt.payload, false)
			expect(t, w, tt.status, tt.code)
		})
	}
}

func TestAuthHandler_LogoutPassesTokenID(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := serveJSON(http.MethodPost, "/auth/logout", "/auth/logout", h.Logout, nil, true)
	expect(t, w, http.StatusOK, 0)
	if mock.logoutJTI != "test-jti" {
		t.Errorf("logout jti = %q, want test-jti", mock.logoutJTI)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meResult: &dto.AdminResponse{ID: "adm-1"}})
	expect(t, serveJSON(http.MethodGet, "/auth/me", "/auth/me", h.Me, nil, true), http.StatusOK, 0)
	expect(t, serveJSON(http.MethodGet, "/auth/me", "/auth/me", h.Me, nil, false), http.StatusUnauthorized, 10002)

	h = NewAuthHandler(&mockAuthService{meErr: service.ErrAdminNotFound})
	expect(t, serveJSON(http.MethodGet, "/auth/me", "/auth/me", h.Me, nil, true), http.StatusNotFound, 11002)
}

// ═══════════════════════════════════════════════════════════
// TeacherHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTeacherHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"not found", service.ErrTeacherNotFound, http.StatusNotFound, 20001},
		{"duplicate", service.ErrMatriculeExists, http.StatusConflict, 20002},
		{"matricule required", service.ErrMatriculeRequired, http.StatusBadRequest, 20003},
		{"nom required", service.ErrNomRequired, http.StatusBadRequest, 20004},
		{"stale version", pkgerrors.ErrOptimisticLock, http.StatusConflict, 20005},
		{"unexpected", io.ErrUnexpectedEOF, http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTeacherHandler(&mockTeacherService{err: tt.err}, &mockCertificateService{})
			w := serveJSON(http.MethodPut, "/teachers/:id", "/teachers/t-1", h.Update,
				dto.UpdateTeacherRequest{Version: 1}, true)
			expect(t, w, tt.status, tt.code)
		})
	}
}

func TestTeacherHandler_Create(t *testing.T) {
	mock := &mockTeacherService{teacher: &dto.TeacherResponse{ID: "t-1", Matricule: "100"}}
	h := NewTeacherHandler(mock, &mockCertificateService{})

	w := serveJSON(http.MethodPost, "/teachers", "/teachers", h.Create,
		dto.CreateTeacherRequest{Matricule: "100", Nom: "AHO"}, true)
	expect(t, w, http.StatusCreated, 0)
	if mock.lastActor.ID != "adm-1" || mock.lastActor.Email != "chef@collines.bj" {
		t.Errorf("actor = %+v", mock.lastActor)
	}

	w = serveJSON(http.MethodPost, "/teachers", "/teachers", h.Create,
		map[string]string{"matricule": "100"}, true)
	expect(t, w, http.StatusBadRequest, 10001)

	w = serveJSON(http.MethodPost, "/teachers", "/teachers", h.Create,
		dto.CreateTeacherRequest{Matricule: "100", Nom: "AHO"}, false)
	expect(t, w, http.StatusUnauthorized, 10002)
}

func TestTeacherHandler_ListBindsFilters(t *testing.T) {
	mock := &mockTeacherService{list: []dto.TeacherResponse{{ID: "t-1"}}, total: 120}
	h := NewTeacherHandler(mock, &mockCertificateService{})

	w := serve(http.MethodGet, "/teachers", "/teachers?search=aho&category=A&college=true&page=2&page_size=50",
		h.List, nil, "", true)
	expect(t, w, http.StatusOK, 0)
	if mock.lastList.Search != "aho" || mock.lastList.Category != "A" {
		t.Errorf("filters = %+v", mock.lastList)
	}
	if mock.lastList.College == nil || !*mock.lastList.College {
		t.Error("college filter not bound")
	}

	var page struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Data.Pagination.TotalPages != 3 || page.Data.Pagination.Page != 2 {
		t.Errorf("pagination = %+v", page.Data.Pagination)
	}
}

func TestTeacherHandler_Archive(t *testing.T) {
	mock := &mockTeacherService{teacher: &dto.TeacherResponse{ID: "t-1"}}
	h := NewTeacherHandler(mock, &mockCertificateService{})

	w := serveJSON(http.MethodPatch, "/teachers/:id/archive", "/teachers/t-1/archive", h.Archive,
		map[string]bool{"archived": false}, true)
	expect(t, w, http.StatusOK, 0)
	if mock.lastArchived == nil || *mock.lastArchived {
		t.Errorf("archived = %v, want false", mock.lastArchived)
	}

	w = serveJSON(http.MethodPatch, "/teachers/:id/archive", "/teachers/t-1/archive", h.Archive,
		map[string]string{}, true)
	expect(t, w, http.StatusBadRequest, 10001)
}

func TestTeacherHandler_Certificates(t *testing.T) {
	doc := &service.Document{Filename: "certificat_validite_100.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}
	h := NewTeacherHandler(&mockTeacherService{}, &mockCertificateService{doc: doc})

	w := serve(http.MethodGet, "/teachers/:id/certificate-validity", "/teachers/t-1/certificate-validity",
		h.ValidityCertificate, nil, "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "certificat_validite_100.pdf") {
		t.Errorf("Content-Disposition = %q", got)
	}

	h = NewTeacherHandler(&mockTeacherService{}, &mockCertificateService{err: service.ErrTeacherNotFound})
	w = serve(http.MethodGet, "/teachers/:id/presence-post", "/teachers/t-1/presence-post",
		h.PresenceCertificate, nil, "", true)
	expect(t, w, http.StatusNotFound, 22001)
}

func TestTeacherHandler_PreviewRetirement(t *testing.T) {
	mock := &mockTeacherService{preview: &dto.RetirementPreviewResponse{Determined: true, DateRetraite: "2044-10-01"}}
	h := NewTeacherHandler(mock, &mockCertificateService{})

	w := serveJSON(http.MethodPost, "/retirement/preview", "/retirement/preview", h.PreviewRetirement,
		map[string]interface{}{"date_naissance": 32731, "grade": "C1-1", "etablissement": "CEG Glazoué"}, true)
	expect(t, w, http.StatusOK, 0)
	if !strings.Contains(w.Body.String(), "2044-10-01") {
		t.Errorf("body = %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// Stats / Export Tests
// ═══════════════════════════════════════════════════════════

func TestStatsHandler(t *testing.T) {
	mock := &mockStatsService{stats: &dto.StatsResponse{Total: 12}}
	h := NewStatsHandler(mock)
	fixed := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	expect(t, serve(http.MethodGet, "/stats", "/stats", h.Get, nil, "", true), http.StatusOK, 0)
	if !mock.at.Equal(fixed) {
		t.Errorf("stats computed at %v, want %v", mock.at, fixed)
	}

	h = NewStatsHandler(&mockStatsService{err: io.ErrUnexpectedEOF})
	expect(t, serve(http.MethodGet, "/stats", "/stats", h.Get, nil, "", true), http.StatusInternalServerError, 50000)
}

func TestExportHandler_Retirements(t *testing.T) {
	mock := &mockExportService{doc: &service.Document{Filename: "r.ics", ContentType: "text/calendar; charset=utf-8", Body: []byte("BEGIN:VCALENDAR")}}
	h := NewExportHandler(mock)
	h.now = func() time.Time { return time.Date(2026, time.October, 16, 15, 0, 0, 0, time.UTC) }

	w := serve(http.MethodGet, "/export/retirements.ics", "/export/retirements.ics", h.ExportRetirements, nil, "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.to.Sub(mock.from) < 365*24*time.Hour {
		t.Errorf("default window = %v .. %v, want one year", mock.from, mock.to)
	}

	w = serve(http.MethodGet, "/export/retirements.ics", "/export/retirements.ics?from=2026-01-01&to=2026-12-31",
		h.ExportRetirements, nil, "", true)
	if w.Code != http.StatusOK || mock.from.Month() != time.January || mock.to.Day() != 31 {
		t.Errorf("explicit window = %v .. %v", mock.from, mock.to)
	}

	w = serve(http.MethodGet, "/export/retirements.ics", "/export/retirements.ics?from=16/10/2026",
		h.ExportRetirements, nil, "", true)
	expect(t, w, http.StatusBadRequest, 23002)

	h = NewExportHandler(&mockExportService{err: service.ErrExportInvalidRange})
	w = serve(http.MethodGet, "/export/retirements.ics", "/export/retirements.ics?from=2027-01-01&to=2026-01-01",
		h.ExportRetirements, nil, "", true)
	expect(t, w, http.StatusBadRequest, 23001)
}

func TestExportHandler_Teachers(t *testing.T) {
	mock := &mockExportService{doc: &service.Document{
		Filename:    "personnel_20261016.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Body:        []byte("PK"),
	}}
	h := NewExportHandler(mock)

	w := serve(http.MethodGet, "/export/teachers", "/export/teachers?category=B", h.ExportTeachers, nil, "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "personnel_20261016.xlsx") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
}

// ═══════════════════════════════════════════════════════════
// AdminHandler Tests
// ═══════════════════════════════════════════════════════════

func multipartFile(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func newAdminHandler(imp *mockImportService, teachers *mockTeacherService, auth *mockAuthService) *AdminHandler {
	return NewAdminHandler(imp, teachers, auth, &mockAuditService{})
}

func TestAdminHandler_Import(t *testing.T) {
	imp := &mockImportService{
		rows:   []dto.ImportRow{{Row: 2, Matricule: "1", Nom: "A"}},
		result: &dto.ImportResponse{Total: 1, Created: 1},
	}
	h := newAdminHandler(imp, &mockTeacherService{}, &mockAuthService{})

	body, ct := multipartFile(t, "file", "personnel.xlsx", []byte("xlsx-bytes"))
	w := serve(http.MethodPost, "/admin/import", "/admin/import", h.Import, body, ct, true)
	expect(t, w, http.StatusOK, 0)
	if string(imp.parsed) != "xlsx-bytes" {
		t.Errorf("parsed = %q", imp.parsed)
	}
}

func TestAdminHandler_ImportErrors(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		imp      *mockImportService
		status   int
		code     int
	}{
		{"missing field", "autre", "personnel.xlsx", &mockImportService{}, http.StatusBadRequest, 21005},
		{"wrong extension", "file", "personnel.csv", &mockImportService{}, http.StatusBadRequest, 21004},
		{"no data", "file", "p.xlsx", &mockImportService{parseErr: service.ErrImportNoData}, http.StatusBadRequest, 21001},
		{"too many rows", "file", "p.xlsx", &mockImportService{parseErr: service.ErrImportTooManyRows}, http.StatusBadRequest, 21002},
		{"bad header", "file", "p.xlsx", &mockImportService{parseErr: service.ErrImportBadHeader}, http.StatusBadRequest, 21003},
		{"database", "file", "p.xlsx", &mockImportService{importErr: io.ErrUnexpectedEOF}, http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAdminHandler(tt.imp, &mockTeacherService{}, &mockAuthService{})
			body, ct := multipartFile(t, tt.field, tt.filename, []byte("data"))
			w := serve(http.MethodPost, "/admin/import", "/admin/import", h.Import, body, ct, true)
			expect(t, w, tt.status, tt.code)
		})
	}
}

func TestAdminHandler_RecomputeAndGenders(t *testing.T) {
	teachers := &mockTeacherService{
		recompute: &dto.RecomputeResponse{Total: 3, Changed: 1},
		genders:   &dto.InferGendersResponse{Corrected: 2},
	}
	h := newAdminHandler(&mockImportService{}, teachers, &mockAuthService{})

	expect(t, serve(http.MethodPost, "/admin/recompute", "/admin/recompute", h.Recompute, nil, "", true), http.StatusOK, 0)
	if teachers.lastActor.ID != "adm-1" {
		t.Errorf("actor = %+v", teachers.lastActor)
	}
	expect(t, serve(http.MethodPost, "/admin/infer-genders", "/admin/infer-genders", h.InferGenders, nil, "", true), http.StatusOK, 0)
	expect(t, serve(http.MethodPost, "/admin/recompute", "/admin/recompute", h.Recompute, nil, "", false), http.StatusUnauthorized, 10002)
}

func TestAdminHandler_CreateAdmin(t *testing.T) {
	payload := dto.CreateAdminRequest{Email: "sec@collines.bj", Password: "un-long-secret"}

	h := newAdminHandler(&mockImportService{}, &mockTeacherService{}, &mockAuthService{createResult: &dto.AdminResponse{ID: "adm-2"}})
	expect(t, serveJSON(http.MethodPost, "/admin/users", "/admin/users", h.CreateAdmin, payload, true), http.StatusCreated, 0)

	h = newAdminHandler(&mockImportService{}, &mockTeacherService{}, &mockAuthService{createErr: service.ErrEmailExists})
	expect(t, serveJSON(http.MethodPost, "/admin/users", "/admin/users", h.CreateAdmin, payload, true), http.StatusConflict, 24001)

	expect(t, serveJSON(http.MethodPost, "/admin/users", "/admin/users", h.CreateAdmin,
		dto.CreateAdminRequest{Email: "sec@collines.bj", Password: "court"}, true), http.StatusBadRequest, 10001)
}

func TestAdminHandler_ListAuditLogs(t *testing.T) {
	audit := &mockAuditService{entries: []dto.AuditLogResponse{{ID: "1", Action: "CREATE"}}, total: 1}
	h := NewAdminHandler(&mockImportService{}, &mockTeacherService{}, &mockAuthService{}, audit)

	w := serve(http.MethodGet, "/admin/audit-logs", "/admin/audit-logs?action=CREATE", h.ListAuditLogs, nil, "", true)
	expect(t, w, http.StatusOK, 0)

	var page struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Data.Pagination.PageSize != service.DefaultAuditPage {
		t.Errorf("page size = %d, want %d", page.Data.Pagination.PageSize, service.DefaultAuditPage)
	}
}
