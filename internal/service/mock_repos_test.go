package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	pkgerrors "github.com/NarcisseDedome/gestionpersonnel/pkg/errors"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/redis"
)

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	mu       sync.Mutex
	teachers map[string]*model.Teacher
	seq      int
	failNext error
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) take() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockTeacherRepo) Create(_ context.Context, t *model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take(); err != nil {
		return err
	}
	for _, existing := range m.teachers {
		if existing.Matricule == t.Matricule {
			return pkgerrors.ErrDuplicate
		}
	}
	if t.TeacherID == "" {
		m.seq++
		t.TeacherID = fmt.Sprintf("t-%03d", m.seq)
	}
	if t.Version == 0 {
		t.Version = 1
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.teachers[t.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByMatricule(_ context.Context, matricule string) (*model.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teachers {
		if t.Matricule == matricule {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context, f repository.TeacherFilter) ([]model.Teacher, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Teacher
	for _, t := range m.teachers {
		if !f.IncludeArchived && t.IsArchived {
			continue
		}
		if s := strings.ToLower(f.Search); s != "" &&
			!strings.Contains(strings.ToLower(t.Nom+" "+t.Prenoms+" "+t.Matricule+" "+t.Etablissement), s) {
			continue
		}
		if c := strings.ToUpper(f.Category); c != "" && c != "ALL" && !strings.HasPrefix(strings.ToUpper(t.Grade), c) {
			continue
		}
		if f.College != nil && t.IsCollege != *f.College {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nom < out[j].Nom })
	total := int64(len(out))
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return nil, total, nil
		}
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[f.Offset:end]
	}
	return out, total, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, t *model.Teacher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take(); err != nil {
		return err
	}
	stored, ok := m.teachers[t.TeacherID]
	if !ok || stored.Version != t.Version {
		return pkgerrors.ErrOptimisticLock
	}
	t.Version++
	t.UpdatedAt = time.Now()
	cp := *t
	m.teachers[t.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) UpdateDerived(_ context.Context, id string, d *time.Time, college bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teachers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.DateRetraite, t.IsCollege = d, college
	t.Version++
	return nil
}

func (m *mockTeacherRepo) SetArchived(_ context.Context, id string, archived bool, _ *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teachers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.IsArchived = archived
	t.Version++
	return nil
}

func (m *mockTeacherRepo) SetSexe(_ context.Context, ids []string, sexe string, _ *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if t, ok := m.teachers[id]; ok {
			t.Sexe = sexe
			n++
		}
	}
	return n, nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string, _ *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teachers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.teachers, id)
	return nil
}

func (m *mockTeacherRepo) active() []*model.Teacher {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Teacher
	for _, t := range m.teachers {
		if !t.IsArchived {
			out = append(out, t)
		}
	}
	return out
}

func (m *mockTeacherRepo) CountActive(_ context.Context) (int64, error) {
	return int64(len(m.active())), nil
}

func (m *mockTeacherRepo) CountByGradeLetter(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, t := range m.active() {
		letter := ""
		if t.Grade != "" {
			letter = strings.ToUpper(t.Grade[:1])
		}
		out[letter]++
	}
	return out, nil
}

func (m *mockTeacherRepo) CountBySexe(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, t := range m.active() {
		out[t.Sexe]++
	}
	return out, nil
}

func (m *mockTeacherRepo) CountColleges(_ context.Context) (int64, error) {
	var n int64
	for _, t := range m.active() {
		if t.IsCollege {
			n++
		}
	}
	return n, nil
}

func (m *mockTeacherRepo) CountIncomplete(_ context.Context) (int64, error) {
	var n int64
	for _, t := range m.active() {
		if t.DateNaissance == "" || t.Matricule == "" || t.Etablissement == "" || t.DateRetraite == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockTeacherRepo) ListRetiringBetween(_ context.Context, from, to time.Time) ([]model.Teacher, error) {
	var out []model.Teacher
	for _, t := range m.active() {
		if t.DateRetraite != nil && !t.DateRetraite.Before(from) && !t.DateRetraite.After(to) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateRetraite.Before(*out[j].DateRetraite) })
	return out, nil
}

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[string]*model.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, a *model.Admin) error {
	if a.AdminID == "" {
		a.AdminID = "adm-" + a.Email
	}
	a.CreatedAt = time.Now()
	m.admins[a.AdminID] = a
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id string) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	for _, a := range m.admins {
		if strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if a, ok := m.admins[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

func (m *mockAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, e *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, f repository.AuditLogFilter) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Matricule != "" && e.Matricule != f.Matricule {
			continue
		}
		out = append(out, e)
	}
	total := int64(len(out))
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *mockAuditLogRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.entries {
		if !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockAuditLogRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

// ── fake cache / blacklist ──

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return jsonUnmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.deletes++
	return nil
}

type fakeBlacklist struct {
	revoked map[string]time.Duration
	err     error
}

func (b *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if b.err != nil {
		return b.err
	}
	if b.revoked == nil {
		b.revoked = map[string]time.Duration{}
	}
	b.revoked[jti] = ttl
	return nil
}

func (b *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

var errDatabaseDown = errors.New("database down")

// ── test fixture ──

type testEnv struct {
	cfg      *config.Config
	repo     *repository.Repository
	teachers *mockTeacherRepo
	admins   *mockAdminRepo
	audits   *mockAuditLogRepo
	cache    *fakeCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cfg: &config.Config{
			Redis:  config.RedisConfig{StatsTTL: time.Minute},
			Auth:   config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", AccessTokenTTL: time.Hour},
			Office: config.OfficeConfig{City: "Dassa-Zoumè", Reference: "N°___", Direction: "DIRECTION", SignatoryTitle: "Direction"},
			Alerts: config.AlertsConfig{ImminentRetirementDays: 180},
			Import: config.ImportConfig{MaxRows: 100},
		},
		teachers: newMockTeacherRepo(),
		admins:   newMockAdminRepo(),
		audits:   newMockAuditLogRepo(),
		cache:    newFakeCache(),
		metrics:  metrics.NewNop(),
		logger:   zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Teacher:  env.teachers,
		Admin:    env.admins,
		AuditLog: env.audits,
	}
	return env
}

func (e *testEnv) calc() *retirementEvaluator {
	return newRetirementEvaluator(e.metrics, e.logger)
}

func (e *testEnv) audit() AuditService {
	return NewAuditService(e.repo, e.logger)
}

func (e *testEnv) stats() StatsService {
	return NewStatsService(e.cfg, e.repo, e.cache, e.metrics, e.logger)
}

func (e *testEnv) teacherService() TeacherService {
	return NewTeacherService(e.repo, e.calc(), e.audit(), e.stats(), e.logger)
}

var testActor = Actor{ID: "adm-1", Email: "chef@collines.bj", Role: model.RoleSuperAdmin}
