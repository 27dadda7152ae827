package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/jwt"
)

func setupAuthService(blacklist TokenBlacklist) (AuthService, *testEnv) {
	env := newTestEnv()
	jwtMgr := jwt.NewManager(&env.cfg.Auth)
	svc := NewAuthService(env.cfg, env.repo, jwtMgr, blacklist, env.audit(), env.logger)
	return svc, env
}

func seedAdmin(t *testing.T, env *testEnv, email, password string) *model.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &model.Admin{Email: email, PasswordHash: string(hash), Role: model.RoleAdmin}
	if err := env.admins.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, env := setupAuthService(nil)
	admin := seedAdmin(t, env, "chef@collines.bj", "motdepasse")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "Chef@Collines.bj", Password: "motdepasse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected access token")
	}
	if resp.ExpiresIn != int(time.Hour.Seconds()) {
		t.Errorf("ExpiresIn = %d, want 3600", resp.ExpiresIn)
	}
	if resp.Admin.ID != admin.AdminID || resp.Admin.LastLoginAt == "" {
		t.Errorf("unexpected admin payload: %+v", resp.Admin)
	}

	claims, err := jwt.NewManager(&env.cfg.Auth).ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.AdminID != admin.AdminID || claims.Role != model.RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}

	if got := env.audits.actions(); len(got) != 1 || got[0] != model.AuditLogin {
		t.Errorf("audit actions = %v, want [LOGIN]", got)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, env := setupAuthService(nil)
	seedAdmin(t, env, "chef@collines.bj", "motdepasse")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "chef@collines.bj", Password: "mauvais"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(env.audits.actions()) != 0 {
		t.Error("a rejected login must not be journaled as a login")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := setupAuthService(nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "personne@collines.bj", Password: "motdepasse"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ── Logout ──

func TestLogout_BlacklistsUntilExpiry(t *testing.T) {
	bl := &fakeBlacklist{}
	svc, _ := setupAuthService(bl)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	ttl, ok := bl.revoked["jti-1"]
	if !ok {
		t.Fatal("token id not blacklisted")
	}
	if ttl <= 29*time.Minute || ttl > 30*time.Minute {
		t.Errorf("ttl = %v, want about 30m", ttl)
	}
}

func TestLogout_WithoutBlacklist(t *testing.T) {
	svc, _ := setupAuthService(nil)
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("Logout() without redis error = %v", err)
	}
}

func TestLogout_BlacklistError(t *testing.T) {
	svc, _ := setupAuthService(&fakeBlacklist{err: errDatabaseDown})
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); !errors.Is(err, errDatabaseDown) {
		t.Errorf("expected errDatabaseDown, got %v", err)
	}
}

// ── CreateAdmin ──

func TestCreateAdmin(t *testing.T) {
	svc, env := setupAuthService(nil)

	resp, err := svc.CreateAdmin(context.Background(), &dto.CreateAdminRequest{
		Email:    "  Secretariat@Collines.bj ",
		Password: "un-long-secret",
	}, testActor)
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	if resp.Email != "secretariat@collines.bj" {
		t.Errorf("Email = %q, want lowercased and trimmed", resp.Email)
	}
	if resp.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want default %q", resp.Role, model.RoleAdmin)
	}

	stored, _ := env.admins.GetByEmail(context.Background(), "secretariat@collines.bj")
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("un-long-secret")) != nil {
		t.Error("password not stored as a bcrypt hash of the input")
	}
	if stored.CreatedBy == nil || *stored.CreatedBy != testActor.ID {
		t.Errorf("CreatedBy = %v, want %q", stored.CreatedBy, testActor.ID)
	}

	_, err = svc.CreateAdmin(context.Background(), &dto.CreateAdminRequest{
		Email:    "secretariat@collines.bj",
		Password: "un-autre-secret",
	}, testActor)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestCreateAdmin_WeakPassword(t *testing.T) {
	svc, _ := setupAuthService(nil)
	_, err := svc.CreateAdmin(context.Background(), &dto.CreateAdminRequest{Email: "a@b.bj", Password: "court"}, testActor)
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, env := setupAuthService(nil)
	admin := seedAdmin(t, env, "chef@collines.bj", "motdepasse")

	resp, err := svc.Me(context.Background(), admin.AdminID)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if resp.Email != "chef@collines.bj" {
		t.Errorf("Email = %q", resp.Email)
	}

	if _, err := svc.Me(context.Background(), "inconnu"); !errors.Is(err, ErrAdminNotFound) {
		t.Errorf("expected ErrAdminNotFound, got %v", err)
	}
}
