package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/NarcisseDedome/gestionpersonnel/config"
	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
	pkgerrors "github.com/NarcisseDedome/gestionpersonnel/pkg/errors"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")
	ErrAdminNotFound      = errors.New("administrateur introuvable")
	ErrEmailExists        = errors.New("cet email est déjà utilisé")
	ErrWeakPassword       = errors.New("le mot de passe doit contenir au moins 8 caractères")
)

const minPasswordLength = 8

// AuthService back-office authentication.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest, actor Actor) (*dto.AdminResponse, error)
	Me(ctx context.Context, adminID string) (*dto.AdminResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	audit     AuditService
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil, logout is
// then a no-op on the server side.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	audit AuditService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		audit:     audit,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. account
	admin, err := s.repo.Admin.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load admin failed", zap.Error(err))
		return nil, err
	}

	// 2. password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("email", admin.Email))
		return nil, ErrInvalidCredentials
	}

	// 3. token
	token, _, err := s.jwtMgr.GenerateAccessToken(admin.AdminID, admin.Email, admin.Role)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.Admin.TouchLastLogin(ctx, admin.AdminID, now); err != nil {
		s.logger.Warn("update last login failed", zap.String("admin_id", admin.AdminID), zap.Error(err))
	}
	admin.LastLoginAt = &now
	s.audit.Record(ctx, Actor{ID: admin.AdminID, Email: admin.Email, Role: admin.Role}, model.AuditLogin, "", "")

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		Admin:       *toAdminResponse(admin),
	}, nil
}

// Logout revokes the token id until its natural expiry.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) CreateAdmin(ctx context.Context, req *dto.CreateAdminRequest, actor Actor) (*dto.AdminResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.repo.Admin.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleAdmin
	}
	admin := &model.Admin{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	admin.CreatedBy = actor.idPtr()

	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		s.logger.Error("create admin failed", zap.Error(err))
		return nil, err
	}

	s.audit.Record(ctx, actor, model.AuditCreateAdmin, "", email)
	return toAdminResponse(admin), nil
}

func (s *authService) Me(ctx context.Context, adminID string) (*dto.AdminResponse, error) {
	admin, err := s.repo.Admin.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		s.logger.Error("load admin failed", zap.String("id", adminID), zap.Error(err))
		return nil, err
	}
	return toAdminResponse(admin), nil
}

func toAdminResponse(a *model.Admin) *dto.AdminResponse {
	resp := &dto.AdminResponse{
		ID:        a.AdminID,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.LastLoginAt != nil {
		resp.LastLoginAt = a.LastLoginAt.UTC().Format(time.RFC3339)
	}
	return resp
}
