package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/amirphl/dynamic-pricing/app/dto"
	"github.com/amirphl/dynamic-pricing/app/services"
	"github.com/amirphl/dynamic-pricing/logging"
	"github.com/amirphl/dynamic-pricing/models"
	"github.com/amirphl/dynamic-pricing/repository"
	"github.com/amirphl/dynamic-pricing/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Refresh(ctx context.Context, req *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

// AdminAuthFlowImpl verifies admin credentials and issues tokens
type AdminAuthFlowImpl struct {
	adminRepo    repository.AdminRepository
	tokenService services.TokenService
	logger       *zap.Logger
}

func NewAdminAuthFlow(adminRepo repository.AdminRepository, tokenService services.TokenService, logger *zap.Logger) AdminAuthFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAuthFlowImpl{
		adminRepo:    adminRepo,
		tokenService: tokenService,
		logger:       logger.Named("admin_auth_flow"),
	}
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	if req == nil || len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}

	admin, err := af.adminRepo.ByUsername(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		logging.WithContext(ctx, af.logger).Warn("admin login rejected",
			zap.String("username", admin.Username),
			zap.String("ip", metadataIP(metadata)),
		)
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := af.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	now := utils.UTCNow()
	if err := af.adminRepo.TouchLastLogin(ctx, admin.ID, now); err != nil {
		logging.WithContext(ctx, af.logger).Warn("failed to record admin login", zap.Uint("admin_id", admin.ID), zap.Error(err))
	}

	return &dto.AdminLoginResponse{
		Admin:   ToAdminDTO(*admin),
		Session: af.session(accessToken, refreshToken),
	}, nil
}

// Refresh exchanges a refresh token for a new token pair; the old refresh token
// is revoked
func (af *AdminAuthFlowImpl) Refresh(ctx context.Context, req *dto.AdminRefreshRequest) (*dto.AdminSessionDTO, error) {
	if req == nil || strings.TrimSpace(req.RefreshToken) == "" {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is required", services.ErrTokenInvalid)
	}
	accessToken, refreshToken, err := af.tokenService.RefreshAdminToken(req.RefreshToken)
	if err != nil {
		code := "INVALID_REFRESH_TOKEN"
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			code = "TOKEN_EXPIRED"
		case errors.Is(err, services.ErrTokenRevoked):
			code = "TOKEN_REVOKED"
		}
		return nil, NewBusinessError(code, "Failed to refresh token", err)
	}
	session := af.session(accessToken, refreshToken)
	return &session, nil
}

// EnsureAdmin creates the configured admin when no admin with that username
// exists. An existing admin is left unchanged.
func (af *AdminAuthFlowImpl) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return NewBusinessError("ADMIN_BOOTSTRAP_FAILED", "Admin username and password are required", ErrIncorrectPassword)
	}

	existing, err := af.adminRepo.ByUsername(ctx, username)
	if err != nil {
		return NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return NewBusinessError("ADMIN_BOOTSTRAP_FAILED", "Failed to hash admin password", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
	}
	if err := af.adminRepo.Save(ctx, admin); err != nil {
		return NewBusinessError("ADMIN_BOOTSTRAP_FAILED", "Failed to create admin", err)
	}

	af.logger.Info("admin created", zap.String("username", username))
	return nil
}

func (af *AdminAuthFlowImpl) session(accessToken, refreshToken string) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(af.tokenService.AccessTokenTTL().Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNowRFC3339(),
	}
}

func metadataIP(metadata *ClientMetadata) string {
	if metadata == nil {
		return ""
	}
	return metadata.IPAddress
}
