package service

import (
	"context"
	"errors"
	"time"

	"github.com/pngsmec/msme-registry-backend/config"
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"github.com/pngsmec/msme-registry-backend/pkg/redis"
	"github.com/pngsmec/msme-registry-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService interface {
	Login(email, password string) (*util.TokenPair, *model.User, error)
	Refresh(refreshToken string) (*util.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	CreateUser(user *model.User, password string) (*model.User, error)
}

type authService struct {
	users repository.UserRepository
	cfg   *config.JWTConfig
}

func NewAuthService(users repository.UserRepository, cfg *config.JWTConfig) AuthService {
	return &authService{users: users, cfg: cfg}
}

func (s *authService) Login(email, password string) (*util.TokenPair, *model.User, error) {
	logger.Info("User login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, user.Role,
		s.cfg.Secret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(user); err != nil {
		// login still succeeds; the timestamp is best effort
		logger.Warn("Failed to record last login time", map[string]interface{}{
			"user_id": user.ID,
		})
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return tokens, user, nil
}

func (s *authService) Refresh(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.cfg.Secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// re-read the user so role changes take effect on refresh
	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return util.GenerateTokenPair(
		user.ID, user.Email, user.Role,
		s.cfg.Secret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry,
	)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := util.ValidateToken(accessToken, s.cfg.Secret)
	if err != nil {
		// nothing to revoke for an invalid token
		return nil
	}

	// blacklist for the token's remaining lifetime
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	logger.Info("User logout", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return redis.BlacklistToken(ctx, accessToken, remaining)
}

func (s *authService) CreateUser(user *model.User, password string) (*model.User, error) {
	logger.Info("Creating user account", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
