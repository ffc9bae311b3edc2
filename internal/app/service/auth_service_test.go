package service

import (
	"testing"
	"time"

	"github.com/pngsmec/msme-registry-backend/config"
	"github.com/pngsmec/msme-registry-backend/internal/app/model"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/internal/db"
	"github.com/pngsmec/msme-registry-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	cfg := &config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
	return NewAuthService(userRepo, cfg), testDB
}

func createTestOfficer(t *testing.T, authService AuthService) *model.User {
	user, err := authService.CreateUser(&model.User{
		Email:    "officer@smec.gov.pg",
		FullName: "Test Officer",
		Role:     model.RoleSMECOfficer,
	}, "correct-password")
	require.NoError(t, err)
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	created := createTestOfficer(t, authService)

	tokens, user, err := authService.Login("officer@smec.gov.pg", "correct-password")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, model.RoleSMECOfficer, user.Role)

	// last login is stamped best effort
	var reloaded model.User
	require.NoError(t, testDB.First(&reloaded, created.ID).Error)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	createTestOfficer(t, authService)

	_, _, err := authService.Login("officer@smec.gov.pg", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Login("nobody@smec.gov.pg", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	createTestOfficer(t, authService)

	tokens, _, err := authService.Login("officer@smec.gov.pg", "correct-password")
	require.NoError(t, err)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)
	createTestOfficer(t, authService)

	tokens, _, err := authService.Login("officer@smec.gov.pg", "correct-password")
	require.NoError(t, err)

	// an access token is not a refresh token
	_, err = authService.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Refresh("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Refresh_PicksUpRoleChange(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	created := createTestOfficer(t, authService)

	tokens, _, err := authService.Login("officer@smec.gov.pg", "correct-password")
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.User{}).
		Where("id = ?", created.ID).
		Update("role", model.RoleAdmin).Error)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := util.ValidateToken(refreshed.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestAuthService_CreateUser_HashesPassword(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	created := createTestOfficer(t, authService)

	var stored model.User
	require.NoError(t, testDB.First(&stored, created.ID).Error)
	assert.NotEqual(t, "correct-password", stored.PasswordHash)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "correct-password"))
}
