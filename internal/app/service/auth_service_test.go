package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/db"
)

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	return authService, testDB
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("ana@example.com", "senha-segura-123", "Ana Souza", "11987654321")
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "senha-segura-123", user.PasswordHash)

	loggedIn, loginTokens, err := authService.Login("ana@example.com", "senha-segura-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginTokens.AccessToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("ana@example.com", "senha-segura-123", "Ana Souza", "")
	require.NoError(t, err)

	_, _, err = authService.Register("ana@example.com", "outra-senha-456", "Outra Pessoa", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Register_ClaimsGuestAccount(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	// Account created by a guest checkout: no password, cannot log in.
	guest := &model.User{
		Email: "ana@example.com",
		Name:  "Ana Souza",
		Role:  model.RoleUser,
	}
	require.NoError(t, testDB.Create(guest).Error)

	_, _, err := authService.Login("ana@example.com", "qualquer-senha")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, tokens, err := authService.Register("ana@example.com", "senha-segura-123", "Ana S. Lima", "11987654321")
	require.NoError(t, err)
	require.NotNil(t, tokens)

	// Same row, now with credentials; the guest's order history stays linked.
	assert.Equal(t, guest.ID, user.ID)
	assert.Equal(t, "Ana S. Lima", user.Name)

	_, _, err = authService.Login("ana@example.com", "senha-segura-123")
	assert.NoError(t, err)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("ana@example.com", "senha-segura-123", "Ana Souza", "")
	require.NoError(t, err)

	_, _, err = authService.Login("ana@example.com", "senha-errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("ninguem@example.com", "senha-segura-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshReflectsRoleChange(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("ana@example.com", "senha-segura-123", "Ana Souza", "")
	require.NoError(t, err)

	require.NoError(t, testDB.Model(user).Update("role", model.RoleAdmin).Error)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register("ana@example.com", "senha-segura-123", "Ana Souza", "")
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "Ana Lima", "11999990000")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.Name)
	assert.Equal(t, "11999990000", updated.Phone)
}
