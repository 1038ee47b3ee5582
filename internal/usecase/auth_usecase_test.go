package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository/mocks"
	"clinic-booking/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	redis      *miniredis.Miniredis
	userRepo   *mocks.UserRepository
	roleRepo   *mocks.RoleRepository
	jwtService *jwt.JWTService
	usecase    AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &authFixture{
		redis:    mr,
		userRepo: new(mocks.UserRepository),
		roleRepo: new(mocks.RoleRepository),
		jwtService: jwt.NewJWTService(config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
		}),
	}
	audit, _ := newAuditService()
	f.usecase = NewAuthUsecase(&mocks.Transactor{}, testLogger(), f.userRepo, f.roleRepo, audit, f.jwtService, client)
	return f
}

func testUser(t *testing.T, password string, roleID int) *entity.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	active := true
	return &entity.User{ID: uuid.New(), Email: "ana@clinic.test", Password: string(hashed), RoleID: roleID, IsActive: &active}
}

func TestAuthUsecase_Login_StoresTokensWithRole(t *testing.T) {
	f := newAuthFixture(t)
	user := testUser(t, "secret1", entity.RoleIDTherapist)
	f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()

	tokens, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	claims, err := f.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleIDTherapist, claims.RoleID)
	assert.True(t, f.redis.Exists(accessTokenKey(user.ID, claims.TokenID)))

	refreshClaims, err := f.jwtService.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists(refreshTokenKey(user.ID, refreshClaims.TokenID)))
}

func TestAuthUsecase_Login_Rejections(t *testing.T) {
	t.Run("UnknownEmail", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, "nobody@clinic.test").Return(nil, nil).Once()

		_, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: "nobody@clinic.test", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testUser(t, "secret1", entity.RoleIDAdmin)
		f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		_, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testUser(t, "secret1", entity.RoleIDAdmin)
		inactive := false
		user.IsActive = &inactive
		f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		_, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "secret1"})
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}

func TestAuthUsecase_RefreshToken_RotatesOnce(t *testing.T) {
	f := newAuthFixture(t)
	user := testUser(t, "secret1", entity.RoleIDGuardian)
	f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()
	f.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	tokens, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)

	rotated, err := f.usecase.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = f.usecase.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.usecase.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthUsecase_Logout_RevokesBothTokens(t *testing.T) {
	f := newAuthFixture(t)
	user := testUser(t, "secret1", entity.RoleIDAdmin)
	f.userRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil).Once()

	tokens, err := f.usecase.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)
	access, err := f.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwtService.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	actor := entity.Actor{ID: user.ID, RoleID: user.RoleID}
	require.NoError(t, f.usecase.Logout(context.Background(), actor, access.TokenID, tokens.RefreshToken))

	assert.False(t, f.redis.Exists(accessTokenKey(user.ID, access.TokenID)))
	assert.False(t, f.redis.Exists(refreshTokenKey(user.ID, refresh.TokenID)))
}

func TestAuthUsecase_SeedAdmin(t *testing.T) {
	cfg := config.AdminConfig{Email: "admin@clinic.test", Password: "changeme", FullName: "Administrator"}

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, cfg.Email).Return(nil, nil).Once()
		f.roleRepo.On("FindByName", mock.Anything, entity.RoleAdmin).Return(&entity.Role{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin}, nil).Once()

		var created *entity.User
		f.userRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).(*entity.User) }).
			Return(nil).Once()

		require.NoError(t, f.usecase.SeedAdmin(context.Background(), cfg))
		assert.Equal(t, entity.RoleIDAdmin, created.RoleID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(cfg.Password)))
	})

	t.Run("SkipsExisting", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, cfg.Email).Return(&entity.User{ID: uuid.New()}, nil).Once()

		require.NoError(t, f.usecase.SeedAdmin(context.Background(), cfg))
		f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("DisabledWithoutEmail", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.usecase.SeedAdmin(context.Background(), config.AdminConfig{}))
		f.userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}
