package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	redis      *miniredis.Miniredis
	client     *redis.Client
	jwt        *jwt.JWTService
	middleware *AuthMiddleware
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	return &authFixture{
		redis:      mr,
		client:     client,
		jwt:        jwtService,
		middleware: NewAuthMiddleware(jwtService, client, log),
	}
}

func (f *authFixture) issueAccess(t *testing.T, userID uuid.UUID, roleID int, store bool) string {
	t.Helper()
	token, tokenID, err := f.jwt.GenerateAccessToken(userID, "user@clinic.test", roleID)
	require.NoError(t, err)
	if store {
		key := fmt.Sprintf("access_token:%s:%s", userID, tokenID)
		require.NoError(t, f.client.Set(context.Background(), key, "1", time.Minute).Err())
	}
	return token
}

func captureActor(got *entity.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFromContext(r.Context())
		*got = actor
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	f := newAuthFixture(t)
	userID := uuid.New()

	t.Run("ValidToken", func(t *testing.T) {
		var actor entity.Actor
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.issueAccess(t, userID, entity.RoleIDTherapist, true))
		rec := httptest.NewRecorder()

		f.middleware.Authenticate(captureActor(&actor)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, actor.ID)
		assert.True(t, actor.IsTherapist())
	})

	t.Run("RevokedToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.issueAccess(t, userID, entity.RoleIDAdmin, false))
		rec := httptest.NewRecorder()

		f.middleware.Authenticate(captureActor(new(entity.Actor))).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		token, _, err := f.jwt.GenerateRefreshToken(userID, "user@clinic.test", entity.RoleIDAdmin)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		f.middleware.Authenticate(captureActor(new(entity.Actor))).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		for _, header := range []string{"", "Token abc", "Bearer", "Bearer not-a-jwt"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()

			f.middleware.Authenticate(captureActor(new(entity.Actor))).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		}
	})

	t.Run("RedisDown", func(t *testing.T) {
		token := f.issueAccess(t, userID, entity.RoleIDAdmin, false)
		f.redis.SetError("ERR server unavailable")
		defer f.redis.SetError("")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		f.middleware.Authenticate(captureActor(new(entity.Actor))).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name       string
		guard      func(http.Handler) http.Handler
		roleID     int
		withRole   bool
		wantStatus int
	}{
		{name: "AdminAllowed", guard: RequireAdmin, roleID: entity.RoleIDAdmin, withRole: true, wantStatus: http.StatusNoContent},
		{name: "TherapistOnAdmin", guard: RequireAdmin, roleID: entity.RoleIDTherapist, withRole: true, wantStatus: http.StatusForbidden},
		{name: "TherapistOnStaff", guard: RequireAdminOrTherapist, roleID: entity.RoleIDTherapist, withRole: true, wantStatus: http.StatusNoContent},
		{name: "GuardianOnStaff", guard: RequireAdminOrTherapist, roleID: entity.RoleIDGuardian, withRole: true, wantStatus: http.StatusForbidden},
		{name: "GuardianInbox", guard: RequireGuardian, roleID: entity.RoleIDGuardian, withRole: true, wantStatus: http.StatusNoContent},
		{name: "TherapistOnly", guard: RequireTherapist, roleID: entity.RoleIDAdmin, withRole: true, wantStatus: http.StatusForbidden},
		{name: "NoRole", guard: RequireAdmin, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.withRole {
				req = req.WithContext(context.WithValue(req.Context(), RoleIDKey, tt.roleID))
			}
			rec := httptest.NewRecorder()

			tt.guard(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
