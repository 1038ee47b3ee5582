package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	v := validator.NewValidator()

	return NewRouter(
		handler.NewAuthHandler(nil, v),
		handler.NewBookingHandler(nil, v),
		handler.NewRoomHandler(nil, v),
		handler.NewTherapistHandler(nil, v),
		handler.NewClientHandler(nil, v),
		handler.NewMedicalRecordHandler(nil, v),
		handler.NewNotificationHandler(nil),
		handler.NewAuditLogHandler(nil, v),
		middleware.NewAuthMiddleware(jwtService, client, log),
		middleware.NewCORSMiddleware(),
	).Setup()
}

func TestRouter_PublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProtectedEndpointsRequireToken(t *testing.T) {
	router := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/bookings"},
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings/me"},
		{http.MethodPatch, "/api/v1/bookings/6f1c1d7e-7a8a-4b8e-9a0b-8f8f3b1f9a01/status"},
		{http.MethodGet, "/api/v1/rooms"},
		{http.MethodPost, "/api/v1/medical-records"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodPost, "/api/v1/admin/rooms"},
		{http.MethodPost, "/api/v1/admin/reminders/sweep"},
		{http.MethodGet, "/api/v1/auth/me"},
	}

	for _, route := range routes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}
