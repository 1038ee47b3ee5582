package http

import (
	"net/http"

	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router               *mux.Router
	authHandler          *handler.AuthHandler
	bookingHandler       *handler.BookingHandler
	roomHandler          *handler.RoomHandler
	therapistHandler     *handler.TherapistHandler
	clientHandler        *handler.ClientHandler
	medicalRecordHandler *handler.MedicalRecordHandler
	notificationHandler  *handler.NotificationHandler
	auditLogHandler      *handler.AuditLogHandler
	authMiddleware       *middleware.AuthMiddleware
	corsMiddleware       *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	bookingHandler *handler.BookingHandler,
	roomHandler *handler.RoomHandler,
	therapistHandler *handler.TherapistHandler,
	clientHandler *handler.ClientHandler,
	medicalRecordHandler *handler.MedicalRecordHandler,
	notificationHandler *handler.NotificationHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:               mux.NewRouter(),
		authHandler:          authHandler,
		bookingHandler:       bookingHandler,
		roomHandler:          roomHandler,
		therapistHandler:     therapistHandler,
		clientHandler:        clientHandler,
		medicalRecordHandler: medicalRecordHandler,
		notificationHandler:  notificationHandler,
		auditLogHandler:      auditLogHandler,
		authMiddleware:       authMiddleware,
		corsMiddleware:       corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Bookings (admin or therapist; ownership is checked per booking)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Use(middleware.RequireAdminOrTherapist)
	bookings.HandleFunc("", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	bookings.HandleFunc("", r.bookingHandler.GetBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/me", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.UpdateBooking).Methods(http.MethodPut)
	bookings.HandleFunc("/{id}/status", r.bookingHandler.UpdateBookingStatus).Methods(http.MethodPatch)
	bookings.HandleFunc("/{id}", r.bookingHandler.CancelBooking).Methods(http.MethodDelete)

	// Staff read access
	staff := api.NewRoute().Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireAdminOrTherapist)
	staff.HandleFunc("/rooms", r.roomHandler.GetAllRooms).Methods(http.MethodGet)
	staff.HandleFunc("/rooms/{id}", r.roomHandler.GetRoom).Methods(http.MethodGet)
	staff.HandleFunc("/therapists/{id}/bookings", r.bookingHandler.GetTherapistBookings).Methods(http.MethodGet)
	staff.HandleFunc("/medical-records", r.medicalRecordHandler.CreateMedicalRecord).Methods(http.MethodPost)
	staff.HandleFunc("/medical-records/{id}", r.medicalRecordHandler.GetMedicalRecord).Methods(http.MethodGet)

	// Guardian inbox
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(r.authMiddleware.Authenticate)
	notifications.Use(middleware.RequireGuardian)
	notifications.HandleFunc("", r.notificationHandler.GetMyNotifications).Methods(http.MethodGet)
	notifications.HandleFunc("/{id}/read", r.notificationHandler.MarkAsRead).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/rooms", r.roomHandler.CreateRoom).Methods(http.MethodPost)
	admin.HandleFunc("/rooms/{id}", r.roomHandler.UpdateRoom).Methods(http.MethodPut)
	admin.HandleFunc("/rooms/{id}", r.roomHandler.DeleteRoom).Methods(http.MethodDelete)

	admin.HandleFunc("/therapists", r.therapistHandler.CreateTherapist).Methods(http.MethodPost)
	admin.HandleFunc("/therapists", r.therapistHandler.GetAllTherapists).Methods(http.MethodGet)
	admin.HandleFunc("/therapists/{id}", r.therapistHandler.GetTherapist).Methods(http.MethodGet)
	admin.HandleFunc("/therapists/{id}", r.therapistHandler.UpdateTherapist).Methods(http.MethodPut)
	admin.HandleFunc("/therapists/{id}", r.therapistHandler.DeleteTherapist).Methods(http.MethodDelete)

	admin.HandleFunc("/clients", r.clientHandler.CreateClient).Methods(http.MethodPost)
	admin.HandleFunc("/clients", r.clientHandler.GetAllClients).Methods(http.MethodGet)
	admin.HandleFunc("/clients/{id}", r.clientHandler.GetClient).Methods(http.MethodGet)
	admin.HandleFunc("/clients/{id}/guardians", r.clientHandler.AddGuardian).Methods(http.MethodPost)
	admin.HandleFunc("/clients/{id}/therapists", r.clientHandler.LinkTherapist).Methods(http.MethodPost)
	admin.HandleFunc("/clients/{id}/therapists/{relationshipId}", r.clientHandler.EndRelationship).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	admin.HandleFunc("/reminders/sweep", r.notificationHandler.SweepReminders).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
