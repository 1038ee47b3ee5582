package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking/config"
	deliveryHttp "clinic-booking/internal/delivery/http"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/infrastructure/cache"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/internal/infrastructure/queue"
	"clinic-booking/internal/infrastructure/scheduler"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// worker is a background consumer started after the HTTP server is built
// and stopped after it has drained.
type worker interface {
	Start() error
	Stop()
}

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	notificationWorker worker
	asynqPublisher     *queue.AsynqPublisher
	reminderScheduler  *scheduler.ReminderScheduler
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.App.Timezone, err)
	}

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logrus.Info("Database migrations applied")
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis, logrus.StandardLogger())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	metrics.Register()

	if err := app.initialize(loc); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger. An unknown level falls back to info.
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initialize wires repositories, services, usecases and the HTTP server.
func (app *App) initialize(loc *time.Location) error {
	cfg := app.Config
	log := logrus.StandardLogger()

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	transactor := repository.NewTransactor(app.DB)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	roomRepo := repository.NewRoomRepository()
	therapistProfileRepo := repository.NewTherapistProfileRepository()
	clientRepo := repository.NewClientRepository()
	guardianRepo := repository.NewGuardianRepository()
	relationshipRepo := repository.NewClientTherapistRepository()
	bookingRepo := repository.NewBookingRepository()
	medicalRecordRepo := repository.NewMedicalRecordRepository()
	notificationRepo := repository.NewNotificationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	availability := service.NewAvailabilityChecker(log, bookingRepo, service.ProbeErrorPolicy(cfg.Booking.ProbeErrorPolicy))
	dispatcher := service.NewNotificationDispatcher(transactor, log, bookingRepo, notificationRepo, service.DispatcherOptions{
		Location:            loc,
		ReminderConcurrency: cfg.Reminder.Concurrency,
	})

	publisher, err := app.initializeNotifications(dispatcher, log)
	if err != nil {
		return err
	}

	// Initialize usecases
	rules := usecase.BookingRules{
		MinDuration: cfg.Booking.MinDuration,
		MaxDuration: cfg.Booking.MaxDuration,
		Location:    loc,
	}
	bookingValidator := usecase.NewBookingValidator(log, roomRepo, therapistProfileRepo, clientRepo, relationshipRepo, availability, rules)
	bookingUsecase := usecase.NewBookingUsecase(transactor, log, bookingRepo, medicalRecordRepo, bookingValidator, auditService, publisher, rules)
	authUsecase := usecase.NewAuthUsecase(transactor, log, userRepo, roleRepo, auditService, jwtService, app.RedisClient)
	roomUsecase := usecase.NewRoomUsecase(transactor, log, roomRepo, bookingRepo, auditService)
	therapistUsecase := usecase.NewTherapistUsecase(transactor, log, userRepo, therapistProfileRepo, bookingRepo, medicalRecordRepo, relationshipRepo, auditService)
	clientUsecase := usecase.NewClientUsecase(transactor, log, clientRepo, guardianRepo, relationshipRepo, therapistProfileRepo, userRepo, auditService)
	medicalRecordUsecase := usecase.NewMedicalRecordUsecase(transactor, log, medicalRecordRepo, bookingRepo, clientRepo, auditService)
	notificationUsecase := usecase.NewNotificationUsecase(transactor, log, guardianRepo, notificationRepo, dispatcher)
	auditLogUsecase := usecase.NewAuditLogUsecase(transactor, log, auditLogRepo)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authUsecase.SeedAdmin(seedCtx, cfg.Admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	if cfg.Reminder.Enabled {
		reminderScheduler, err := scheduler.NewReminderScheduler(cfg.Reminder.Cron, loc, dispatcher, log)
		if err != nil {
			return err
		}
		app.reminderScheduler = reminderScheduler
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	roomHandler := handler.NewRoomHandler(roomUsecase, customValidator)
	therapistHandler := handler.NewTherapistHandler(therapistUsecase, customValidator)
	clientHandler := handler.NewClientHandler(clientUsecase, customValidator)
	medicalRecordHandler := handler.NewMedicalRecordHandler(medicalRecordUsecase, customValidator)
	notificationHandler := handler.NewNotificationHandler(notificationUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware()

	router := deliveryHttp.NewRouter(
		authHandler,
		bookingHandler,
		roomHandler,
		therapistHandler,
		clientHandler,
		medicalRecordHandler,
		notificationHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// initializeNotifications picks the queue behind the booking lifecycle events.
func (app *App) initializeNotifications(dispatcher service.NotificationDispatcher, log *logrus.Logger) (service.NotificationPublisher, error) {
	cfg := app.Config.Notification

	switch cfg.Driver {
	case config.QueueDriverAsynq:
		redisOpt := queue.RedisOpt(app.Config.Redis)
		app.asynqPublisher = queue.NewAsynqPublisher(redisOpt, cfg.Queue)
		app.notificationWorker = queue.NewAsynqWorker(redisOpt, cfg, dispatcher, log)
		return app.asynqPublisher, nil
	case config.QueueDriverMemory, "":
		memoryQueue := queue.NewMemoryQueue(dispatcher, log, cfg.Workers, cfg.BufferSize)
		app.notificationWorker = memoryQueue
		return memoryQueue, nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Driver)
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	if err := app.notificationWorker.Start(); err != nil {
		logrus.Fatalf("Failed to start notification worker: %v", err)
	}
	if app.reminderScheduler != nil {
		app.reminderScheduler.Start()
	}

	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Requests are drained, so no new events can be published.
	if app.reminderScheduler != nil {
		app.reminderScheduler.Stop()
	}
	if app.notificationWorker != nil {
		app.notificationWorker.Stop()
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, queue client)
func (app *App) Close() {
	if app.asynqPublisher != nil {
		if err := app.asynqPublisher.Close(); err != nil {
			logrus.Warnf("Failed to close notification publisher: %v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
