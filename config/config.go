package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Booking      BookingConfig
	Notification NotificationConfig
	Reminder     ReminderConfig
	Admin        AdminConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
	LogLevel string
}

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxIdleConns  int
	MaxOpenConns  int
	ConnMaxLife   time.Duration
	AutoMigrate   bool
	MigrationsURL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig holds the scheduling rules applied by the booking validator.
type BookingConfig struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	// ProbeErrorPolicy is either "fail_open" or "fail_closed".
	ProbeErrorPolicy string
}

type NotificationConfig struct {
	// Driver selects the queue used for lifecycle events: "memory" or "asynq".
	Driver      string
	Workers     int
	BufferSize  int
	Queue       string
	Concurrency int
}

type ReminderConfig struct {
	Enabled     bool
	Cron        string
	Concurrency int
}

type AdminConfig struct {
	Email    string
	Password string
	FullName string
}

const (
	ProbeFailOpen   = "fail_open"
	ProbeFailClosed = "fail_closed"

	QueueDriverMemory = "memory"
	QueueDriverAsynq  = "asynq"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ISSUER", "clinic-booking")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	v.SetDefault("BOOKING_MIN_DURATION", "15m")
	v.SetDefault("BOOKING_MAX_DURATION", "240m")
	v.SetDefault("BOOKING_PROBE_ERROR_POLICY", ProbeFailOpen)

	v.SetDefault("NOTIFICATION_DRIVER", QueueDriverMemory)
	v.SetDefault("NOTIFICATION_WORKERS", 4)
	v.SetDefault("NOTIFICATION_BUFFER_SIZE", 256)
	v.SetDefault("NOTIFICATION_QUEUE", "notifications")
	v.SetDefault("NOTIFICATION_CONCURRENCY", 10)

	v.SetDefault("REMINDER_ENABLED", true)
	v.SetDefault("REMINDER_CRON", "0 9 * * *")
	v.SetDefault("REMINDER_CONCURRENCY", 8)

	v.SetDefault("ADMIN_FULL_NAME", "Administrator")
}

func LoadConfig() (*Config, error) {
	return Load(viper.GetViper(), ".env")
}

// Load reads configuration from the given env file (if present) and the
// process environment. A missing file is not an error.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	setDefaults(v)
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	minDuration, err := time.ParseDuration(v.GetString("BOOKING_MIN_DURATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_MIN_DURATION: %w", err)
	}

	maxDuration, err := time.ParseDuration(v.GetString("BOOKING_MAX_DURATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_MAX_DURATION: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			Timezone: v.GetString("APP_TIMEZONE"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USER"),
			Password:      v.GetString("DB_PASSWORD"),
			Name:          v.GetString("DB_NAME"),
			SSLMode:       v.GetString("DB_SSLMODE"),
			MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLife:   v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:   v.GetBool("DB_AUTO_MIGRATE"),
			MigrationsURL: v.GetString("DB_MIGRATIONS_URL"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			Issuer:        v.GetString("JWT_ISSUER"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Booking: BookingConfig{
			MinDuration:      minDuration,
			MaxDuration:      maxDuration,
			ProbeErrorPolicy: v.GetString("BOOKING_PROBE_ERROR_POLICY"),
		},
		Notification: NotificationConfig{
			Driver:      v.GetString("NOTIFICATION_DRIVER"),
			Workers:     v.GetInt("NOTIFICATION_WORKERS"),
			BufferSize:  v.GetInt("NOTIFICATION_BUFFER_SIZE"),
			Queue:       v.GetString("NOTIFICATION_QUEUE"),
			Concurrency: v.GetInt("NOTIFICATION_CONCURRENCY"),
		},
		Reminder: ReminderConfig{
			Enabled:     v.GetBool("REMINDER_ENABLED"),
			Cron:        v.GetString("REMINDER_CRON"),
			Concurrency: v.GetInt("REMINDER_CONCURRENCY"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_FULL_NAME"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Booking.MinDuration <= 0 || c.Booking.MaxDuration < c.Booking.MinDuration {
		return fmt.Errorf("invalid booking duration bounds: min=%s max=%s", c.Booking.MinDuration, c.Booking.MaxDuration)
	}
	switch c.Booking.ProbeErrorPolicy {
	case ProbeFailOpen, ProbeFailClosed:
	default:
		return fmt.Errorf("unknown probe error policy %q", c.Booking.ProbeErrorPolicy)
	}
	switch c.Notification.Driver {
	case QueueDriverMemory, QueueDriverAsynq:
	default:
		return fmt.Errorf("unknown notification driver %q", c.Notification.Driver)
	}
	return nil
}

// Location resolves the configured timezone used for day boundaries and
// business-hours checks.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
