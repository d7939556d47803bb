package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Leave      LeaveConfig
	Storage    StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       *time.Location
	AllowedOrigins []string
}

type AttendanceConfig struct {
	ScheduledSeconds int
	HalfDayThreshold float64
	WorkdayStart     time.Duration
	LockTimeout      time.Duration
}

type LeaveConfig struct {
	RHHostType string
}

type StorageConfig struct {
	Driver     string
	PolicyFile string
}

// Load reads envFile (when present) into the process environment and builds
// the configuration from it. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_timekeeping"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	tz, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       tz,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Attendance rules
	scheduled, err := strconv.Atoi(getEnv("ATTENDANCE_SCHEDULED_SECONDS", strconv.Itoa(attendance.DefaultScheduledSeconds)))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_SCHEDULED_SECONDS: %w", err)
	}
	threshold, err := strconv.ParseFloat(getEnv("ATTENDANCE_HALF_DAY_THRESHOLD", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_HALF_DAY_THRESHOLD: %w", err)
	}
	workdayStart, err := parseClock(getEnv("ATTENDANCE_WORKDAY_START", "09:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WORKDAY_START: %w", err)
	}
	lockTimeout, err := time.ParseDuration(getEnv("ATTENDANCE_LOCK_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LOCK_TIMEOUT: %w", err)
	}

	config.Attendance = AttendanceConfig{
		ScheduledSeconds: scheduled,
		HalfDayThreshold: threshold,
		WorkdayStart:     workdayStart,
		LockTimeout:      lockTimeout,
	}

	config.Leave = LeaveConfig{
		RHHostType: strings.ToUpper(getEnv("LEAVE_RH_HOST_TYPE", leave.TypeCasual)),
	}

	config.Storage = StorageConfig{
		Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		PolicyFile: getEnv("POLICY_FILE", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.ScheduledSeconds <= 0 {
		return fmt.Errorf("ATTENDANCE_SCHEDULED_SECONDS must be positive")
	}
	if c.Attendance.HalfDayThreshold <= 0 || c.Attendance.HalfDayThreshold > 1 {
		return fmt.Errorf("ATTENDANCE_HALF_DAY_THRESHOLD must be in (0, 1]")
	}
	if c.Attendance.LockTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_LOCK_TIMEOUT must be positive")
	}
	if c.Leave.RHHostType == "" || c.Leave.RHHostType == leave.TypeRestrictedHoliday {
		return fmt.Errorf("LEAVE_RH_HOST_TYPE %q is not a leave type that can host restricted holidays", c.Leave.RHHostType)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Policy returns the attendance rules in the configured time zone.
func (c *Config) Policy() attendance.Policy {
	return attendance.Policy{
		ScheduledSeconds: c.Attendance.ScheduledSeconds,
		HalfDayThreshold: c.Attendance.HalfDayThreshold,
		WorkdayStart:     c.Attendance.WorkdayStart,
		Location:         c.App.Timezone,
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// parseClock reads an "HH:MM" wall-clock time as an offset from midnight.
func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
