package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	// FunctionKey authenticates orchestrator calls (X-Api-Key header).
	FunctionKey string

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	SIS      SISConfig
	LMS      LMSConfig
	Sync     SyncConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// SISConfig points at the student-information-system platform.
type SISConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// LMSConfig points at the learning-management-system platform.
type LMSConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	PageSize    int
	AccountID   int
}

// SyncConfig carries the institution-specific code tables and pipeline tuning.
// Status and course codes vary per institution and must stay adjustable without
// a rebuild, so none of them appear as literals in the decision path.
type SyncConfig struct {
	EnrolledStatusID       int
	CourseCompletedCode    string
	CourseScheduledCode    string
	CourseDroppedCode      string
	MeetingCancelledCode   string
	AttendanceWindowStart  string
	CampusTimezone         string
	StudentNumberChunkSize int
	LookupCacheTTL         time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.FunctionKey = v.GetString("FUNCTION_KEY")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SIS = SISConfig{
		BaseURL:    strings.TrimRight(v.GetString("SIS_BASE_URL"), "/"),
		APIKey:     v.GetString("SIS_API_KEY"),
		Timeout:    parseDuration(v.GetString("SIS_TIMEOUT"), 30*time.Second),
		MaxRetries: v.GetInt("SIS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("SIS_RETRY_DELAY"), 2*time.Second),
	}

	cfg.LMS = LMSConfig{
		BaseURL:     strings.TrimRight(v.GetString("LMS_BASE_URL"), "/"),
		BearerToken: v.GetString("LMS_BEARER_TOKEN"),
		Timeout:     parseDuration(v.GetString("LMS_TIMEOUT"), 120*time.Second),
		MaxRetries:  v.GetInt("LMS_MAX_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("LMS_RETRY_DELAY"), 2*time.Second),
		PageSize:    v.GetInt("LMS_PAGE_SIZE"),
		AccountID:   v.GetInt("LMS_ACCOUNT_ID"),
	}

	cfg.Sync = SyncConfig{
		EnrolledStatusID:       v.GetInt("SYNC_ENROLLED_STATUS_ID"),
		CourseCompletedCode:    v.GetString("SYNC_COURSE_COMPLETED_CODE"),
		CourseScheduledCode:    v.GetString("SYNC_COURSE_SCHEDULED_CODE"),
		CourseDroppedCode:      v.GetString("SYNC_COURSE_DROPPED_CODE"),
		MeetingCancelledCode:   v.GetString("SYNC_MEETING_CANCELLED_CODE"),
		AttendanceWindowStart:  v.GetString("SYNC_ATTENDANCE_WINDOW_START"),
		CampusTimezone:         v.GetString("SYNC_CAMPUS_TIMEZONE"),
		StudentNumberChunkSize: v.GetInt("SYNC_STUDENT_NUMBER_CHUNK_SIZE"),
		LookupCacheTTL:         parseDuration(v.GetString("SYNC_LOOKUP_CACHE_TTL"), time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/sync")
	v.SetDefault("FUNCTION_KEY", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "participation_reporting")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SIS_BASE_URL", "")
	v.SetDefault("SIS_API_KEY", "")
	v.SetDefault("SIS_TIMEOUT", "30s")
	v.SetDefault("SIS_MAX_RETRIES", 3)
	v.SetDefault("SIS_RETRY_DELAY", "2s")

	v.SetDefault("LMS_BASE_URL", "")
	v.SetDefault("LMS_BEARER_TOKEN", "")
	v.SetDefault("LMS_TIMEOUT", "120s")
	v.SetDefault("LMS_MAX_RETRIES", 3)
	v.SetDefault("LMS_RETRY_DELAY", "2s")
	v.SetDefault("LMS_PAGE_SIZE", 100)
	v.SetDefault("LMS_ACCOUNT_ID", 1)

	v.SetDefault("SYNC_ENROLLED_STATUS_ID", 13)
	v.SetDefault("SYNC_COURSE_COMPLETED_CODE", "C")
	v.SetDefault("SYNC_COURSE_SCHEDULED_CODE", "S")
	v.SetDefault("SYNC_COURSE_DROPPED_CODE", "D")
	v.SetDefault("SYNC_MEETING_CANCELLED_CODE", "C")
	v.SetDefault("SYNC_ATTENDANCE_WINDOW_START", "1900-01-01")
	v.SetDefault("SYNC_CAMPUS_TIMEZONE", "America/New_York")
	v.SetDefault("SYNC_STUDENT_NUMBER_CHUNK_SIZE", 10)
	v.SetDefault("SYNC_LOOKUP_CACHE_TTL", "1h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
