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

// Storage backend identifiers selected via PROFILE_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	Session       SessionConfig
	CORS          CORSConfig
	Log           LogConfig
	Store         StoreConfig
	Consolidation ConsolidationConfig
	Classroom     ClassroomConfig
	Reports       ReportsConfig
	Email         EmailConfig
	Invitations   InvitationsConfig
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

// SessionConfig controls cookie session issuance and refresh.
type SessionConfig struct {
	Secret        string
	Expiry        time.Duration
	RefreshWindow time.Duration
	CookieName    string
	SecureCookie  string
	CookieDomain  string
	CookieSecure  bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig selects the profile data source backend at startup.
type StoreConfig struct {
	Backend string
}

// ConsolidationConfig carries the tunable weighting parameters of the
// score consolidation function.
type ConsolidationConfig struct {
	PerRecord          float64
	RecordCap          int
	DiversityBonus     float64
	CompletenessWeight float64
	ConsistencyBonus   float64
	ConsistencyBand    float64
}

// ClassroomConfig governs classroom analytics exposure and cache tuning.
type ClassroomConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ReportsConfig configures classroom report export.
type ReportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Retention       time.Duration
}

// EmailConfig configures the SES delivery client.
type EmailConfig struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
}

// InvitationsConfig controls bulk invitation batching against the SES rate limit.
type InvitationsConfig struct {
	BatchSize  int
	BatchDelay time.Duration
	Workers    int
	Retries    int
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

	cfg.Session = SessionConfig{
		Secret:        v.GetString("SESSION_SECRET"),
		Expiry:        parseDuration(v.GetString("SESSION_EXPIRY"), 24*time.Hour),
		RefreshWindow: parseDuration(v.GetString("SESSION_REFRESH_WINDOW"), 7*24*time.Hour),
		CookieName:    v.GetString("SESSION_COOKIE_NAME"),
		SecureCookie:  v.GetString("SESSION_SECURE_COOKIE_NAME"),
		CookieDomain:  v.GetString("SESSION_COOKIE_DOMAIN"),
		CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Store = StoreConfig{Backend: v.GetString("PROFILE_STORE")}

	cfg.Consolidation = ConsolidationConfig{
		PerRecord:          v.GetFloat64("CONSOLIDATION_PER_RECORD"),
		RecordCap:          v.GetInt("CONSOLIDATION_RECORD_CAP"),
		DiversityBonus:     v.GetFloat64("CONSOLIDATION_DIVERSITY_BONUS"),
		CompletenessWeight: v.GetFloat64("CONSOLIDATION_COMPLETENESS_WEIGHT"),
		ConsistencyBonus:   v.GetFloat64("CONSOLIDATION_CONSISTENCY_BONUS"),
		ConsistencyBand:    v.GetFloat64("CONSOLIDATION_CONSISTENCY_BAND"),
	}

	cfg.Classroom = ClassroomConfig{
		Enabled:  v.GetBool("ENABLE_CLASSROOM_ANALYTICS"),
		CacheTTL: parseDuration(v.GetString("CLASSROOM_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		Enabled:         v.GetBool("ENABLE_REPORTS"),
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		Retention:       parseDuration(v.GetString("REPORTS_RETENTION"), 7*24*time.Hour),
	}

	cfg.Email = EmailConfig{
		AWSRegion:  v.GetString("SES_REGION"),
		FromEmail:  v.GetString("SES_FROM_EMAIL"),
		FromName:   v.GetString("SES_FROM_NAME"),
		AppBaseURL: v.GetString("APP_BASE_URL"),
	}

	cfg.Invitations = InvitationsConfig{
		BatchSize:  v.GetInt("INVITATIONS_BATCH_SIZE"),
		BatchDelay: parseDuration(v.GetString("INVITATIONS_BATCH_DELAY"), time.Second),
		Workers:    v.GetInt("INVITATIONS_WORKERS"),
		Retries:    v.GetInt("INVITATIONS_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "learning_profile")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev_secret")
	v.SetDefault("SESSION_EXPIRY", "24h")
	v.SetDefault("SESSION_REFRESH_WINDOW", "168h")
	v.SetDefault("SESSION_COOKIE_NAME", "blp_session")
	v.SetDefault("SESSION_SECURE_COOKIE_NAME", "__blp_session")
	v.SetDefault("SESSION_COOKIE_DOMAIN", "")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PROFILE_STORE", StorePostgres)

	v.SetDefault("CONSOLIDATION_PER_RECORD", 12.0)
	v.SetDefault("CONSOLIDATION_RECORD_CAP", 4)
	v.SetDefault("CONSOLIDATION_DIVERSITY_BONUS", 15.0)
	v.SetDefault("CONSOLIDATION_COMPLETENESS_WEIGHT", 0.35)
	v.SetDefault("CONSOLIDATION_CONSISTENCY_BONUS", 6.0)
	v.SetDefault("CONSOLIDATION_CONSISTENCY_BAND", 0.75)

	v.SetDefault("ENABLE_CLASSROOM_ANALYTICS", true)
	v.SetDefault("CLASSROOM_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")

	v.SetDefault("SES_REGION", "us-east-1")
	v.SetDefault("SES_FROM_EMAIL", "")
	v.SetDefault("SES_FROM_NAME", "Begin Learning Profile")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")

	v.SetDefault("INVITATIONS_BATCH_SIZE", 10)
	v.SetDefault("INVITATIONS_BATCH_DELAY", "1s")
	v.SetDefault("INVITATIONS_WORKERS", 1)
	v.SetDefault("INVITATIONS_RETRIES", 3)
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
