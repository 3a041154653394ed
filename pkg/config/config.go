package config

import (
	"errors"
	"io/fs"
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

	Sources   SourcesConfig
	Roster    RosterConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Snapshots SnapshotConfig
	Cache     CacheConfig
	Exports   ExportConfig
	Reload    ReloadConfig
	Admin     AdminConfig
}

const (
	SourceCSV    = "csv"
	SourceSheets = "sheets"
	SourceXLSX   = "xlsx"

	ExportBackendLocal = "local"
	ExportBackendMinio = "minio"
)

// SourcesConfig names the two input sheets.
type SourcesConfig struct {
	Kind         string
	StudentsPath string
	TeachersPath string
	SkipHeader   bool
	Sheets       SheetsConfig
	XLSX         XLSXConfig
}

// SheetsConfig points at the form-response spreadsheets.
type SheetsConfig struct {
	CredentialsFile string
	StudentsID      string
	StudentsRange   string
	TeachersID      string
	TeachersRange   string
}

// XLSXConfig points at workbooks saved from the form responses. An empty
// Sheet reads the first worksheet.
type XLSXConfig struct {
	StudentsPath string
	TeachersPath string
	Sheet        string
}

// RosterConfig selects the schema revision and duplicate policy.
type RosterConfig struct {
	Schema               string
	DedupPolicy          string
	LegacyHelpersAtOnce  int
	LegacyHelpersPerWeek int
	LoadOnStart          bool
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SnapshotConfig toggles persisting each load to Postgres.
type SnapshotConfig struct {
	Enabled bool
}

// CacheConfig toggles caching the latest roster in Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ExportConfig controls where rendered rosters are written.
type ExportConfig struct {
	Backend    string
	StorageDir string
	Minio      MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ReloadConfig tunes the background reload worker pool.
type ReloadConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	StateTTL   time.Duration
}

// AdminConfig guards mutating endpoints.
type AdminConfig struct {
	TokenSecret string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Sources = SourcesConfig{
		Kind:         strings.ToLower(strings.TrimSpace(v.GetString("ROSTER_SOURCE"))),
		StudentsPath: v.GetString("STUDENTS_CSV"),
		TeachersPath: v.GetString("TEACHERS_CSV"),
		SkipHeader:   v.GetBool("CSV_SKIP_HEADER"),
		Sheets: SheetsConfig{
			CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
			StudentsID:      v.GetString("STUDENTS_SHEET_ID"),
			StudentsRange:   v.GetString("STUDENTS_SHEET_RANGE"),
			TeachersID:      v.GetString("TEACHERS_SHEET_ID"),
			TeachersRange:   v.GetString("TEACHERS_SHEET_RANGE"),
		},
		XLSX: XLSXConfig{
			StudentsPath: v.GetString("STUDENTS_XLSX"),
			TeachersPath: v.GetString("TEACHERS_XLSX"),
			Sheet:        v.GetString("XLSX_SHEET"),
		},
	}

	cfg.Roster = RosterConfig{
		Schema:               strings.ToLower(strings.TrimSpace(v.GetString("ROSTER_SCHEMA"))),
		DedupPolicy:          v.GetString("ROSTER_DEDUP_POLICY"),
		LegacyHelpersAtOnce:  v.GetInt("LEGACY_HELPERS_AT_ONCE"),
		LegacyHelpersPerWeek: v.GetInt("LEGACY_HELPERS_PER_WEEK"),
		LoadOnStart:          v.GetBool("ROSTER_LOAD_ON_START"),
	}

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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Snapshots = SnapshotConfig{Enabled: v.GetBool("ENABLE_SNAPSHOTS")}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("ROSTER_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Exports = ExportConfig{
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString("EXPORTS_BACKEND"))),
		StorageDir: v.GetString("EXPORTS_STORAGE_DIR"),
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
	}

	cfg.Reload = ReloadConfig{
		Workers:    v.GetInt("RELOAD_WORKERS"),
		MaxRetries: v.GetInt("RELOAD_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("RELOAD_RETRY_DELAY"), 5*time.Second),
		StateTTL:   parseDuration(v.GetString("RELOAD_STATE_TTL"), time.Hour),
	}

	cfg.Admin = AdminConfig{TokenSecret: v.GetString("ADMIN_TOKEN_SECRET")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ROSTER_SOURCE", SourceCSV)
	v.SetDefault("STUDENTS_CSV", "STUDENTS.csv")
	v.SetDefault("TEACHERS_CSV", "TEACHERS.csv")
	v.SetDefault("CSV_SKIP_HEADER", false)
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("STUDENTS_SHEET_RANGE", "A:O")
	v.SetDefault("TEACHERS_SHEET_RANGE", "A:O")
	v.SetDefault("STUDENTS_XLSX", "STUDENTS.xlsx")
	v.SetDefault("TEACHERS_XLSX", "TEACHERS.xlsx")
	v.SetDefault("XLSX_SHEET", "")

	v.SetDefault("ROSTER_SCHEMA", "current")
	v.SetDefault("ROSTER_DEDUP_POLICY", "last")
	v.SetDefault("LEGACY_HELPERS_AT_ONCE", 1)
	v.SetDefault("LEGACY_HELPERS_PER_WEEK", 1)
	v.SetDefault("ROSTER_LOAD_ON_START", true)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "helper_roster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SNAPSHOTS", false)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("ROSTER_CACHE_TTL", "24h")
	v.SetDefault("EXPORTS_BACKEND", ExportBackendLocal)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_BUCKET", "roster-exports")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("RELOAD_WORKERS", 1)
	v.SetDefault("RELOAD_MAX_RETRIES", 2)
	v.SetDefault("RELOAD_RETRY_DELAY", "5s")
	v.SetDefault("RELOAD_STATE_TTL", "1h")

	v.SetDefault("ADMIN_TOKEN_SECRET", "dev_admin_secret")
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
