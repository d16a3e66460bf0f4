package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API      APIConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Server   ServerConfig
	Swipe    SwipeConfig
	Notify   NotifyConfig
	Sentry   SentryConfig
}

// APIConfig - 원격 API 서버 설정
type APIConfig struct {
	BaseURL        string
	Timeout        time.Duration
	TokenPath      string
	RefreshPath    string
	ProfilePath    string
	RegisterPath   string
	ValidateQRPath string
	CandidatesPath string
	SwipePath      string
	MatchesPath    string
}

// StorageConfig - credential store 설정
//
// Driver: file | postgres | memory
type StorageConfig struct {
	Driver    string
	FilePath  string
	Secret    string
	Namespace string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// ServerConfig - 로컬 브리지(gin) 설정
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type SwipeConfig struct {
	AutoRefill bool
}

// NotifyConfig - 이벤트 릴레이 webhook 설정 (URL이 비어 있으면 비활성)
type NotifyConfig struct {
	WebhookURL    string
	MatchTemplate string
}

type SentryConfig struct {
	DSN         string
	Environment string
}

// Load - 환경변수에서 설정을 읽음 (.env가 있으면 먼저 로드)
func Load() Config {
	_ = godotenv.Load()

	return Config{
		API: APIConfig{
			BaseURL:        strings.TrimRight(getenv("API_URL", "http://localhost:8000"), "/"),
			Timeout:        getduration("API_TIMEOUT", 15*time.Second),
			TokenPath:      getenv("API_TOKEN_PATH", "/token"),
			RefreshPath:    getenv("API_REFRESH_PATH", "/token/refresh"),
			ProfilePath:    getenv("API_PROFILE_PATH", "/profile"),
			RegisterPath:   getenv("API_REGISTER_PATH", "/register"),
			ValidateQRPath: getenv("API_VALIDATE_QR_PATH", "/verify-qr"),
			CandidatesPath: getenv("API_CANDIDATES_PATH", "/candidates"),
			SwipePath:      getenv("API_SWIPE_PATH", "/swipe"),
			MatchesPath:    getenv("API_MATCHES_PATH", "/matches"),
		},
		Storage: StorageConfig{
			Driver:    getenv("STORAGE_DRIVER", "file"),
			FilePath:  getenv("STORAGE_FILE", ".cuceimatch/session.json"),
			Secret:    os.Getenv("STORAGE_SECRET"),
			Namespace: getenv("STORAGE_NAMESPACE", "auth-storage"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Server: ServerConfig{
			Addr:           getenv("BRIDGE_ADDR", "127.0.0.1:8080"),
			AllowedOrigins: splitList(getenv("BRIDGE_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Swipe: SwipeConfig{
			AutoRefill: getbool("SWIPE_AUTO_REFILL", false),
		},
		Notify: NotifyConfig{
			WebhookURL:    os.Getenv("NOTIFY_WEBHOOK_URL"),
			MatchTemplate: getenv("NOTIFY_MATCH_TEMPLATE", `{"text":"New match with {{match.other_name}} ({{match.id}})"}`),
		},
		Sentry: SentryConfig{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: getenv("APP_ENV", "development"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// "15s", "2m" 형식 우선, 숫자만 있으면 초 단위로 해석
func getduration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
