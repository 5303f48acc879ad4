package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server (status API in daemon mode)
	Port string
	Env  string // development, staging, production

	// Snapshot database (DATA_SOURCE=snapshot)
	Database DatabaseConfig

	// Redis (quote series cache)
	Redis RedisConfig

	// External APIs
	KRX      KRXConfig
	Naver    NaverConfig
	Yahoo    YahooConfig
	GitHub   GitHubConfig
	Slack    SlackConfig
	Telegram TelegramConfig

	// Prediction run
	Predict PredictConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	TTL      time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// KRXConfig holds KRX KIND (상장법인목록) configuration
type KRXConfig struct {
	ListingURL string
}

// NaverConfig holds Naver Finance chart configuration
type NaverConfig struct {
	ChartURL string
}

// YahooConfig holds Yahoo Finance chart configuration
type YahooConfig struct {
	ChartURL string
}

// GitHubConfig holds issue tracker configuration
type GitHubConfig struct {
	Token      string // FULL_ACCESS_TOKEN
	Repository string // "owner/repo" or bare "repo" (owner resolved from token)
	BaseURL    string
}

// SlackConfig holds chat webhook configuration
type SlackConfig struct {
	WebhookURL string
	Text       string
}

// TelegramConfig holds the optional telegram channel configuration
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Enabled reports whether the telegram channel is configured
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

// PredictConfig holds prediction run parameters
type PredictConfig struct {
	DataSource    string   // quotes | snapshot
	QuoteProvider string   // naver | yahoo
	Markets       []string // 대상 시장 (KOSPI, KOSDAQ)
	HistoryStart  time.Time

	MinPeriod int           // 최소 관측 수
	Periods   int           // 예측 기간 (일)
	TopK      int           // 게시할 상위 종목 수
	Budget    time.Duration // 전체 실행 시간 한도

	Workers      int     // 예측 워커 수 (1 = 순차)
	FetchWorkers int     // 시세 수집 워커 수
	RateLimit    float64 // 시세 요청/초

	ReportPath      string
	Schedule        string // cron (with seconds)
	ModelConfigPath string // 모델 설정 YAML (비어 있으면 기본값)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			TTL:      getEnvAsDuration("REDIS_TTL", "12h"),
		},

		// External APIs
		KRX: KRXConfig{
			ListingURL: getEnv("KRX_LISTING_URL", "http://kind.krx.co.kr/corpgeneral/corpList.do"),
		},
		Naver: NaverConfig{
			ChartURL: getEnv("NAVER_CHART_URL", "https://fchart.stock.naver.com/siseJson.naver"),
		},
		Yahoo: YahooConfig{
			ChartURL: getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
		},
		GitHub: GitHubConfig{
			Token:      getEnv("FULL_ACCESS_TOKEN", ""),
			Repository: getEnv("GITHUB_REPOSITORY", "propopol"),
			BaseURL:    getEnv("GITHUB_API_URL", "https://api.github.com"),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("WEBHOOK_URL", ""),
			Text:       getEnv("WEBHOOK_TEXT", "Propopol Stock Predictor"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnvAsInt64("TELEGRAM_CHAT_ID", 0),
		},

		Predict: PredictConfig{
			DataSource:      getEnv("DATA_SOURCE", "quotes"),
			QuoteProvider:   getEnv("QUOTE_PROVIDER", "naver"),
			Markets:         getEnvAsSlice("MARKETS", []string{"KOSPI"}),
			HistoryStart:    getEnvAsDate("HISTORY_START", "1995-05-02"),
			MinPeriod:       getEnvAsInt("MIN_PERIOD", 128),
			Periods:         getEnvAsInt("PERIODS", 14),
			TopK:            getEnvAsInt("TOP_K", 10),
			Budget:          getEnvAsDuration("TIME_BUDGET", "5h"),
			Workers:         getEnvAsInt("FORECAST_WORKERS", 1),
			FetchWorkers:    getEnvAsInt("FETCH_WORKERS", 4),
			RateLimit:       getEnvAsFloat("QUOTE_RATE_LIMIT", 10),
			ReportPath:      getEnv("REPORT_PATH", "README.md"),
			Schedule:        getEnv("PREDICT_SCHEDULE", "0 30 18 * * 1-5"),
			ModelConfigPath: getEnv("MODEL_CONFIG", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads an explicit .env file before reading the environment
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}
	return Load()
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// 게시 채널 인증 정보는 필수
	if c.GitHub.Token == "" {
		return fmt.Errorf("FULL_ACCESS_TOKEN is required")
	}
	if c.Slack.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Predict.DataSource {
	case "quotes":
	case "snapshot":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=snapshot")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: quotes, snapshot")
	}

	if c.Predict.QuoteProvider != "naver" && c.Predict.QuoteProvider != "yahoo" {
		return fmt.Errorf("QUOTE_PROVIDER must be one of: naver, yahoo")
	}

	if c.Predict.MinPeriod <= 0 || c.Predict.Periods <= 0 || c.Predict.TopK <= 0 {
		return fmt.Errorf("MIN_PERIOD, PERIODS and TOP_K must be positive")
	}

	if len(c.Predict.Markets) == 0 {
		return fmt.Errorf("MARKETS must name at least one market")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsDate(key string, defaultValue string) time.Time {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	date, err := time.Parse("2006-01-02", valueStr)
	if err != nil {
		date, _ = time.Parse("2006-01-02", defaultValue)
	}

	return date
}

// getEnvAsSlice reads a comma separated list, e.g. "KOSPI,KOSDAQ"
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}

	return values
}
