package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DatabaseURL string
	JWTExpiry   time.Duration
	Port        string
	SiteName    string

	// OpenAI 推荐生成配置
	OpenAIKey     string `validate:"required"`
	OpenAIModel   string
	OpenAIBaseURL string `validate:"required,url"`
	OpenAITemp    float64

	// OMDB 元数据补全配置
	OMDBKey     string `validate:"required"`
	OMDBBaseURL string `validate:"required,url"`

	// 外部调用超时：元数据 15 秒，推荐生成 30 秒
	SuggestTimeout time.Duration
	EnrichTimeout  time.Duration

	// 本地缓存：TTL 与容量作为参数传入，不做隐藏常量
	CacheTTL      time.Duration
	CacheCapacity int

	// 生成重试策略
	GenerateAttempts int
	RetryDelay       time.Duration

	// 排除列表与历史清理
	ExclusionContextSize int
	HistoryKeepCount     int
	RecentWindowDays     int
}

// Load 加载配置
func Load() *Config {
	expiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "72"))

	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "findy")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	appSecret := getEnv("APP_SECRET", getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

	if getEnv("APP_ENV", "development") == "production" && appSecret == "your-secret-key-change-in-production" {
		fmt.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	temp, _ := strconv.ParseFloat(getEnv("OPENAI_TEMPERATURE", "0.8"), 64)
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "5"))
	cacheCap, _ := strconv.Atoi(getEnv("CACHE_CAPACITY", "1000"))
	attempts, _ := strconv.Atoi(getEnv("GENERATE_ATTEMPTS", "3"))
	retryDelay, _ := strconv.Atoi(getEnv("GENERATE_RETRY_SECONDS", "1"))
	exclusionSize, _ := strconv.Atoi(getEnv("EXCLUSION_CONTEXT_SIZE", "30"))
	keepCount, _ := strconv.Atoi(getEnv("HISTORY_KEEP_COUNT", "50"))
	recentDays, _ := strconv.Atoi(getEnv("RECENT_WINDOW_DAYS", "7"))

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		AppSecret:   appSecret,
		DatabaseURL: dbURL,
		JWTExpiry:   time.Duration(expiryHours) * time.Hour,
		Port:        getEnv("PORT", "5008"),
		SiteName:    getEnv("SITE_NAME", "Findy"),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITemp:    temp,

		OMDBKey:     getEnv("OMDB_API_KEY", ""),
		OMDBBaseURL: getEnv("OMDB_BASE_URL", "https://www.omdbapi.com/"),

		SuggestTimeout: 30 * time.Second,
		EnrichTimeout:  15 * time.Second,

		CacheTTL:      time.Duration(cacheTTL) * time.Minute,
		CacheCapacity: cacheCap,

		GenerateAttempts: attempts,
		RetryDelay:       time.Duration(retryDelay) * time.Second,

		ExclusionContextSize: exclusionSize,
		HistoryKeepCount:     keepCount,
		RecentWindowDays:     recentDays,
	}
}

// Validate 校验必填配置（API Key 缺失时尽早失败）
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
