package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	PreferenceSourceFile     = "file"
	PreferenceSourcePostgres = "postgres"

	AIProviderOpenAI = "openai"
	AIProviderMock   = "mock"
)

type Config struct {
	AppEnv           string
	AppName          string
	APIPrefix        string
	AppPort          string
	CORSAllowOrigins []string
	LogLevel         string
	LogFormat        string

	PreferenceSource   string
	PreferenceDataPath string
	DatabaseURL        string
	DefaultHourPolicy  string
	TopCategoryCount   int

	AIProvider       string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	AITimeoutSeconds int

	RefineThreshold    int
	RefineChunkSize    int
	RefineChunkOverlap int
	RefineMaxTokens    int

	LoginUser         string
	LoginPassword     string
	LoginPasswordHash string
	JWTSecret         string
	JWTIssuer         string
	SessionTTLHours   int
	CookieSecure      bool
}

func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		AppEnv:    getEnv("APP_ENV", "local"),
		AppName:   getEnv("APP_NAME", "Matjip Curator"),
		APIPrefix: getEnv("API_PREFIX", "/api/v1"),
		AppPort:   getEnv("APP_PORT", "8000"),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		PreferenceSource:   strings.ToLower(getEnv("PREFERENCE_SOURCE", PreferenceSourceFile)),
		PreferenceDataPath: getEnv("PREFERENCE_DATA_PATH", "category_recommendation_map.json"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DefaultHourPolicy:  getEnv("DEFAULT_HOUR_POLICY", "full_day"),
		TopCategoryCount:   getEnvInt("TOP_CATEGORY_COUNT", 3),

		AIProvider:       strings.ToLower(getEnv("AI_PROVIDER", AIProviderOpenAI)),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AITimeoutSeconds: getEnvInt("AI_TIMEOUT_SECONDS", 60),

		RefineThreshold:    getEnvInt("REFINE_THRESHOLD", 300),
		RefineChunkSize:    getEnvInt("REFINE_CHUNK_SIZE", 200),
		RefineChunkOverlap: getEnvInt("REFINE_CHUNK_OVERLAP", 50),
		RefineMaxTokens:    getEnvInt("REFINE_MAX_TOKENS", 100),

		LoginUser:         getEnv("LOGIN_USER", "admin"),
		LoginPassword:     getEnv("LOGIN_PASSWORD", "1234"),
		LoginPasswordHash: getEnv("LOGIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "matjip-curator"),
		SessionTTLHours:   getEnvInt("SESSION_TTL_HOURS", 12),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),
	}
}

func (c Config) Validate() error {
	switch c.AIProvider {
	case AIProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("OPENAI_API_KEY is required")
		}
	case AIProviderMock:
	default:
		return errors.New("AI_PROVIDER must be one of: openai, mock")
	}
	switch c.PreferenceSource {
	case PreferenceSourceFile:
		if strings.TrimSpace(c.PreferenceDataPath) == "" {
			return errors.New("PREFERENCE_DATA_PATH is required")
		}
	case PreferenceSourcePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when PREFERENCE_SOURCE=postgres")
		}
	default:
		return errors.New("PREFERENCE_SOURCE must be one of: file, postgres")
	}
	switch c.DefaultHourPolicy {
	case "full_day", "current_hour":
	default:
		return errors.New("DEFAULT_HOUR_POLICY must be one of: full_day, current_hour")
	}
	if c.TopCategoryCount <= 0 {
		return errors.New("TOP_CATEGORY_COUNT must be positive")
	}
	if c.RefineChunkOverlap >= c.RefineChunkSize {
		return errors.New("REFINE_CHUNK_OVERLAP must be smaller than REFINE_CHUNK_SIZE")
	}
	if strings.TrimSpace(c.LoginUser) == "" {
		return errors.New("LOGIN_USER is required")
	}
	if strings.TrimSpace(c.LoginPassword) == "" && strings.TrimSpace(c.LoginPasswordHash) == "" {
		return errors.New("LOGIN_PASSWORD or LOGIN_PASSWORD_HASH is required")
	}
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if secret == "change-me-in-production" {
		return errors.New("JWT_SECRET must not use insecure default value")
	}
	if len(secret) < 16 {
		return errors.New("JWT_SECRET is too short; use at least 16 characters")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
