package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	Env            string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	JWTSecret   string
	TokenExpiry time.Duration

	UploadMaxSize int64

	// Pronunciation judge: "speech" uses Google Cloud Speech, anything
	// else falls back to text matching against real-time recognition
	JudgeMode          string
	SpeechLanguageCode string

	// Google OAuth login
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// Amazon SES for password reset mail
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	SeedDemoData bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first, if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		Env:            getEnv("APP_ENV", "production"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./tonequest.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		JWTSecret:   getEnv("JWT_SECRET", "change-me-in-production"),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 24*time.Hour),

		UploadMaxSize: 5 * 1024 * 1024, // 5MB

		JudgeMode:          getEnv("JUDGE_MODE", "match"),
		SpeechLanguageCode: getEnv("SPEECH_LANGUAGE_CODE", "yue-Hant-HK"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "ToneQuest"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		SeedDemoData: getBool("SEED_DEMO_DATA", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
