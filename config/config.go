package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string
	APP_URL    string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string

	OPENAI_API_KEY string
	OPENAI_MODEL   string

	// Tokens granted to every new account (reason: signup_bonus).
	SIGNUP_BONUS_TOKENS int64

	// Flat ledger cost of one Pine Script generation.
	SCRIPT_GENERATION_COST int64

	// AI assistant rate limit (requests per minute per user).
	AI_REQUESTS_PER_MINUTE int
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")

	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")
	OPENAI_MODEL = getEnv("OPENAI_MODEL", "gpt-4o-mini")

	SIGNUP_BONUS_TOKENS = getEnvInt64("SIGNUP_BONUS_TOKENS", 10000)
	SCRIPT_GENERATION_COST = getEnvInt64("SCRIPT_GENERATION_COST", 500)
	AI_REQUESTS_PER_MINUTE = int(getEnvInt64("AI_REQUESTS_PER_MINUTE", 10))
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v, exists := os.LookupEnv(key)
	if !exists || v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %q", key, v)
	}
	return n
}
