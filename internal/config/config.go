package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	VerifyToken   string
	PageID        string
	PageToken     string
	OpenAIKey     string
	OpenAIModel   string
	DBDriver      string
	DBPath        string
	DBDSN         string
	ClosingMarker string
	HistoryLimit  int
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		VerifyToken:   getEnv("VERIFY_TOKEN", ""),
		PageID:        getEnv("PAGE_ID", ""),
		PageToken:     getEnv("PAGE_ACCESS_TOKEN", ""),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBPath:        getEnv("DB_PATH", "./funnel.db"),
		DBDSN:         getEnv("DB_DSN", ""),
		ClosingMarker: getEnv("CLOSING_MARKER", "🙏"),
		HistoryLimit:  getEnvInt("HISTORY_LIMIT", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
