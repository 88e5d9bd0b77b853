package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	Port                string
	DatabasePath        string
	LogLevel            string
	JWTSecret           string
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration
	TransactionPINHash  string
	BrandName           string
	ConfidentialityNote string
	KESPerUSD           float64
	FrontendBaseURL     string
	MaxUploadSizeBytes  int64
}

// Cfg is the global application configuration, populated by LoadConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		// Try one directory up, for running from cmd directories during dev.
		err = godotenv.Load("../.env")
		if err != nil {
			log.Println("No .env file found, relying on environment variables")
		}
	}

	Cfg = &AppConfig{
		Port:                getEnv("PORT", "8080"),
		DatabasePath:        getEnv("DATABASE_PATH", "./ledgerbook.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		JWTSecret:           getRequiredEnv("JWT_SECRET"),
		AccessTokenExpiry:   getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenExpiry:  getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
		TransactionPINHash:  getEnv("TRANSACTION_PIN_HASH", ""),
		BrandName:           getEnv("BRAND_NAME", "LedgerBook"),
		ConfidentialityNote: getEnv("CONFIDENTIALITY_NOTE", "Confidential - For intended recipient only"),
		KESPerUSD:           getEnvAsFloat("KES_PER_USD", 130.0),
		FrontendBaseURL:     getEnv("FRONTEND_BASE_URL", "http://localhost:5173"),
		MaxUploadSizeBytes:  getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 5*1024*1024),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getRequiredEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set", key)
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("WARN: Invalid float value for %s, using default %v", key, fallback)
		return fallback
	}
	return value
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("WARN: Invalid integer value for %s, using default %v", key, fallback)
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("WARN: Invalid duration value for %s, using default %v", key, fallback)
		return fallback
	}
	return value
}
