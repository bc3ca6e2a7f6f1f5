package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port        int
	Environment string

	// Database
	DatabaseURL      string
	DBMaxConnections int

	// Archive sink (S3); archiving is disabled when the bucket is empty
	S3Bucket    string
	S3Region    string
	AWSEndpoint string // for LocalStack/MinIO in development

	// Imports
	MaxUploadBytes   int64
	BusinessTimezone string
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnvInt("PORT", 8080),
		Environment:      getEnv("ENVIRONMENT", "development"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBMaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 25),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Region:         getEnv("S3_REGION", "eu-central-1"),
		AWSEndpoint:      getEnv("AWS_ENDPOINT", ""),
		MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "Europe/Moscow"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.S3Bucket != "" && cfg.S3Region == "" {
		return nil, fmt.Errorf("S3_REGION is required when S3_BUCKET is set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
