package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	Env     string
	BaseURL string
	DBPath  string
}

var AppConfig *Config

func Load() {
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:    GetEnv("PORT", "3000"),
		Env:     GetEnv("ENV", "development"),
		BaseURL: GetEnv("BASE_URL", "http://localhost:3000"),
		DBPath:  GetEnv("DB_PATH", "./data/cloudsync.db"),
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
