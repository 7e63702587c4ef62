package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	APP_PORT    string
	BASE_URL    string
	LOG_LEVEL   string
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	JWT_SECRET string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	KAFKA_ADDRESS string

	SMTP_URL     string
	MAIL_NAME    string
	MAIL_ADDRESS string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		APP_PORT:    getenvDefault("APP_PORT", "8080"),
		BASE_URL:    getenvDefault("BASE_URL", "http://localhost:8080"),
		LOG_LEVEL:   getenvDefault("LOG_LEVEL", "info"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		JWT_SECRET: os.Getenv("JWT_SECRET"),
		AccessTTL:  time.Duration(getenvIntDefault("ACCESS_TTL_MIN", 120)) * time.Minute,
		RefreshTTL: time.Duration(getenvIntDefault("REFRESH_TTL_HOURS", 7*24)) * time.Hour,
		VerifyTTL:  time.Duration(getenvIntDefault("VERIFY_TTL_MIN", 60)) * time.Minute,

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		SMTP_URL:     os.Getenv("SMTP_URL"),
		MAIL_NAME:    getenvDefault("MAIL_NAME", "Stores REST API"),
		MAIL_ADDRESS: os.Getenv("MAIL_ADDRESS"),
	}

	return config, nil
}

func (c *Config) DSN() string {
	return "postgres://" + c.DB_USER + ":" + c.DB_PASSWORD + "@" + c.DB_HOST + ":" + c.DB_PORT + "/" + c.DB_NAME + "?sslmode=disable"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
