package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL     string
	TokenSecret     string
	HTTPAddr        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MetricsUser     string
	MetricsPass     string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Msg(".env file not found")
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		MetricsUser:     os.Getenv("METRICS_USER"),
		MetricsPass:     os.Getenv("METRICS_PASS"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}

	return d
}
