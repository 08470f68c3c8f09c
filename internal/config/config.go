package config

import (
	"os"
	"time"
)

type Config struct {
	// MongoURI empty means the in-memory room store.
	MongoURI string
	// RedisAddr empty disables the live leaderboard.
	RedisAddr      string
	MongoDatabase  string
	HTTPPort       string
	JWTSecret      string
	ReaperInterval time.Duration
}

func Load() *Config {
	return &Config{
		MongoURI:       os.Getenv("MONGO_URI"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "quizrooms"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		ReaperInterval: getDuration("REAPER_INTERVAL", 10*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
