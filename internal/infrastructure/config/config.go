package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	DBPath          string

	// Generation backend
	GenAIURL   string // OpenAI-compatible endpoint, e.g. "http://localhost:1234"
	GenAIModel string // model name, e.g. "qwen3-8b"

	// Detached summarize jobs
	SummaryWorkers int
	SummaryBuffer  int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   getenvDefault("SERVER_ADDRESS", ":8080"),
		ShutdownTimeout: getDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		DBPath:          getenvDefault("DB_PATH", "qna.db"),
		GenAIURL:        getenvDefault("GENAI_URL", "http://localhost:1234"),
		GenAIModel:      getenvDefault("GENAI_MODEL", "qwen3-8b"),
		SummaryWorkers:  getIntDefault("SUMMARY_WORKERS", 2),
		SummaryBuffer:   getIntDefault("SUMMARY_BUFFER", 32),
	}
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getIntDefault(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Fatalf("config: %s=%q is not a valid positive integer", k, v)
	}
	return n
}
