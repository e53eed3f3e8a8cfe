package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Secret        string
	DatabaseDSN   string
	HTTPPort      string
	LogLevel      string
	CatalogCSV    string
	PatientsCSV   string
	SalesAPIURL   string
	SalesAPIToken string
	SubmitTimeout time.Duration
	DraftBackend  string
	RedisAddr     string
}

// Load reads configuration from the environment, after merging an optional
// .env file, with reasonable defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Secret:        getenv("SECRET", "dev_secret"),
		DatabaseDSN:   getenv("DATABASE_DSN", "file:medeasy.db"),
		HTTPPort:      getenv("HTTP_PORT", "8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		CatalogCSV:    getenv("CATALOG_CSV", "assets/catalog.csv"),
		PatientsCSV:   os.Getenv("PATIENTS_CSV"),
		SalesAPIURL:   getenv("SALES_API_URL", "http://localhost:9090/api"),
		SalesAPIToken: os.Getenv("SALES_API_TOKEN"),
		SubmitTimeout: 30 * time.Second,
		DraftBackend:  getenv("DRAFT_BACKEND", "sql"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}

	if raw := os.Getenv("SUBMIT_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			log.Printf("invalid SUBMIT_TIMEOUT value %q, defaulting to %s", raw, cfg.SubmitTimeout)
		} else {
			cfg.SubmitTimeout = timeout
		}
	}

	switch cfg.DraftBackend {
	case "sql", "redis", "memory":
	default:
		log.Printf("invalid DRAFT_BACKEND value %q, defaulting to sql", cfg.DraftBackend)
		cfg.DraftBackend = "sql"
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
