package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	// BackendURL is the base URL of the CSCORE core backend that owns all
	// business logic (grading, persistence, scoring).
	BackendURL     string
	GatewayTimeout time.Duration

	// SubmitTimeout bounds the terminal submission call so an attempt can
	// never hang in the submitting state.
	SubmitTimeout time.Duration

	RedisURL string

	Casdoor CasdoorConfig
	Events  EventConfig
}

// CasdoorConfig identifies the Casdoor application this service validates
// tokens against. Token issuance itself happens elsewhere.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

func LoadConfig() (*Config, error) {
	// .env is a development convenience; absence is fine in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8086"),
		GatewayTimeout: getEnvSeconds("GATEWAY_TIMEOUT_SECONDS", 30),
		SubmitTimeout:  getEnvSeconds("SUBMIT_TIMEOUT_SECONDS", 20),
		RedisURL:       getEnv("REDIS_URL", ""),
		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", "http://localhost:8000"),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Certificate:  getEnv("CASDOOR_CERTIFICATE", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", "cscore"),
			Application:  getEnv("CASDOOR_APPLICATION", "cscore-web"),
		},
		Events: LoadEventConfig(),
	}

	if err := validateURL("BACKEND_URL", cfg.BackendURL); err != nil {
		return nil, err
	}
	if err := validateURL("CASDOOR_ENDPOINT", cfg.Casdoor.Endpoint); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateURL(name, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, value)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultSeconds) * time.Second
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return time.Duration(defaultSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}
