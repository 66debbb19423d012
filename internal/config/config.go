package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	defaultModelID   = "us.amazon.nova-lite-v1:0"
	defaultTimeout   = 25 * time.Second
	defaultLocalAddr = ":8080"
)

// Config is read once at cold start.
type Config struct {
	// EndpointURL takes precedence over EndpointParam.
	EndpointURL   string
	EndpointParam string
	ModelID       string
	Timeout       time.Duration
	LogLevel      zapcore.Level
	LocalAddr     string
}

// Load reads the process environment, after applying a .env file if one is
// present in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		EndpointURL:   getEnv("GENERATION_ENDPOINT_URL"),
		EndpointParam: getEnv("GENERATION_ENDPOINT_PARAM"),
		ModelID:       getEnvOrDefault("MODEL_ID", defaultModelID),
		Timeout:       getEnvDurationOrDefault("GENERATION_TIMEOUT", defaultTimeout),
		LocalAddr:     getEnvOrDefault("LOCAL_ADDR", defaultLocalAddr),
	}
	if cfg.EndpointURL == "" && cfg.EndpointParam == "" {
		return Config{}, errors.New("config: one of GENERATION_ENDPOINT_URL or GENERATION_ENDPOINT_PARAM must be set")
	}

	level, err := zapcore.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level
	return cfg, nil
}

// UsesParamStore reports whether the endpoint URL must be fetched from SSM.
func (c Config) UsesParamStore() bool {
	return c.EndpointURL == "" && c.EndpointParam != ""
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvOrDefault(key, def string) string {
	if v := getEnv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationOrDefault(key string, def time.Duration) time.Duration {
	v := getEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
