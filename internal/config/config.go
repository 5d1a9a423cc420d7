package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config is the environment-supplied client configuration. The services
// only branch on MockEnabled and APIVersion; everything else feeds the HTTP
// client and the token store.
type Config struct {
	BaseURL     string
	MockEnabled bool
	APIVersion  string
	Timeout     time.Duration
	TokenFile   string
	MockLatency time.Duration
}

// Load reads configuration from the environment with the defaults the
// portal shipped with.
func Load() *Config {
	return &Config{
		BaseURL:     getEnv("PORTAL_BASE_URL", "http://localhost:8080/api"),
		MockEnabled: getEnvAsBool("PORTAL_MOCK_ENABLED", false),
		APIVersion:  getEnv("PORTAL_API_VERSION", "v2"),
		Timeout:     time.Duration(getEnvAsInt("PORTAL_TIMEOUT_SECONDS", 15)) * time.Second,
		TokenFile:   getEnv("PORTAL_TOKEN_FILE", ""),
		MockLatency: time.Duration(getEnvAsInt("PORTAL_MOCK_LATENCY_MS", 150)) * time.Millisecond,
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultVal)
		return defaultVal
	}
	return val
}
