// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. Values come from the
// environment (.env supported); tuning knobs come from an optional YAML file.
type Config struct {
	Port           string
	DatabaseURL    string
	GatewayAPIKey  string
	GatewayBaseURL string
	DebugMode      bool

	// AuthTokens maps bearer tokens to user IDs (AUTH_TOKENS="tok1=user1,tok2=user2").
	AuthTokens map[string]string

	Tuning Tuning
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// .env is optional
	godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		GatewayAPIKey:  getEnv("AI_GATEWAY_API_KEY", ""),
		GatewayBaseURL: getEnv("AI_GATEWAY_BASE_URL", "https://openrouter.ai/api/v1"),
		DebugMode:      getEnvBool("DEBUG_MODE", false),
		AuthTokens:     parseAuthTokens(os.Getenv("AUTH_TOKENS")),
	}

	tuning, err := LoadTuning(getEnv("TUNING_FILE", ""))
	if err != nil {
		return nil, fmt.Errorf("loading tuning file: %w", err)
	}
	cfg.Tuning = *tuning

	if cfg.GatewayAPIKey == "" {
		log.Println("warning: AI_GATEWAY_API_KEY is not set; planning and validation endpoints will fail")
	}

	return cfg, nil
}

func parseAuthTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, user, ok := strings.Cut(pair, "=")
		if !ok || token == "" || user == "" {
			continue
		}
		tokens[token] = user
	}
	return tokens
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}
