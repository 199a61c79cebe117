package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"supertavern-core/internal/models"
)

// Config holds all application configuration
type Config struct {
	Port        string
	DataDir     string // Root directory for per-key JSON documents
	Environment string

	// Name the importance heuristic treats as the user's own messages
	UserSpeakerName string

	// Document read-cache TTL
	DocCacheTTL time.Duration

	// Optional JSON file overriding the analyzer sentiment lexicon
	LexiconFile string

	// Rate limiting for the API group (per IP)
	APIRateMax    int
	APIRateWindow time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		Environment: getEnv("ENVIRONMENT", "development"),

		UserSpeakerName: getEnv("USER_SPEAKER_NAME", "You"),

		DocCacheTTL: time.Duration(getIntEnv("DOC_CACHE_TTL_MINUTES", 30)) * time.Minute,

		LexiconFile: getEnv("LEXICON_FILE", ""),

		APIRateMax:    getIntEnv("API_RATE_LIMIT_MAX", 200),
		APIRateWindow: time.Duration(getIntEnv("API_RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
	}
}

// LoadLexicon loads a sentiment lexicon override from a JSON file
func LoadLexicon(filePath string) (*models.Lexicon, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var lexicon models.Lexicon
	if err := json.Unmarshal(data, &lexicon); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon JSON: %w", err)
	}

	return &lexicon, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
