package config

import (
	"os"
	"strconv"
	"time"
)

// Image attachment styles supported by the request builder. Inline embeds the
// data URI inside the user text, structured sends an image_url content part.
const (
	AttachmentInline     = "inline"
	AttachmentStructured = "structured"
)

// Config holds all configuration for the thumbnail pipeline service
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Image generation configuration
	ImageModel string
	ImageSize  string

	// Which provider to use: "openai" or "stub" (no-network, for local runs)
	LLMProvider string

	// Analyzer configuration
	AnalysisProfile  string
	AnalyzeMaxTokens int
	ImageAttachment  string

	// Synthesizer configuration
	SynthMaxTokens   int
	SynthesisWindow  int
	ItemCharLimit    int
	PayloadCharLimit int

	// Rate limiting
	RateLimit  int
	RateWindow time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Server defaults
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		// OpenAI defaults
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		// Image generation defaults (16:9 thumbnail)
		ImageModel: getEnv("IMAGE_MODEL", "gpt-image-1"),
		ImageSize:  getEnv("IMAGE_SIZE", "1024x576"),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),

		// Analyzer defaults
		AnalysisProfile:  getEnv("ANALYSIS_PROFILE", "marketing"),
		AnalyzeMaxTokens: getIntEnv("ANALYZE_MAX_TOKENS", 250),
		ImageAttachment:  getEnv("IMAGE_ATTACHMENT", AttachmentStructured),

		// Synthesizer defaults
		SynthMaxTokens:   getIntEnv("SYNTH_MAX_TOKENS", 400),
		SynthesisWindow:  getIntEnv("SYNTHESIS_WINDOW", 5),
		ItemCharLimit:    getIntEnv("ITEM_CHAR_LIMIT", 2000),
		PayloadCharLimit: getIntEnv("PAYLOAD_CHAR_LIMIT", 60000),

		// Rate limiting defaults
		RateLimit:  getIntEnv("RATE_LIMIT", 30),
		RateWindow: getDurationEnv("RATE_WINDOW", time.Minute),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
