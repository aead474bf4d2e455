package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Engine         string
	Language       string
	MinConfidence  float64
	OllamaURL      string
	OllamaModel    string
	GeminiAPIKey   string
	GeminiModel    string
	Port           string
	AllowedOrigins []string
	MaxUploadMB    int
	RequestTimeout time.Duration
	Debug          bool
}

// Load reads .env (when present) and the environment. Unset or malformed
// values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Engine:         getEnv("OCR_ENGINE", "tesseract"),
		Language:       getEnv("OCR_LANG", "eng"),
		MinConfidence:  clampConfidence(getEnvFloat("MIN_CONFIDENCE", 60)),
		OllamaURL:      getEnv("OLLAMA_URL", ""),
		OllamaModel:    getEnv("OLLAMA_MODEL", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 10),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 120)) * time.Second,
		Debug:          getEnv("DEBUG", "") == "1",
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("WARN: %s=%q not a positive int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		log.Printf("WARN: %s=%q not a number, using default %v", key, v, def)
		return def
	}
	return f
}

func clampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// ParseConfidence parses a user supplied threshold and clamps it to [0,100].
// NaN is rejected since it compares false against every confidence.
func ParseConfidence(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("confidence %q is not a number", s)
	}
	return clampConfidence(f), nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
