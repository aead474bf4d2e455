package engine

import (
	"context"
	"fmt"

	"img2text/internal/ocr"
)

// Config selects and configures an OCR provider.
type Config struct {
	Type         string
	OllamaURL    string
	OllamaModel  string
	GeminiAPIKey string
	GeminiModel  string
}

func New(ctx context.Context, cfg Config) (ocr.Recognizer, error) {
	switch cfg.Type {
	case "tesseract", "gosseract", "":
		return NewGosseractEngine(), nil
	case "ollama":
		return NewOllamaEngine(cfg.OllamaURL, cfg.OllamaModel), nil
	case "gemini":
		return NewGeminiEngine(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown engine type: %s", cfg.Type)
	}
}

var (
	_ ocr.Recognizer = (*GosseractEngine)(nil)
	_ ocr.Recognizer = (*OllamaEngine)(nil)
	_ ocr.Recognizer = (*GeminiEngine)(nil)
)
