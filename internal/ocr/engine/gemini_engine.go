package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	img "img2text/internal/image"
	"img2text/internal/logger"
	"img2text/internal/ocr"
)

const defaultGeminiModel = "gemini-1.5-flash"

const geminiPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
	"- No formatting\n" +
	"- No markdown\n" +
	"- No explanations\n" +
	"- Preserve line breaks accurately from the visual layout.\n" +
	"Language hint: %s"

type GeminiEngine struct {
	client    *genai.Client
	modelName string
}

func NewGeminiEngine(ctx context.Context, apiKey, modelName string) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini engine requires an API key")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiEngine{client: cl, modelName: modelName}, nil
}

func (g *GeminiEngine) Name() string { return "gemini" }

func (g *GeminiEngine) Recognize(ctx context.Context, image []byte, language string, progress ocr.ProgressFunc) (ocr.Result, error) {
	format, payload, err := geminiImage(image)
	if err != nil {
		return ocr.Result{}, err
	}

	m := g.client.GenerativeModel(g.modelName)
	temperature := float32(0.1)
	m.Temperature = &temperature

	progress.Report(0)
	resp, err := m.GenerateContent(ctx, genai.ImageData(format, payload), genai.Text(fmt.Sprintf(geminiPrompt, language)))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("gemini generate: %w", err)
	}
	progress.Report(1)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ocr.Result{}, nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	logger.DebugLog("[gemini]: model %s returned %d chars", g.modelName, b.Len())
	return ocr.Result{Text: b.String()}, nil
}

// geminiImage returns the blob format and bytes to send. Gemini takes png and
// jpeg as-is; gif, bmp and tiff are converted to png first.
func geminiImage(data []byte) (string, []byte, error) {
	info, err := img.Detect(data)
	if err != nil {
		return "", nil, err
	}
	switch info.Format {
	case "png", "jpeg":
		return info.Format, data, nil
	}
	converted, err := img.ToPNG(data)
	if err != nil {
		return "", nil, fmt.Errorf("converting %s for gemini: %w", info.Format, err)
	}
	logger.DebugLog("[gemini]: converted %s image to png", info.Format)
	return "png", converted, nil
}

func (g *GeminiEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
