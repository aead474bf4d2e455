package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"img2text/internal/logger"
	"img2text/internal/ocr"
)

type OllamaEngine struct {
	baseURL string
	model   string
	client  *http.Client
}

type OllamaRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type OllamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaText struct {
	Text string `json:"text"`
}

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision"
)

const ocrPrompt = `
You are an OCR helper. Read all text visible in the image.

Return **only** a JSON object with this exact schema:

{
  "text": "<all text in the image, line breaks preserved>"
}

* Do not add any other text, explanations, or formatting.
* If no text is visible, use an empty string.
* Language hint: %s
`

func NewOllamaEngine(baseURL, model string) *OllamaEngine {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (o *OllamaEngine) Name() string { return "ollama" }

// Recognize asks the vision model for the image text. The model gives no
// word confidences, so only Result.Text is filled.
func (o *OllamaEngine) Recognize(ctx context.Context, image []byte, language string, progress ocr.ProgressFunc) (ocr.Result, error) {
	request := OllamaRequest{
		Model:  o.model,
		Prompt: fmt.Sprintf(ocrPrompt, language),
		Images: []string{base64.StdEncoding.EncodeToString(image)},
		Stream: false,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	progress.Report(0)
	resp, err := o.client.Do(req)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ocr.Result{}, fmt.Errorf("ollama request failed with status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("reading response: %w", err)
	}

	var ollamaResp OllamaResponse
	if err := json.Unmarshal(raw, &ollamaResp); err != nil {
		return ocr.Result{}, fmt.Errorf("unmarshalling response: %w", err)
	}

	obj, err := extractJSON(ollamaResp.Response)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("locating JSON in model output: %w", err)
	}

	var out ollamaText
	if err := json.Unmarshal(obj, &out); err != nil {
		return ocr.Result{}, fmt.Errorf("decoding model output: %w", err)
	}
	progress.Report(1)

	logger.DebugLog("[ollama]: model %s returned %d chars", o.model, len(out.Text))
	return ocr.Result{Text: out.Text}, nil
}

func (o *OllamaEngine) Close() error {
	return nil
}

// extractJSON returns the first complete JSON object embedded in input.
// Models often wrap the object in prose or code fences.
func extractJSON(input string) (json.RawMessage, error) {
	for start := strings.IndexByte(input, '{'); start >= 0; {
		dec := json.NewDecoder(strings.NewReader(input[start:]))
		var obj json.RawMessage
		if err := dec.Decode(&obj); err == nil && len(obj) > 0 && obj[0] == '{' {
			return obj, nil
		}

		next := strings.IndexByte(input[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, fmt.Errorf("no JSON object found in text")
}
