package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"img2text/internal/config"
	"img2text/internal/extract"
	img "img2text/internal/image"
	"img2text/internal/logger"
	"img2text/internal/session"
	"img2text/internal/writer"
)

type ExtractHandler struct {
	extractor  *extract.Extractor
	cfg        *config.Config
	engineName string

	// one batch at a time; providers make no concurrency promises
	slot chan struct{}
}

func NewExtractHandler(extractor *extract.Extractor, cfg *config.Config, engineName string) *ExtractHandler {
	return &ExtractHandler{
		extractor:  extractor,
		cfg:        cfg,
		engineName: engineName,
		slot:       make(chan struct{}, 1),
	}
}

type blockResponse struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type extractResponse struct {
	RunID  string          `json:"run_id"`
	Text   string          `json:"text"`
	Blocks []blockResponse `json:"blocks"`
}

func (h *ExtractHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "engine": h.engineName})
}

// Extract handles a multipart upload of one or more "images" and returns
// the report as JSON, or as a text attachment with ?download=1.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		http.Error(w, "no images uploaded", http.StatusBadRequest)
		return
	}

	images := make([]extract.Image, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			http.Error(w, fmt.Sprintf("reading %s: %v", fh.Filename, err), http.StatusBadRequest)
			return
		}
		if _, err := img.Detect(data); err != nil {
			http.Error(w, session.StatusNotImage, http.StatusBadRequest)
			return
		}
		images = append(images, extract.Image{Label: fh.Filename, Data: data})
	}

	language := r.FormValue("lang")
	if language == "" {
		language = h.cfg.Language
	}
	minConfidence, err := config.ParseConfidence(r.FormValue("confidence"), h.cfg.MinConfidence)
	if err != nil {
		http.Error(w, "confidence must be a number between 0 and 100", http.StatusBadRequest)
		return
	}

	runID := uuid.NewString()
	logger.DebugLog("[server]: run %s: %d images, lang=%s, confidence=%v", runID, len(images), language, minConfidence)

	ctx := r.Context()
	select {
	case h.slot <- struct{}{}:
	case <-ctx.Done():
		logger.DebugLog("[server]: run %s gave up waiting: %v", runID, ctx.Err())
		http.Error(w, "request cancelled while waiting for a previous batch", http.StatusServiceUnavailable)
		return
	}
	report := h.extractor.Extract(ctx, images, language, minConfidence, func(fraction float64) {
		logger.DebugLog("[server]: run %s progress %.0f%%", runID, fraction*100)
	})
	<-h.slot

	text := report.String()
	w.Header().Set("X-Run-ID", runID)

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", writer.DefaultReportName))
		if _, err := io.WriteString(w, text); err != nil {
			logger.DebugLog("[server]: run %s: writing download: %v", runID, err)
		}
		return
	}

	resp := extractResponse{RunID: runID, Text: text, Blocks: make([]blockResponse, 0, len(report.Blocks))}
	for _, b := range report.Blocks {
		br := blockResponse{Index: b.Index + 1, Label: b.Label, Text: b.Text}
		if b.Failed() {
			br.Text = extract.ErrorText
			br.Error = b.Err.Error()
		}
		resp.Blocks = append(resp.Blocks, br)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Preview returns a PNG thumbnail of the uploaded "image".
func (h *ExtractHandler) Preview(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "reading upload failed", http.StatusBadRequest)
		return
	}

	thumb, err := img.Preview(data, img.DefaultPreviewSize)
	if errors.Is(err, img.ErrNotImage) {
		http.Error(w, session.StatusNotImage, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(thumb); err != nil {
		logger.DebugLog("[server]: writing preview: %v", err)
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.DebugLog("[server]: encoding response: %v", err)
	}
}
