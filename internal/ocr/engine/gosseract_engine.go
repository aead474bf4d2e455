package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"img2text/internal/logger"
	"img2text/internal/ocr"
)

const defaultLanguage = "eng"

type GosseractEngine struct {
	newClient func() *gosseract.Client
}

func NewGosseractEngine() *GosseractEngine {
	return &GosseractEngine{newClient: gosseract.NewClient}
}

func (g *GosseractEngine) Name() string { return "tesseract" }

// Recognize runs tesseract on the image bytes. A fresh client is used per
// call since gosseract clients are not safe to share.
func (g *GosseractEngine) Recognize(ctx context.Context, image []byte, language string, progress ocr.ProgressFunc) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	client := g.newClient()
	defer client.Close()

	if err := client.SetLanguage(splitLanguages(language)...); err != nil {
		return ocr.Result{}, fmt.Errorf("setting language %q: %w", language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return ocr.Result{}, fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return ocr.Result{}, fmt.Errorf("setting image: %w", err)
	}

	progress.Report(0)
	text, err := client.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognizing text: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("reading word boxes: %w", err)
	}
	progress.Report(1)

	lines := groupLines(boxes)
	logger.DebugLog("[tesseract]: recognized %d chars in %d lines", len(text), len(lines))
	return ocr.Result{Text: text, Lines: lines}, nil
}

func (g *GosseractEngine) Close() error {
	return nil
}

type lineKey struct{ block, par, line int }

// groupLines folds word boxes into lines keyed by block, paragraph and line
// number, in the order tesseract reports them.
func groupLines(boxes []gosseract.BoundingBox) []ocr.Line {
	var lines []ocr.Line
	index := make(map[lineKey]int)

	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		key := lineKey{b.BlockNum, b.ParNum, b.LineNum}
		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, ocr.Line{})
		}
		lines[i].Words = append(lines[i].Words, ocr.Word{Text: word, Confidence: b.Confidence})
	}
	return lines
}

func splitLanguages(language string) []string {
	var langs []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{defaultLanguage}
	}
	return langs
}
