package extract

import (
	"context"
	"fmt"

	"img2text/internal/logger"
	"img2text/internal/ocr"
)

// Image is one submitted image. Its position in the batch is its index.
type Image struct {
	Label string
	Data  []byte
}

// Extractor runs batches through a single recognizer. It holds no state
// between calls.
type Extractor struct {
	recognizer ocr.Recognizer
}

func NewExtractor(recognizer ocr.Recognizer) *Extractor {
	return &Extractor{recognizer: recognizer}
}

// Extract recognizes images one at a time, in order. A failed image becomes
// an error block and the batch carries on, so the report always has one
// block per image. Progress from the recognizer is passed through as is.
func (e *Extractor) Extract(ctx context.Context, images []Image, language string, minConfidence float64, onProgress ocr.ProgressFunc) Report {
	if onProgress == nil {
		onProgress = func(float64) {}
	}

	report := Report{Blocks: make([]Block, 0, len(images))}
	for i, img := range images {
		block := Block{Index: i, Label: img.Label}

		if err := ctx.Err(); err != nil {
			logger.DebugLog("[extract]: context done before image %d: %v", i+1, err)
			block.Err = err
			report.add(block)
			continue
		}

		logger.DebugLog("[extract]: recognizing image %d/%d (%s)", i+1, len(images), img.Label)
		res, err := e.recognize(ctx, img, language, onProgress)
		if err != nil {
			logger.DebugLog("[extract]: recognition failed for image %d: %v", i+1, err)
			block.Err = err
			report.add(block)
			continue
		}

		block.Text = renderResult(res, minConfidence)
		logger.DebugLog("[extract]: image %d done, %d lines in, %d chars out", i+1, len(res.Lines), len(block.Text))
		report.add(block)
	}
	return report
}

func (e *Extractor) recognize(ctx context.Context, img Image, language string, onProgress ocr.ProgressFunc) (res ocr.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recognizer panicked on %s: %v", img.Label, r)
		}
	}()
	return e.recognizer.Recognize(ctx, img.Data, language, onProgress)
}
