package ocr

import "context"

// Word is a single recognized word. Confidence is in [0,100].
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Line is a provider-detected text line.
type Line struct {
	Words []Word `json:"words"`
}

// Result is what a Recognizer returns for one image. Text is the provider's
// raw full text; Lines may be empty for providers without word-level data.
type Result struct {
	Text  string `json:"text"`
	Lines []Line `json:"lines"`
}

// ProgressFunc receives recognition progress for the current image as a
// fraction in [0,1].
type ProgressFunc func(fraction float64)

// Recognizer is an external OCR provider. Implementations need not be safe
// for concurrent use.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte, language string, progress ProgressFunc) (Result, error)
	Close() error
}

// Report calls p if it is set.
func (p ProgressFunc) Report(fraction float64) {
	if p != nil {
		p(fraction)
	}
}
