package extract

import (
	"strings"

	"img2text/internal/ocr"
)

// FilterLines renders the lines that pass minConfidence, one per row.
//
// A line is dropped only when none of its words reach minConfidence and its
// average confidence is below it too. A kept line shows its qualifying words,
// or every word when none qualify.
func FilterLines(lines []ocr.Line, minConfidence float64) string {
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		kept := make([]string, 0, len(line.Words))
		for _, w := range line.Words {
			if w.Confidence >= minConfidence {
				kept = append(kept, w.Text)
			}
		}

		if len(kept) == 0 && averageConfidence(line) < minConfidence {
			continue
		}
		if len(kept) == 0 {
			for _, w := range line.Words {
				kept = append(kept, w.Text)
			}
		}

		row := strings.Join(kept, " ")
		if strings.TrimSpace(row) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return strings.TrimSpace(strings.Join(rows, "\n"))
}

// averageConfidence is 0 for a line without words.
func averageConfidence(line ocr.Line) float64 {
	if len(line.Words) == 0 {
		return 0
	}
	var total float64
	for _, w := range line.Words {
		total += w.Confidence
	}
	return total / float64(len(line.Words))
}

// renderResult applies the filter and falls back to the provider's full text
// when nothing survives.
func renderResult(res ocr.Result, minConfidence float64) string {
	if text := FilterLines(res.Lines, minConfidence); text != "" {
		return text
	}
	return strings.TrimSpace(res.Text)
}
