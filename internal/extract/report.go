package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorText replaces the text of an image whose recognition failed.
const ErrorText = "Error extracting text."

// Block is the report entry for one image.
type Block struct {
	Index int
	Label string
	Text  string
	Err   error
}

func (b Block) Failed() bool { return b.Err != nil }

func (b Block) body() string {
	if b.Err != nil {
		return ErrorText
	}
	return b.Text
}

func (b Block) String() string {
	return fmt.Sprintf("--- Image %d ---\n%s\n\n", b.Index+1, b.body())
}

// Report holds one block per input image, in input order.
type Report struct {
	Blocks []Block
}

func (r *Report) add(b Block) {
	r.Blocks = append(r.Blocks, b)
}

// String is the report text: every block concatenated, then trimmed.
func (r Report) String() string {
	var sb strings.Builder
	for _, b := range r.Blocks {
		sb.WriteString(b.String())
	}
	return strings.TrimSpace(sb.String())
}

// Failed reports whether every block is an error marker.
func (r Report) Failed() bool {
	if len(r.Blocks) == 0 {
		return false
	}
	for _, b := range r.Blocks {
		if !b.Failed() {
			return false
		}
	}
	return true
}

func BlockCSVRecord(b Block) []string {
	status := "ok"
	if b.Failed() {
		status = "error"
	}
	return []string{strconv.Itoa(b.Index + 1), b.Label, status, b.body()}
}

func BlockCSVHeader() []string {
	return []string{"Index", "Label", "Status", "Text"}
}
