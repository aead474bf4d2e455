package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"img2text/internal/extract"
	img "img2text/internal/image"
	"img2text/internal/logger"
	"img2text/internal/session"
	"img2text/internal/writer"
)

var errNoImages = errors.New("no images to process")

// Options describe one directory or file-list run.
type Options struct {
	Directory     string
	Files         []string
	Language      string
	MinConfidence float64
	OutputFile    string // report text; skipped when empty
	CSVFile       string // per-image CSV; skipped when empty
}

type Clients struct {
	extractor *extract.Extractor
	state     *session.State
	csv       *writer.CSVWriter[extract.Block]
}

func NewClients(extractor *extract.Extractor, state *session.State) *Clients {
	return &Clients{
		extractor: extractor,
		state:     state,
		csv:       writer.NewCSVWriter(extract.BlockCSVRecord, extract.BlockCSVHeader),
	}
}

func (c *Clients) Close() {
	c.csv.Close()
}

// Result is the outcome of Run. Failures holds files that never made it
// into the batch plus output errors, keyed by path.
type Result struct {
	Report   extract.Report
	Images   []string
	Failures map[string]error
}

// Run collects images, extracts them as one batch and writes the outputs.
// Files that are unreadable or not images are left out of the batch and
// reported in Failures; an error is returned only when nothing can run.
func Run(ctx context.Context, clients *Clients, opts Options) (*Result, error) {
	logger.DebugLog("Pipeline started with directory=%s, files=%d, output=%s", opts.Directory, len(opts.Files), opts.OutputFile)

	res := &Result{Failures: make(map[string]error)}

	paths := append([]string(nil), opts.Files...)
	if opts.Directory != "" {
		found, err := walkFiles(ctx, opts.Directory)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	images := loadImages(paths, res)
	if len(images) == 0 {
		return res, errNoImages
	}

	if err := clients.state.Load(images); err != nil {
		return res, fmt.Errorf("loading batch: %w", err)
	}

	report, err := clients.state.Extract(ctx, clients.extractor, opts.Language, opts.MinConfidence)
	if err != nil {
		return res, fmt.Errorf("extracting: %w", err)
	}
	res.Report = report

	writeOutput(clients, opts, report, res)

	logger.DebugLog("Pipeline finished: %d images, %d failures", len(res.Images), len(res.Failures))
	return res, nil
}

func loadImages(paths []string, res *Result) []extract.Image {
	images := make([]extract.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.DebugLog("[loadImages]: reading %s: %v", path, err)
			res.Failures[path] = fmt.Errorf("reading %s: %w", path, err)
			continue
		}
		if _, err := img.Detect(data); err != nil {
			logger.DebugLog("[loadImages]: skipping %s: %v", path, err)
			res.Failures[path] = fmt.Errorf("%s: %w", path, err)
			continue
		}
		images = append(images, extract.Image{Label: path, Data: data})
		res.Images = append(res.Images, path)
	}
	return images
}
