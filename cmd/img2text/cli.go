package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"img2text/internal/clipboard"
	"img2text/internal/config"
	"img2text/internal/extract"
	"img2text/internal/logger"
	"img2text/internal/ocr/engine"
	"img2text/internal/pipeline"
	"img2text/internal/session"
	"img2text/internal/writer"
)

type CLI struct {
	cfg        *config.Config
	imagesDir  string
	outputDir  string
	outputFile string
	csvFile    string
	engineType string
	language   string
	confidence float64
	copy       bool
	stdout     io.Writer
	stderr     io.Writer
}

func NewCLI(stdout, stderr io.Writer) *CLI {
	cfg := config.Load()
	return &CLI{
		cfg:        cfg,
		outputDir:  "output",
		engineType: cfg.Engine,
		language:   cfg.Language,
		confidence: cfg.MinConfidence,
		stdout:     stdout,
		stderr:     stderr,
	}
}

func (c *CLI) Run(args []string) error {
	fs := flag.NewFlagSet("img2text", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	fs.StringVar(&c.imagesDir, "images", c.imagesDir, "Directory containing images to process")
	fs.StringVar(&c.outputDir, "output", c.outputDir, "Output directory for the report (empty to skip)")
	fs.StringVar(&c.csvFile, "csv", c.csvFile, "Optional CSV file with one row per image")
	fs.StringVar(&c.engineType, "engine", c.engineType, "OCR engine type (tesseract, ollama, gemini)")
	fs.StringVar(&c.language, "lang", c.language, "Language hint, e.g. eng or eng+fra")
	fs.Float64Var(&c.confidence, "confidence", c.confidence, "Minimum word confidence, 0-100")
	fs.BoolVar(&c.copy, "copy", false, "Copy the report to the clipboard")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	if !(c.confidence >= 0 && c.confidence <= 100) {
		return fmt.Errorf("confidence must be between 0 and 100, got %v", c.confidence)
	}
	if c.imagesDir == "" && fs.NArg() == 0 {
		return fmt.Errorf("no input: pass -images <dir> or image files")
	}
	if c.cfg.Debug {
		logger.Enable(true)
	}

	if c.outputDir != "" {
		c.outputFile = filepath.Join(c.outputDir, writer.DefaultReportName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recognizer, err := engine.New(ctx, engine.Config{
		Type:         c.engineType,
		OllamaURL:    c.cfg.OllamaURL,
		OllamaModel:  c.cfg.OllamaModel,
		GeminiAPIKey: c.cfg.GeminiAPIKey,
		GeminiModel:  c.cfg.GeminiModel,
	})
	if err != nil {
		return fmt.Errorf("creating OCR engine: %w", err)
	}
	defer func() {
		logger.DebugLog("Closing OCR engine")
		recognizer.Close()
	}()

	return c.process(ctx, extract.NewExtractor(recognizer), fs.Args())
}

func (c *CLI) process(ctx context.Context, extractor *extract.Extractor, files []string) error {
	state := session.New()
	state.OnChange(c.printState())

	clients := pipeline.NewClients(extractor, state)
	defer clients.Close()

	res, err := pipeline.Run(ctx, clients, pipeline.Options{
		Directory:     c.imagesDir,
		Files:         files,
		Language:      c.language,
		MinConfidence: c.confidence,
		OutputFile:    c.outputFile,
		CSVFile:       c.csvFile,
	})
	if res != nil {
		paths := make([]string, 0, len(res.Failures))
		for path := range res.Failures {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(c.stderr, "Error processing %s: %v\n", path, res.Failures[path])
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, res.Report.String())

	if c.copy {
		state.Copy(clipboard.Write)
	}

	if c.outputFile != "" {
		fmt.Fprintf(c.stderr, "\nProcessing complete! Report saved to: %s\n", c.outputFile)
	}
	fmt.Fprintf(c.stderr, "Processed %d images\n", len(res.Images))
	return nil
}

// printState echoes status changes and visible progress to stderr.
func (c *CLI) printState() session.Listener {
	var lastStatus string
	lastProgress := -1
	return func(s session.Snapshot) {
		if s.Status != lastStatus {
			lastStatus = s.Status
			fmt.Fprintln(c.stderr, s.Status)
		}
		if s.ProgressVisible() && s.Progress != lastProgress {
			lastProgress = s.Progress
			fmt.Fprintf(c.stderr, "  %3d%%\n", s.Progress)
		}
	}
}
