// Package session holds the presentation state around an extraction run:
// the loaded images, the last output, a status line and a progress value.
// Surfaces (CLI, HTTP) own one State each; the extractor stays stateless.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"img2text/internal/extract"
	img "img2text/internal/image"
)

const (
	StatusIdle      = "Drop an image to get started."
	StatusReady     = "Ready to extract text."
	StatusNotImage  = "Please choose an image file."
	StatusWorking   = "Working on OCR... this can take a moment."
	StatusComplete  = "Extraction complete."
	StatusFailed    = "Something went wrong. Please try another image."
	StatusCopied    = "Copied to clipboard."
	StatusCopyError = "Copy failed. Please select and copy manually."
)

var ErrNoImages = errors.New("no images loaded")

// Snapshot is a copy of the state handed to listeners.
type Snapshot struct {
	Status         string
	Progress       int
	Output         string
	ImageCount     int
	ActionsEnabled bool
}

// ProgressVisible mirrors the progress bar: shown only while a run is
// partway through.
func (s Snapshot) ProgressVisible() bool {
	return s.Progress > 0 && s.Progress < 100
}

type Listener func(Snapshot)

type State struct {
	mu             sync.Mutex
	images         []extract.Image
	output         string
	status         string
	progress       int
	actionsEnabled bool
	listeners      []Listener
}

func New() *State {
	return &State{status: StatusIdle}
}

// OnChange registers l to be called after every state change.
func (s *State) OnChange(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Status:         s.status,
		Progress:       s.progress,
		Output:         s.output,
		ImageCount:     len(s.images),
		ActionsEnabled: s.actionsEnabled,
	}
}

// update applies fn under the lock and notifies listeners outside it.
func (s *State) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Load replaces the current images. Empty input is ignored; any payload
// that is not an image rejects the whole set and keeps the previous one.
func (s *State) Load(images []extract.Image) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	for _, im := range images {
		if _, err := img.Detect(im.Data); err != nil {
			s.update(func() { s.status = StatusNotImage })
			return fmt.Errorf("loading %s: %w", im.Label, err)
		}
	}

	s.update(func() {
		s.images = append([]extract.Image(nil), images...)
		s.status = StatusReady
	})
	return nil
}

// Extract runs the loaded images through ex and stores the report text as
// the output.
func (s *State) Extract(ctx context.Context, ex *extract.Extractor, language string, minConfidence float64) (extract.Report, error) {
	s.mu.Lock()
	images := s.images
	s.mu.Unlock()
	if len(images) == 0 {
		return extract.Report{}, ErrNoImages
	}

	s.update(func() {
		s.output = ""
		s.actionsEnabled = false
		s.progress = 0
		s.status = StatusWorking
	})

	report := ex.Extract(ctx, images, language, minConfidence, func(fraction float64) {
		percent := int(math.Round(fraction * 100))
		s.update(func() { s.progress = percent })
	})

	out := report.String()
	s.update(func() {
		s.output = out
		if report.Failed() {
			s.status = StatusFailed
			s.progress = 0
		} else {
			s.status = StatusComplete
			s.progress = 100
		}
		s.actionsEnabled = out != ""
	})
	return report, nil
}

// Copy hands the current output to write (usually the clipboard) and
// records the outcome in the status line.
func (s *State) Copy(write func(string) error) error {
	out := s.Snapshot().Output
	err := write(out)
	s.update(func() {
		if err != nil {
			s.status = StatusCopyError
			return
		}
		s.status = StatusCopied
	})
	return err
}

func (s *State) Clear() {
	s.update(func() {
		s.images = nil
		s.output = ""
		s.status = StatusIdle
		s.progress = 0
		s.actionsEnabled = false
	})
}
