package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type WriteMode int

const (
	ModeReplace WriteMode = iota
	ModeAppend
)

var ErrClosed = errors.New("writer is closed")

type MapperFunc[T any] func(T) []string

type HeaderFunc func() []string

type writeRequest[T any] struct {
	rows []T
	path string
	mode WriteMode
	done chan error
}

// CSVWriter serializes writes through one goroutine so concurrent callers
// never interleave rows. The header is written once per file.
type CSVWriter[T any] struct {
	queue    chan writeRequest[T]
	stop     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	headered map[string]bool // owned by the worker goroutine
	mapper   MapperFunc[T]
	header   HeaderFunc
}

func NewCSVWriter[T any](mapper MapperFunc[T], header HeaderFunc) *CSVWriter[T] {
	cw := &CSVWriter[T]{
		queue:    make(chan writeRequest[T], 16),
		stop:     make(chan struct{}),
		headered: make(map[string]bool),
		mapper:   mapper,
		header:   header,
	}
	cw.wg.Add(1)
	go cw.loop()
	return cw
}

func (cw *CSVWriter[T]) loop() {
	defer cw.wg.Done()
	for {
		select {
		case req := <-cw.queue:
			req.done <- cw.write(req.rows, req.path, req.mode)
		case <-cw.stop:
			return
		}
	}
}

func (cw *CSVWriter[T]) Close() {
	cw.once.Do(func() {
		close(cw.stop)
		cw.wg.Wait()
	})
}

// Append adds rows to path, creating it with a header on first use.
func (cw *CSVWriter[T]) Append(rows []T, path string) error {
	return cw.submit(rows, path, ModeAppend)
}

// Replace truncates path and writes a fresh header and rows.
func (cw *CSVWriter[T]) Replace(rows []T, path string) error {
	return cw.submit(rows, path, ModeReplace)
}

func (cw *CSVWriter[T]) submit(rows []T, path string, mode WriteMode) error {
	req := writeRequest[T]{rows: rows, path: path, mode: mode, done: make(chan error, 1)}

	select {
	case cw.queue <- req:
	case <-cw.stop:
		return ErrClosed
	}

	select {
	case err := <-req.done:
		return err
	case <-cw.stop:
		// The loop may have taken the request just before stopping.
		select {
		case err := <-req.done:
			return err
		default:
			return ErrClosed
		}
	}
}

func (cw *CSVWriter[T]) write(rows []T, path string, mode WriteMode) error {
	if len(rows) == 0 && mode == ModeAppend {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == ModeAppend && cw.headered[path] {
		flags = os.O_WRONLY | os.O_APPEND
	}
	if mode == ModeReplace {
		cw.headered[path] = false
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if !cw.headered[path] && len(rows) > 0 {
		if err := w.Write(cw.header()); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		cw.headered[path] = true
	}
	for _, row := range rows {
		if err := w.Write(cw.mapper(row)); err != nil {
			return fmt.Errorf("writing CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
