package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"img2text/internal/extract"
)

func newBlockWriter() *CSVWriter[extract.Block] {
	return NewCSVWriter(extract.BlockCSVRecord, extract.BlockCSVHeader)
}

func TestCSVWriter_AppendMode(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "append_test.csv")
	writer := newBlockWriter()
	defer writer.Close()

	first := []extract.Block{{Index: 0, Label: "scan1.png", Text: "Hello"}}
	second := []extract.Block{{Index: 1, Label: "scan2.png", Err: errors.New("boom")}}

	expectedHeader := []string{"Index", "Label", "Status", "Text"}

	// Act
	err1 := writer.Append(first, outputPath)
	err2 := writer.Append(second, outputPath)

	// Assert
	if err1 != nil {
		t.Fatalf("First write failed: %v", err1)
	}
	if err2 != nil {
		t.Fatalf("Second write failed: %v", err2)
	}

	records := readCSVFile(t, outputPath)
	if len(records) != 3 {
		t.Fatalf("expected 3 records (header + data), got %d", len(records))
	}
	if !stringSlicesEqual(records[0], expectedHeader) {
		t.Errorf("expected header %v, got %v", expectedHeader, records[0])
	}
	if !stringSlicesEqual(records[1], []string{"1", "scan1.png", "ok", "Hello"}) {
		t.Errorf("unexpected first row %v", records[1])
	}
	if !stringSlicesEqual(records[2], []string{"2", "scan2.png", "error", extract.ErrorText}) {
		t.Errorf("unexpected second row %v", records[2])
	}
}

func TestCSVWriter_ReplaceMode(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "replace_test.csv")
	writer := newBlockWriter()
	defer writer.Close()

	// Act
	err1 := writer.Append([]extract.Block{{Label: "original.png", Text: "old"}}, outputPath)
	err2 := writer.Replace([]extract.Block{{Label: "replaced.png", Text: "new\nlines"}}, outputPath)

	// Assert
	if err1 != nil {
		t.Fatalf("First write failed: %v", err1)
	}
	if err2 != nil {
		t.Fatalf("Replace write failed: %v", err2)
	}

	records := readCSVFile(t, outputPath)
	if len(records) != 2 {
		t.Fatalf("expected 2 records after replace, got %d", len(records))
	}
	if records[1][1] != "replaced.png" || records[1][3] != "new\nlines" {
		t.Errorf("expected replaced content, got %v", records[1])
	}
}

func TestCSVWriter_ConcurrentWrites(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "concurrent_test.csv")
	writer := newBlockWriter()
	defer writer.Close()

	numGoroutines := 5
	var wg sync.WaitGroup

	// Act
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rows := []extract.Block{{Index: id, Label: fmt.Sprintf("img_%d.png", id), Text: fmt.Sprintf("text %d", id)}}
			if err := writer.Append(rows, outputPath); err != nil {
				t.Errorf("Goroutine %d failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	// Assert
	records := readCSVFile(t, outputPath)
	if len(records) != 1+numGoroutines {
		t.Errorf("expected %d records, got %d", 1+numGoroutines, len(records))
	}
}

func TestCSVWriter_EmptyData(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "empty_test.csv")
	writer := newBlockWriter()
	defer writer.Close()

	// Act
	err := writer.Append(nil, outputPath)

	// Assert
	if err != nil {
		t.Fatalf("Writing empty data failed: %v", err)
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Errorf("expected no file for empty append, stat err=%v", err)
	}
}

func TestCSVWriter_InvalidPath(t *testing.T) {
	// Arrange
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	writer := newBlockWriter()
	defer writer.Close()

	// Act
	err := writer.Append([]extract.Block{{Label: "a.png"}}, filepath.Join(blocker, "out.csv"))

	// Assert
	if err == nil {
		t.Errorf("expected error for path below a regular file, got none")
	}
}

func TestCSVWriter_Closed(t *testing.T) {
	writer := newBlockWriter()
	writer.Close()
	writer.Close()

	err := writer.Append([]extract.Block{{Label: "a.png"}}, filepath.Join(t.TempDir(), "x.csv"))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultReportName)

	if err := WriteText(path, "--- Image 1 ---\nHello"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if err := WriteText(path, "--- Image 1 ---\nBye"); err != nil {
		t.Fatalf("second WriteText failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if string(got) != "--- Image 1 ---\nBye" {
		t.Errorf("unexpected report %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the report in the directory, got %d entries", len(entries))
	}
}

// Helper functions
func readCSVFile(t *testing.T, path string) [][]string {
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	return records
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
