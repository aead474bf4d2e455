package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"img2text/internal/logger"
)

// walkFiles lists image files directly inside directory, sorted by name so
// report order is stable.
func walkFiles(ctx context.Context, directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		logger.DebugLog("[walkFiles]: failed to read directory %s: %v", directory, err)
		return nil, fmt.Errorf("reading directory %s: %w", directory, err)
	}

	var paths []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() || !isImageFile(name) {
			continue
		}
		logger.DebugLog("[walkFiles]: found %s", name)
		paths = append(paths, filepath.Join(directory, name))
	}
	sort.Strings(paths)
	return paths, nil
}

func isImageFile(filename string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "jpg", "jpeg", "png", "tif", "tiff", "bmp", "gif":
		return true
	}
	return false
}
