package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveImages writes the inline images of the page to dir as
// <prefix>_<index>_<seed>.png and returns the written paths
func SaveImages(dir, prefix string, page *Page) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for i, c := range page.Results {
		if c.Data == nil {
			continue
		}
		name := fmt.Sprintf("%s_%d_%s.png", prefix, i, FormatSeed(c.Seed))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, c.Data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
