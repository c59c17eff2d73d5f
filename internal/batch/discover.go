package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skippedDirs are never treated as iFlow projects.
var skippedDirs = []string{"__pycache__", "Extracted", "extracted_confirm_product"}

// Document is one discovered iFlow project.
type Document struct {
	// Folder is the project directory name, used as the folder display name.
	Folder string `json:"folder"`
	Dir    string `json:"dir"`
	Path   string `json:"path"`
}

// Discover lists the immediate subdirectories of baseDir that hold a flow file matching
// pattern, in name order. The first match in sorted order is taken as the flow file.
func Discover(baseDir, pattern string, exclude []string) ([]Document, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid flow pattern %q", pattern)
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", baseDir, err)
	}

	var docs []Document
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || skipped(name, exclude) {
			continue
		}

		dir := filepath.Join(baseDir, name)
		matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("matching %s in %s: %w", pattern, dir, err)
		}
		if len(matches) == 0 {
			continue
		}
		slices.Sort(matches)
		docs = append(docs, Document{
			Folder: name,
			Dir:    dir,
			Path:   filepath.Join(dir, filepath.FromSlash(matches[0])),
		})
	}
	return docs, nil
}

func skipped(name string, exclude []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains(skippedDirs, name) || slices.Contains(exclude, name)
}
