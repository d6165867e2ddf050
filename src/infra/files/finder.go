package files

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/contre95/dupetrack/src/music"
)

var _ music.FileFinder = (*ExtensionFinder)(nil)

// ExtensionFinder walks a directory tree and returns files with one of the configured extensions.
type ExtensionFinder struct {
	extensions map[string]bool
}

// NewExtensionFinder creates a finder for the given extensions, e.g. ".mp3". Matching is case-insensitive.
func NewExtensionFinder(extensions []string) *ExtensionFinder {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &ExtensionFinder{extensions: exts}
}

// Supported reports whether path has one of the configured extensions.
func (f *ExtensionFinder) Supported(path string) bool {
	return f.extensions[strings.ToLower(filepath.Ext(path))]
}

// FindTracks returns matching files under root in lexical order.
// Unreadable subdirectories are logged and skipped.
func (f *ExtensionFinder) FindTracks(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.Type().IsRegular() && f.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}
