package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase filenames to their full paths in the export folder.
// Built once per run so attachment resolution is a pure lookup instead of
// a directory scan per message.
type Index struct {
	dir   string
	files map[string]string
}

// NewIndex scans dir (non-recursive, matching the flat WhatsApp export
// layout) and indexes every regular file except the excluded ones
// (typically the chat transcript itself).
func NewIndex(dir string, exclude ...string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning media folder: %w", err)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[strings.ToLower(name)] = struct{}{}
	}

	idx := &Index{dir: dir, files: make(map[string]string, len(entries))}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if _, ok := skip[lower]; ok {
			continue
		}
		idx.files[lower] = filepath.Join(dir, e.Name())
	}
	return idx, nil
}

// Resolve looks up a referenced filename. Lookup is case-insensitive since
// export zips sometimes normalize filename case.
func (i *Index) Resolve(name string) (string, bool) {
	path, ok := i.files[strings.ToLower(name)]
	return path, ok
}

// Len returns the number of indexed media files.
func (i *Index) Len() int {
	return len(i.files)
}
