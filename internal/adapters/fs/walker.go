// Package fs provides file system adapters for walking and fingerprinting
// input paths.
package fs

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker walks directory trees in lexicographic order on relative path.
//
// Symlinks are followed once: a visited set of resolved directory paths
// prevents cycles. Entries under the state directory are excluded.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Walk calls fn for every regular file under root with the file's path
// relative to root and its absolute path. The walk order is lexicographic on
// relative path, independent of platform directory ordering.
func (w *Walker) Walk(root string, fn func(rel, abs string) error) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve walk root"), "path", root)
	}
	visited := map[string]bool{resolved: true}

	// Collect first, then sort: per-directory name order alone would put
	// "a/b" before "a.txt", which is not lexicographic on relative path.
	type file struct{ rel, abs string }
	var files []file
	if err := w.walkDir(root, "", visited, func(rel, abs string) error {
		files = append(files, file{rel: rel, abs: abs})
		return nil
	}); err != nil {
		return err
	}
	slices.SortFunc(files, func(a, b file) int { return strings.Compare(a.rel, b.rel) })

	for _, f := range files {
		if err := fn(f.rel, f.abs); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkDir(dir, rel string, visited map[string]bool, fn func(rel, abs string) error) error {
	entries, err := os.ReadDir(dir) // sorted by filename
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read directory"), "path", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == domain.StateDirName {
			continue
		}

		entryAbs := filepath.Join(dir, name)
		entryRel := path.Join(rel, name)

		info, err := os.Stat(entryAbs) // follows symlinks
		if err != nil {
			// A dangling symlink or a file deleted mid-walk contributes
			// nothing; the next fingerprint run sees the final state.
			continue
		}

		switch {
		case info.IsDir():
			resolved, err := filepath.EvalSymlinks(entryAbs)
			if err != nil || visited[resolved] {
				continue
			}
			visited[resolved] = true
			if err := w.walkDir(entryAbs, entryRel, visited, fn); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := fn(entryRel, entryAbs); err != nil {
				return err
			}
		}
	}

	return nil
}
