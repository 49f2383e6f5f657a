package fs

import (
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver implements the SourceResolver interface using filepath.Glob.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveSources resolves the given patterns relative to root to a sorted list of files.
// Directories are expanded to the files below them. A pattern without matches is an error.
func (r *Resolver) ResolveSources(patterns []string, root string) ([]string, error) {
	uniquePaths := make(map[string]bool)

	for _, pattern := range patterns {
		path := pattern
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, pattern)
		}

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
		}
		if len(matches) == 0 {
			return nil, zerr.With(zerr.New("source not found"), "path", path)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", match)
			}
			if !info.IsDir() {
				uniquePaths[match] = true
				continue
			}
			for file := range r.walker.WalkFiles(match, nil) {
				uniquePaths[file] = true
			}
		}
	}

	result := make([]string, 0, len(uniquePaths))
	for path := range uniquePaths {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}

// Absolute joins each path that is not absolute onto root.
func Absolute(paths []string, root string) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if filepath.IsAbs(p) {
			result = append(result, p)
			continue
		}
		result = append(result, filepath.Join(root, p))
	}
	return result
}
