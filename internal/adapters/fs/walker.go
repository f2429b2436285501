// Package fs provides file system adapters for walking, copying and hashing package trees.
package fs

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Walker provides file walking over a billy filesystem.
type Walker struct {
	fs billy.Filesystem
}

// NewWalker creates a new Walker over bfs.
func NewWalker(bfs billy.Filesystem) *Walker {
	return &Walker{fs: bfs}
}

// WalkFiles yields every regular file below root in lexical order,
// skipping VCS metadata and entries matching one of the ignore patterns.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = util.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if skip, action := w.shouldSkip(info, ignores); skip {
				return action
			}

			if info.IsDir() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkip reports whether an entry is excluded from the walk and how to continue.
func (w *Walker) shouldSkip(info os.FileInfo, ignores []string) (bool, error) {
	name := info.Name()

	if info.IsDir() && (name == ".git" || name == ".jj") {
		return true, filepath.SkipDir
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if info.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}

	return false, nil
}
