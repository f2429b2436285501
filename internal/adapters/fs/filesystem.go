package fs

import (
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// copyConcurrency bounds the number of files copied in parallel.
const copyConcurrency = 8

// FileSystem implements ports.FileSystem on top of a billy filesystem.
// All paths are absolute.
type FileSystem struct {
	fs     billy.Filesystem
	walker *Walker
}

// NewFileSystem returns a FileSystem backed by the operating system.
func NewFileSystem() *FileSystem {
	return NewFileSystemFrom(osfs.New("/", osfs.WithBoundOS()))
}

// NewFileSystemFrom returns a FileSystem backed by bfs.
func NewFileSystemFrom(bfs billy.Filesystem) *FileSystem {
	return &FileSystem{fs: bfs, walker: NewWalker(bfs)}
}

// Billy returns the underlying billy filesystem.
func (f *FileSystem) Billy() billy.Filesystem {
	return f.fs
}

// Exists reports whether path exists.
func (f *FileSystem) Exists(path string) bool {
	_, err := f.fs.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory.
func (f *FileSystem) IsDir(path string) bool {
	info, err := f.fs.Stat(path)
	return err == nil && info.IsDir()
}

// ListDirs returns the sorted names of the sub-directories of dir.
func (f *FileSystem) ListDirs(dir string) ([]string, error) {
	infos, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read directory"), "path", dir)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ReadFile returns the content of a file.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read file"), "path", path)
	}
	return data, nil
}

// WriteFile writes data to path, creating parent directories.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	if err := f.fs.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(path))
	}
	if err := util.WriteFile(f.fs, path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", path)
	}
	return nil
}

// Clear empties dir, creating it when missing.
func (f *FileSystem) Clear(dir string) error {
	if err := f.Remove(dir); err != nil {
		return err
	}
	if err := f.fs.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}
	return nil
}

// Remove deletes path recursively. A missing path is not an error.
func (f *FileSystem) Remove(path string) error {
	if err := util.RemoveAll(f.fs, path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to remove path"), "path", path)
	}
	return nil
}

// Copy copies a file or a directory tree from src to dst.
// Files already present at the destination are kept.
func (f *FileSystem) Copy(src, dst string) error {
	info, err := f.fs.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", src)
	}

	if !info.IsDir() {
		return f.copyFile(src, dst)
	}

	var g errgroup.Group
	g.SetLimit(copyConcurrency)

	for path := range f.walker.WalkFiles(src, nil) {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}
		target := filepath.Join(dst, rel)
		g.Go(func() error {
			return f.copyFile(path, target)
		})
	}

	return g.Wait()
}

func (f *FileSystem) copyFile(src, dst string) error {
	if f.Exists(dst) {
		return nil
	}

	if err := f.fs.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}

	in, err := f.fs.Open(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only handle

	out, err := f.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, domain.FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	return nil
}

// Move renames src to dst. It fails when dst exists or when one path contains the other.
func (f *FileSystem) Move(src, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)

	if contains(src, dst) || contains(dst, src) {
		return zerr.With(domain.Annotate(domain.ErrNestedPaths, "src", src), "dst", dst)
	}
	if f.Exists(dst) {
		return domain.Annotate(domain.ErrTargetExists, "path", dst)
	}
	if err := f.fs.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	if err := f.fs.Rename(src, dst); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to move path"), "src", src), "dst", dst)
	}
	return nil
}

// WalkFiles yields every regular file below root.
func (f *FileSystem) WalkFiles(root string) iter.Seq[string] {
	return f.walker.WalkFiles(root, nil)
}

// contains reports whether child equals parent or lies below it.
func contains(parent, child string) bool {
	if parent == child {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
