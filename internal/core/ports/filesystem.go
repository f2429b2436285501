package ports

import "iter"

// FileSystem is the file access used by the scanner and the staged build pipeline.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Exists reports whether path exists.
	Exists(path string) bool

	// IsDir reports whether path is an existing directory.
	IsDir(path string) bool

	// ListDirs returns the names of the sub-directories of dir, sorted.
	ListDirs(dir string) ([]string, error)

	// ReadFile returns the content of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes a file, creating parent directories.
	WriteFile(path string, data []byte) error

	// Clear empties dir, creating it when missing.
	Clear(dir string) error

	// Remove deletes path recursively. A missing path is not an error.
	Remove(path string) error

	// Copy copies a file or directory tree. Files already present at the destination are kept.
	Copy(src, dst string) error

	// Move renames src to dst. It fails when dst exists or when one path contains the other.
	Move(src, dst string) error

	// WalkFiles yields every regular file below root.
	WalkFiles(root string) iter.Seq[string]
}
