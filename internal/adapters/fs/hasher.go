package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher digests package output trees.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := h.walker.fs.Open(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeTreeHash digests every file below root. Each file contributes its
// slash-separated path relative to root and its content hash, in lexical order,
// so the result is stable across machines.
func (h *Hasher) ComputeTreeHash(root string) (string, error) {
	if _, err := h.walker.fs.Stat(root); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", root)
	}

	digest := xxhash.New()

	for path := range h.walker.WalkFiles(root, nil) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to relativize path"), "path", path)
		}

		_, _ = digest.WriteString(filepath.ToSlash(rel))
		_, _ = digest.Write([]byte{0})

		sum, err := h.ComputeFileHash(path)
		if err != nil {
			return "", err
		}
		if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
			return "", zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
