// Package cas implements the build info store.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildInfoStore = (*Store)(nil)

// Store implements ports.BuildInfoStore using a file-per-package strategy
// under <root>/.crate/store.
type Store struct{}

// NewStore creates a new BuildInfoStore.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the build info recorded for pkg.
func (s *Store) Get(root, pkg string) (*domain.BuildInfo, error) {
	filename := s.filename(root, pkg)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "package", pkg)
	}

	var info domain.BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "package", pkg)
	}

	return &info, nil
}

// Put stores the build info, replacing any previous record for the package.
func (s *Store) Put(root string, info domain.BuildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.filename(root, info.Package)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "package", info.Package)
	}

	return nil
}

func (s *Store) filename(root, pkg string) string {
	hash := sha256.Sum256([]byte(pkg))
	return filepath.Join(root, domain.DefaultStorePath(), hex.EncodeToString(hash[:])+".json")
}
