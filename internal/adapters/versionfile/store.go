// Package versionfile persists package version records as bundle-version.json documents.
package versionfile

import (
	"encoding/json"
	"path/filepath"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.VersionStore = (*Store)(nil)

// Store implements ports.VersionStore on top of a ports.FileSystem.
type Store struct {
	fs ports.FileSystem
}

// NewStore creates a new Store.
func NewStore(fs ports.FileSystem) *Store {
	return &Store{fs: fs}
}

// Load reads the version record of the package in dir.
func (s *Store) Load(dir string) (*domain.VersionRecord, error) {
	path := filepath.Join(dir, domain.VersionRecordFile)
	if !s.fs.Exists(path) {
		return nil, nil
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrVersionRecordRead.Error()), "path", path)
	}

	var rec domain.VersionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrVersionRecordRead.Error()), "path", path)
	}
	if rec.Release == nil {
		rec.Release = map[string]string{}
	}
	if rec.IgnoreChannel == nil {
		rec.IgnoreChannel = []string{}
	}

	return &rec, nil
}

// Save writes rec to dir, replacing the previous document.
func (s *Store) Save(dir string, rec domain.VersionRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrVersionRecordWrite.Error())
	}

	path := filepath.Join(dir, domain.VersionRecordFile)
	if err := s.fs.WriteFile(path, append(data, '\n')); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrVersionRecordWrite.Error()), "path", path)
	}
	return nil
}
