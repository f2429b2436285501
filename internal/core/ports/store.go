package ports

import "go.trai.ch/crate/internal/core/domain"

// BuildInfoStore defines the interface for storing and retrieving build information.
// Records live below the workspace root.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the build info for a given package name.
	// Returns nil, nil if not found.
	Get(root, pkg string) (*domain.BuildInfo, error)

	// Put stores the build info.
	Put(root string, info domain.BuildInfo) error
}

// VersionStore persists per-package version records.
type VersionStore interface {
	// Load reads the version record in dir. Returns nil, nil if none exists.
	Load(dir string) (*domain.VersionRecord, error)

	// Save writes the version record in dir as one document.
	Save(dir string, rec domain.VersionRecord) error
}
