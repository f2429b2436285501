package domain

import "path/filepath"

const (
	// CrateDirName is the name of the internal workspace metadata directory.
	CrateDirName = ".crate"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// ConfigBaseName is the base name of the workspace configuration file.
	ConfigBaseName = "crate"

	// PackageManifestFile is the name of a package's manifest.
	PackageManifestFile = "package.json"

	// VersionRecordFile is the name of a package's persisted version record.
	VersionRecordFile = "bundle-version.json"

	// BuildManifestFile is the name of a package's build manifest.
	BuildManifestFile = "bundle.json"

	// BuildManifestYAMLFile is the YAML form of the build manifest.
	BuildManifestYAMLFile = "bundle.yaml"

	// RuntimeHelperPackage is the package transpiled CommonJS output may import at runtime.
	RuntimeHelperPackage = "@babel/runtime"

	// RuntimeHelperVersion is the range added when the runtime helper is needed but undeclared.
	RuntimeHelperVersion = "^7.20.1"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// StaticFiles are copied from the package directory into the output when present.
var StaticFiles = []string{"README.md", "LICENSE"}

// ConfigFileNames are the recognized configuration file names, in lookup order.
var ConfigFileNames = []string{"crate.yaml", "crate.yml", "crate.json"}

// DefaultStorePath returns the default path for the build info store.
// It joins .crate and store.
func DefaultStorePath() string {
	return filepath.Join(CrateDirName, StoreDirName)
}
