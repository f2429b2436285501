package domain

import (
	"encoding/json"
	"slices"
)

// DependencyBlocks lists the package.json dependency sections, in the order they are processed.
var DependencyBlocks = []string{"dependencies", "devDependencies", "peerDependencies"}

// PackageManifest is the decoded package.json of a workspace package.
// Raw keeps every field so manifests can be rewritten without losing unknown keys.
type PackageManifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version,omitempty"`
	Description      string            `json:"description,omitempty"`
	Keywords         []string          `json:"keywords,omitempty"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	DevDependencies  map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`

	Raw map[string]any `json:"-"`
}

// ParsePackageManifest decodes a package.json document.
func ParsePackageManifest(data []byte) (*PackageManifest, error) {
	var m PackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &m.Raw); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeclaredDependencies returns the runtime and development dependency names.
func (m *PackageManifest) DeclaredDependencies() []string {
	names := make([]string, 0, len(m.Dependencies)+len(m.DevDependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	for name := range m.DevDependencies {
		if _, ok := m.Dependencies[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// VersionRecord is the persisted per-package version state (bundle-version.json).
type VersionRecord struct {
	Version       string            `json:"version"`
	NextVersion   string            `json:"nextVersion,omitempty"`
	IgnoreChannel []string          `json:"ignoreChannel"`
	Release       map[string]string `json:"release"`
}

// Package is the descriptor of one discovered workspace package.
type Package struct {
	// Name is unique across the workspace.
	Name string
	// Index is the discovery order.
	Index int
	// Dir is the package source directory.
	Dir string
	// OutDir holds the committed build output.
	OutDir string
	// StageDir holds in-progress build output.
	StageDir string

	CommittedVersion   Version
	StagedVersion      *Version
	LatestBuiltVersion *Version

	// Dependencies are the workspace-internal packages this one depends on.
	Dependencies []string

	ReleaseState    map[string]string
	IgnoredChannels []string

	Manifest *PackageManifest
}

// DependsOn reports whether the package depends directly on name.
func (p *Package) DependsOn(name string) bool {
	return slices.Contains(p.Dependencies, name)
}

// IsBuilt reports whether committed output exists for the package.
func (p *Package) IsBuilt() bool {
	return p.LatestBuiltVersion != nil
}

// Ignores reports whether the package is excluded from the channel.
func (p *Package) Ignores(channel string) bool {
	return slices.Contains(p.IgnoredChannels, channel)
}

// ExternalVersion is the version the package presents after the current run:
// the staged version if present, the committed version otherwise.
func (p *Package) ExternalVersion() Version {
	if p.StagedVersion != nil {
		return *p.StagedVersion
	}
	return p.CommittedVersion
}

// Record renders the package's durable version state.
func (p *Package) Record() VersionRecord {
	rec := VersionRecord{
		Version:       p.CommittedVersion.String(),
		IgnoreChannel: p.IgnoredChannels,
		Release:       p.ReleaseState,
	}
	if rec.IgnoreChannel == nil {
		rec.IgnoreChannel = []string{}
	}
	if rec.Release == nil {
		rec.Release = map[string]string{}
	}
	if p.StagedVersion != nil {
		rec.NextVersion = p.StagedVersion.String()
	}
	return rec
}

// CommitStaged promotes the staged version to the committed version.
// It reports whether anything changed.
func (p *Package) CommitStaged() bool {
	if p.StagedVersion == nil {
		return false
	}
	p.CommittedVersion = *p.StagedVersion
	p.StagedVersion = nil
	return true
}

// ReleaseCandidate reports whether the committed version still has to reach the channel.
func (p *Package) ReleaseCandidate(channel string) bool {
	if p.Ignores(channel) {
		return false
	}
	return p.ReleaseState[channel] != p.CommittedVersion.String()
}

// Workspace is the ordered set of discovered packages.
type Workspace struct {
	Packages []*Package
	byName   map[string]*Package
}

// NewWorkspace indexes packages by name. Packages must already have unique names.
func NewWorkspace(pkgs []*Package) *Workspace {
	ws := &Workspace{Packages: pkgs, byName: make(map[string]*Package, len(pkgs))}
	for _, p := range pkgs {
		ws.byName[p.Name] = p
	}
	return ws
}

// Get returns the named package or nil.
func (w *Workspace) Get(name string) *Package {
	return w.byName[name]
}

// Names returns package names in discovery order.
func (w *Workspace) Names() []string {
	names := make([]string, len(w.Packages))
	for i, p := range w.Packages {
		names[i] = p.Name
	}
	return names
}

// DependencyVersions snapshots the external version of every package.
func (w *Workspace) DependencyVersions() map[string]Version {
	out := make(map[string]Version, len(w.Packages))
	for _, p := range w.Packages {
		out[p.Name] = p.ExternalVersion()
	}
	return out
}

// CommittedVersions snapshots the committed version of every package.
func (w *Workspace) CommittedVersions() map[string]Version {
	out := make(map[string]Version, len(w.Packages))
	for _, p := range w.Packages {
		out[p.Name] = p.CommittedVersion
	}
	return out
}
