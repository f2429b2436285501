// Package scanner discovers the packages of a workspace and their dependency graph.
package scanner

import (
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Scanner builds package descriptors from the workspace directory.
type Scanner struct {
	cfg      *domain.Config
	fs       ports.FileSystem
	versions ports.VersionStore
	logger   ports.Logger
}

// New creates a new Scanner.
func New(cfg *domain.Config, fs ports.FileSystem, versions ports.VersionStore, logger ports.Logger) *Scanner {
	return &Scanner{
		cfg:      cfg,
		fs:       fs,
		versions: versions,
		logger:   logger,
	}
}

// Scan discovers every package below the workspace directory in sorted directory order.
// Packages without a version record get one seeded from the configured default version.
// The returned graph has been validated.
func (s *Scanner) Scan(ctx context.Context) (*domain.Workspace, *domain.Graph, error) {
	root := s.cfg.WorkspaceDir()

	entries, err := s.fs.ListDirs(root)
	if err != nil {
		return nil, nil, zerr.With(domain.WrapCause(domain.ErrWorkspaceDirRead, err), "path", root)
	}

	var dirs []string
	for _, name := range entries {
		dir := filepath.Join(root, name)
		if s.fs.Exists(filepath.Join(dir, domain.PackageManifestFile)) {
			dirs = append(dirs, dir)
		}
	}

	manifests, err := s.readManifests(ctx, dirs)
	if err != nil {
		return nil, nil, err
	}

	pkgs := make([]*domain.Package, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))
	for i, dir := range dirs {
		m := manifests[i]
		if m.Name == "" {
			return nil, nil, domain.Annotate(domain.ErrMissingPackageName, "path", dir)
		}
		if seen[m.Name] {
			return nil, nil, zerr.With(domain.Annotate(domain.ErrDuplicatePackageName, "package", m.Name), "path", dir)
		}
		seen[m.Name] = true

		pkg, err := s.describe(i, dir, m)
		if err != nil {
			return nil, nil, err
		}
		pkgs = append(pkgs, pkg)
	}

	g := domain.NewGraph()
	for _, pkg := range pkgs {
		for _, name := range pkg.Manifest.DeclaredDependencies() {
			if name != pkg.Name && seen[name] {
				pkg.Dependencies = append(pkg.Dependencies, name)
			}
		}
		if err := g.AddPackage(pkg.Name, pkg.Dependencies); err != nil {
			return nil, nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}

	return domain.NewWorkspace(pkgs), g, nil
}

// readManifests decodes the package.json of every dir. Results keep the order of dirs.
func (s *Scanner) readManifests(ctx context.Context, dirs []string) ([]*domain.PackageManifest, error) {
	manifests := make([]*domain.PackageManifest, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, domain.PackageManifestFile)
			data, err := s.fs.ReadFile(path)
			if err != nil {
				return zerr.With(domain.WrapCause(domain.ErrPackageManifestRead, err), "path", path)
			}
			m, err := domain.ParsePackageManifest(data)
			if err != nil {
				return zerr.With(domain.WrapCause(domain.ErrPackageManifestRead, err), "path", path)
			}
			manifests[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return manifests, nil
}

func (s *Scanner) describe(index int, dir string, m *domain.PackageManifest) (*domain.Package, error) {
	rec, err := s.versions.Load(dir)
	if err != nil {
		return nil, zerr.With(domain.WrapCause(domain.ErrScan, err), "package", m.Name)
	}
	if rec == nil {
		rec = &domain.VersionRecord{
			Version:       s.cfg.DefaultVersion(),
			IgnoreChannel: []string{},
			Release:       map[string]string{},
		}
		if err := s.versions.Save(dir, *rec); err != nil {
			return nil, zerr.With(domain.WrapCause(domain.ErrScan, err), "package", m.Name)
		}
		s.logger.Info("seeded version " + rec.Version + " for " + m.Name)
	}

	committed, err := domain.ParseVersion(rec.Version)
	if err != nil {
		return nil, zerr.With(zerr.With(err, "package", m.Name), "field", "version")
	}

	pkg := &domain.Package{
		Name:             m.Name,
		Index:            index,
		Dir:              dir,
		OutDir:           filepath.Join(dir, s.cfg.Bundle.Out),
		StageDir:         filepath.Join(dir, s.cfg.Bundle.Tmp),
		CommittedVersion: committed,
		ReleaseState:     rec.Release,
		IgnoredChannels:  rec.IgnoreChannel,
		Manifest:         m,
	}

	if rec.NextVersion != "" {
		staged, err := domain.ParseVersion(rec.NextVersion)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "package", m.Name), "field", "nextVersion")
		}
		pkg.StagedVersion = &staged
	}

	pkg.LatestBuiltVersion = s.latestBuilt(pkg)
	return pkg, nil
}

// latestBuilt reads the version of the committed output manifest.
// An unreadable manifest counts as never built.
func (s *Scanner) latestBuilt(pkg *domain.Package) *domain.Version {
	path := filepath.Join(pkg.OutDir, domain.PackageManifestFile)
	if !s.fs.Exists(path) {
		return nil
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		s.logger.Warn("cannot read committed manifest of " + pkg.Name + ": " + err.Error())
		return nil
	}

	var out struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("cannot decode committed manifest of " + pkg.Name + ": " + err.Error())
		return nil
	}

	v, err := domain.ParseVersion(out.Version)
	if err != nil {
		s.logger.Warn("committed manifest of " + pkg.Name + " has no valid version")
		return nil
	}
	return &v
}
