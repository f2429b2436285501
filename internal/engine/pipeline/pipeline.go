// Package pipeline builds one package into its staging directory and promotes the result.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Result describes the staged output of one package.
type Result struct {
	Package *domain.Package
	Version domain.Version
	Targets []domain.TargetKind
}

// Pipeline drives the staged build of single packages.
type Pipeline struct {
	cfg       *domain.Config
	fs        ports.FileSystem
	toolchain ports.Toolchain
	versions  ports.VersionStore
	buildInfo ports.BuildInfoStore
	hasher    ports.Hasher
	tracer    ports.Tracer
	logger    ports.Logger
}

// New creates a new Pipeline.
func New(
	cfg *domain.Config,
	fs ports.FileSystem,
	toolchain ports.Toolchain,
	versions ports.VersionStore,
	buildInfo ports.BuildInfoStore,
	hasher ports.Hasher,
	tracer ports.Tracer,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		fs:        fs,
		toolchain: toolchain,
		versions:  versions,
		buildInfo: buildInfo,
		hasher:    hasher,
		tracer:    tracer,
		logger:    logger,
	}
}

// Build formats the package, builds every declared target into the staging directory
// and writes the synthesized package.json next to them. deps maps every workspace
// package to the version it presents after the run.
// The committed output is not touched; see Promote.
func (p *Pipeline) Build(ctx context.Context, pkg *domain.Package, deps map[string]domain.Version) (res *Result, err error) {
	ctx, span := p.tracer.Start(ctx, pkg.Name, ports.WithPackage(pkg.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	version, ok := deps[pkg.Name]
	if !ok {
		version = pkg.ExternalVersion()
	}
	span.SetAttribute("crate.version", version)

	if err := p.toolchain.Format(ctx, pkg.Dir, span); err != nil {
		return nil, domain.NewBuildError(pkg.Name, nil, err)
	}

	targets, err := p.targets(pkg)
	if err != nil {
		return nil, err
	}

	if err := p.fs.Clear(pkg.StageDir); err != nil {
		return nil, domain.NewBuildError(pkg.Name, nil, domain.WrapCause(domain.ErrStagingFailed, err))
	}

	var fragments []map[string]any
	runtimeHelper := false
	kinds := make([]domain.TargetKind, 0, len(targets))

	for i := range targets {
		t := &targets[i]
		dest := p.destination(pkg, t)

		if err := p.buildTarget(ctx, pkg, t, dest); err != nil {
			return nil, domain.NewBuildError(pkg.Name, t, err)
		}
		kinds = append(kinds, t.Kind)

		if t.Overlay != nil {
			fragments = append(fragments, t.Overlay)
		}
		if err := p.writeModuleManifest(t, dest); err != nil {
			return nil, domain.NewBuildError(pkg.Name, t, err)
		}
		if !runtimeHelper && t.Kind.ModuleSystem() == domain.ModuleSystemCommonJS {
			runtimeHelper = p.usesRuntimeHelper(dest)
		}
	}

	// Entry points follow the overlays so they win on conflicting fields.
	for i := range targets {
		if f := entryFragment(&targets[i]); f != nil {
			fragments = append(fragments, f)
		}
	}

	manifest := p.synthesize(pkg, version, fragments, deps, runtimeHelper)
	if err := writeJSON(p.fs, filepath.Join(pkg.StageDir, domain.PackageManifestFile), manifest); err != nil {
		return nil, domain.NewBuildError(pkg.Name, nil, domain.WrapCause(domain.ErrManifestWriteFailed, err))
	}

	for _, name := range domain.StaticFiles {
		src := filepath.Join(pkg.Dir, name)
		if !p.fs.Exists(src) {
			continue
		}
		if err := p.fs.Copy(src, filepath.Join(pkg.StageDir, name)); err != nil {
			return nil, domain.NewBuildError(pkg.Name, nil, domain.WrapCause(domain.ErrStagingFailed, err))
		}
	}

	return &Result{Package: pkg, Version: version, Targets: kinds}, nil
}

// targets loads the build manifest and checks that every input exists.
func (p *Pipeline) targets(pkg *domain.Package) ([]domain.BuildTarget, error) {
	targets, err := LoadTargets(p.fs, pkg.Dir)
	if err != nil {
		return nil, zerr.With(err, "package", pkg.Name)
	}

	for _, t := range targets {
		if !p.fs.Exists(p.input(pkg, &t)) {
			err := zerr.With(domain.Annotate(domain.ErrInputNotFound, "package", pkg.Name), "input", t.Input)
			return nil, err
		}
	}
	return targets, nil
}

func (p *Pipeline) input(pkg *domain.Package, t *domain.BuildTarget) string {
	switch t.Input {
	case "", ".", "./", "/":
		return pkg.Dir
	}
	return filepath.Join(pkg.Dir, t.Input)
}

func (p *Pipeline) destination(pkg *domain.Package, t *domain.BuildTarget) string {
	if t.IsRootOutput() {
		return pkg.StageDir
	}
	return filepath.Join(pkg.StageDir, t.Output)
}

func (p *Pipeline) buildTarget(ctx context.Context, pkg *domain.Package, t *domain.BuildTarget, dest string) (err error) {
	ctx, span := p.tracer.Start(ctx, pkg.Name+":"+string(t.Kind), ports.WithPackage(pkg.Name))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()
	span.SetAttribute("crate.input", t.Input)

	src := p.input(pkg, t)

	switch t.Kind {
	case domain.TargetTypes:
		return p.toolchain.ExtractTypes(ctx, pkg.Dir, src, dest, span)
	case domain.TargetCommonJS, domain.TargetModule, domain.TargetNode:
		return p.toolchain.Transpile(ctx, pkg.Dir, src, dest, t.Kind, span)
	case domain.TargetCopy:
		if err := p.fs.Copy(src, dest); err != nil {
			return domain.WrapCause(domain.ErrStagingFailed, err)
		}
		return nil
	}
	return domain.Annotate(domain.ErrInvalidTarget, "target", string(t.Kind))
}

// writeModuleManifest declares the module system of a nested output directory.
func (p *Pipeline) writeModuleManifest(t *domain.BuildTarget, dest string) error {
	system := t.Kind.ModuleSystem()
	if t.IsRootOutput() || system == domain.ModuleSystemNone {
		return nil
	}
	err := writeJSON(p.fs, filepath.Join(dest, domain.PackageManifestFile), map[string]any{"type": string(system)})
	if err != nil {
		return domain.WrapCause(domain.ErrManifestWriteFailed, err)
	}
	return nil
}

// usesRuntimeHelper reports whether any emitted script imports the runtime helper package.
func (p *Pipeline) usesRuntimeHelper(dir string) bool {
	signature := []byte(domain.RuntimeHelperPackage + "/")
	for file := range p.fs.WalkFiles(dir) {
		if ext := filepath.Ext(file); ext != ".js" && ext != ".cjs" {
			continue
		}
		data, err := p.fs.ReadFile(file)
		if err != nil {
			continue
		}
		if bytes.Contains(data, signature) {
			return true
		}
	}
	return false
}

// entryFragment records the entry point of a target relative to the package root.
func entryFragment(t *domain.BuildTarget) map[string]any {
	field := t.Kind.EntryField()
	if field == "" {
		return nil
	}
	if t.IsRootOutput() {
		return map[string]any{field: t.Kind.EntryFile()}
	}
	dir := strings.Trim(filepath.ToSlash(t.Output), "/")
	return map[string]any{field: path.Join(dir, t.Kind.EntryFile())}
}

// synthesize assembles the distributable package.json.
func (p *Pipeline) synthesize(
	pkg *domain.Package,
	version domain.Version,
	fragments []map[string]any,
	deps map[string]domain.Version,
	runtimeHelper bool,
) map[string]any {
	repository := map[string]any{
		"directory": path.Join(filepath.ToSlash(p.cfg.Workspace.Path), filepath.Base(pkg.Dir)),
	}
	if p.cfg.Bundle.Repository.Type != "" {
		repository["type"] = p.cfg.Bundle.Repository.Type
	}
	if p.cfg.Bundle.Repository.URL != "" {
		repository["url"] = p.cfg.Bundle.Repository.URL
	}

	data := map[string]any{
		"name":            pkg.Name,
		"version":         version.String(),
		"dependencies":    map[string]any{},
		"devDependencies": map[string]any{},
		"repository":      repository,
	}
	if p.cfg.Bundle.Author != "" {
		data["author"] = p.cfg.Bundle.Author
	}
	if p.cfg.Bundle.License != "" {
		data["license"] = p.cfg.Bundle.License
	}

	if pkg.Manifest != nil {
		for _, key := range append([]string{"description", "keywords"}, domain.DependencyBlocks...) {
			if v, ok := pkg.Manifest.Raw[key]; ok && v != nil {
				data[key] = cloneValue(v)
			}
		}
	}

	for _, f := range fragments {
		data = deepMerge(data, f)
	}

	if runtimeHelper && !declares(data, domain.RuntimeHelperPackage, "dependencies", "devDependencies") {
		if block, ok := data["dependencies"].(map[string]any); ok {
			block[domain.RuntimeHelperPackage] = domain.RuntimeHelperVersion
		}
	}

	for _, key := range domain.DependencyBlocks {
		if block, ok := data[key].(map[string]any); ok {
			resolveWildcards(block, block, deps)
		}
	}
	return data
}

func declares(data map[string]any, name string, blocks ...string) bool {
	for _, key := range blocks {
		if block, ok := data[key].(map[string]any); ok {
			if _, ok := block[name]; ok {
				return true
			}
		}
	}
	return false
}

// resolveWildcards writes ^<version> into dst for every entry of src pinned to "*" or "latest"
// that names a package of deps.
func resolveWildcards(dst, src map[string]any, deps map[string]domain.Version) {
	for name, spec := range src {
		v, ok := deps[name]
		if !ok {
			continue
		}
		if s, _ := spec.(string); s == "*" || s == "latest" {
			dst[name] = "^" + v.String()
		}
	}
}

// Promote replaces the committed output of the package with its staging directory
// and records the build info of the new output.
func (p *Pipeline) Promote(res *Result) error {
	pkg := res.Package

	if err := p.fs.Remove(pkg.OutDir); err != nil {
		return zerr.With(domain.WrapCause(domain.ErrPromotionFailed, err), "package", pkg.Name)
	}
	if err := p.fs.Move(pkg.StageDir, pkg.OutDir); err != nil {
		return zerr.With(domain.WrapCause(domain.ErrPromotionFailed, err), "package", pkg.Name)
	}
	if err := p.fs.Remove(pkg.StageDir); err != nil {
		p.logger.Warn("cannot remove staging directory of " + pkg.Name + ": " + err.Error())
	}

	v := res.Version
	pkg.LatestBuiltVersion = &v
	p.record(res)
	return nil
}

func (p *Pipeline) record(res *Result) {
	hash, err := p.hasher.ComputeTreeHash(res.Package.OutDir)
	if err != nil {
		p.logger.Warn("cannot hash output of " + res.Package.Name + ": " + err.Error())
		return
	}

	info := domain.BuildInfo{
		Package:    res.Package.Name,
		Version:    res.Version.String(),
		OutputHash: hash,
		Targets:    res.Targets,
		Timestamp:  time.Now(),
	}
	if err := p.buildInfo.Put(p.cfg.Root, info); err != nil {
		p.logger.Warn("cannot record build info of " + res.Package.Name + ": " + err.Error())
	}
}

// Discard removes the staging directory of the package. Failures are logged.
func (p *Pipeline) Discard(pkg *domain.Package) {
	if err := p.fs.Remove(pkg.StageDir); err != nil {
		p.logger.Warn("cannot remove staging directory of " + pkg.Name + ": " + err.Error())
	}
}

// Commit turns the staged version of the package into its committed version.
func (p *Pipeline) Commit(pkg *domain.Package) error {
	if !pkg.CommitStaged() {
		return nil
	}
	if err := p.versions.Save(pkg.Dir, pkg.Record()); err != nil {
		return zerr.With(err, "package", pkg.Name)
	}
	return nil
}

// RefreshManifest rewrites the committed package.json of a package that is not rebuilt:
// its version and every wildcard dependency on a workspace package are brought up to date.
func (p *Pipeline) RefreshManifest(pkg *domain.Package, deps map[string]domain.Version) error {
	file := filepath.Join(pkg.OutDir, domain.PackageManifestFile)
	if !p.fs.Exists(file) {
		return zerr.With(domain.Annotate(domain.ErrCommittedManifestMissing, "package", pkg.Name), "path", file)
	}

	raw, err := p.fs.ReadFile(file)
	if err != nil {
		return zerr.With(domain.WrapCause(domain.ErrManifestWriteFailed, err), "package", pkg.Name)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return zerr.With(domain.WrapCause(domain.ErrManifestWriteFailed, err), "package", pkg.Name)
	}
	if data == nil {
		data = map[string]any{}
	}

	if v, ok := deps[pkg.Name]; ok {
		data["version"] = v.String()
	}

	if pkg.Manifest != nil {
		for _, key := range domain.DependencyBlocks {
			src, ok := pkg.Manifest.Raw[key].(map[string]any)
			if !ok {
				continue
			}
			dst, ok := data[key].(map[string]any)
			if !ok {
				dst = map[string]any{}
				data[key] = dst
			}
			resolveWildcards(dst, src, deps)
		}
	}

	if err := writeJSON(p.fs, file, data); err != nil {
		return zerr.With(domain.WrapCause(domain.ErrManifestWriteFailed, err), "package", pkg.Name)
	}
	return nil
}

func writeJSON(fs ports.FileSystem, file string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return fs.WriteFile(file, buf.Bytes())
}
