package shell

import (
	"context"
	"io"
	"path/filepath"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	babelConfigFile    = "babel.config.js"
	tsBuildConfigFile  = "tsconfig.build.json"
	prettierConfigFile = ".prettierrc.json"
)

// formattedManifests are the JSON files of a package that go through the formatter.
var formattedManifests = []string{"package.json", "bundle.json", "tsconfig.build.json", "tsconfig.json"}

// Toolchain drives babel, tsc and prettier through the workspace package manager.
type Toolchain struct {
	exec ports.Executor
	fs   ports.FileSystem
	cfg  *domain.Config
}

// NewToolchain creates a Toolchain for the workspace described by cfg.
func NewToolchain(exec ports.Executor, fs ports.FileSystem, cfg *domain.Config) *Toolchain {
	return &Toolchain{exec: exec, fs: fs, cfg: cfg}
}

// Transpile compiles src into dest with babel. kind selects the babel environment.
func (t *Toolchain) Transpile(
	ctx context.Context,
	_, src, dest string,
	kind domain.TargetKind,
	out io.Writer,
) error {
	babelConfig := t.cfg.Abs(babelConfigFile)
	if !t.fs.Exists(babelConfig) {
		return missingConfig("babel", babelConfig)
	}

	return t.run(ctx, "babel", ports.Command{
		Name: t.cfg.Toolchain.PackageManager,
		Args: []string{
			"babel",
			"--config-file", babelConfig,
			"--extensions", ".js,.ts,.tsx", src,
			"--out-dir", dest,
			"--ignore", "**/*.d.ts",
		},
		Env: []string{"NODE_ENV=production", "BABEL_ENV=" + string(kind)},
	}, out)
}

// ExtractTypes emits declarations for src into dest using the package's tsconfig.build.json.
func (t *Toolchain) ExtractTypes(ctx context.Context, dir, src, dest string, out io.Writer) error {
	tsConfig := filepath.Join(dir, tsBuildConfigFile)
	if !t.fs.Exists(tsConfig) {
		return missingConfig("tsc", tsConfig)
	}

	return t.run(ctx, "tsc", ports.Command{
		Name: t.cfg.Toolchain.PackageManager,
		Args: []string{"tsc", "-p", tsConfig, "--rootDir", src, "--outDir", dest},
		Env:  []string{"NODE_ENV=production"},
	}, out)
}

// Format runs the formatter over the TypeScript sources and then the JSON manifests of dir.
// Glob patterns are expanded by the formatter.
func (t *Toolchain) Format(ctx context.Context, dir string, out io.Writer) error {
	var sources []string
	if src := filepath.Join(dir, "src"); t.fs.IsDir(src) {
		sources = append(sources, filepath.Join(src, "**", "*.{ts,tsx}"))
	} else {
		sources = append(sources, filepath.Join(dir, "*.ts"))
	}
	if types := filepath.Join(dir, "types"); t.fs.IsDir(types) {
		sources = append(sources, filepath.Join(types, "**", "*.ts"))
	}

	if err := t.prettier(ctx, "typescript", sources, out); err != nil {
		return err
	}

	var manifests []string
	for _, name := range formattedManifests {
		if file := filepath.Join(dir, name); t.fs.Exists(file) {
			manifests = append(manifests, file)
		}
	}
	if len(manifests) == 0 {
		return nil
	}
	return t.prettier(ctx, "json", manifests, out)
}

func (t *Toolchain) prettier(ctx context.Context, parser string, files []string, out io.Writer) error {
	args := []string{"--config", t.cfg.Abs(prettierConfigFile), "--parser", parser, "--write"}
	return t.run(ctx, "prettier", ports.Command{
		Name: t.cfg.Toolchain.Formatter,
		Args: append(args, files...),
		Dir:  t.cfg.Root,
	}, out)
}

func (t *Toolchain) run(ctx context.Context, tool string, cmd ports.Command, out io.Writer) error {
	if err := t.exec.Execute(ctx, cmd, out, out); err != nil {
		return zerr.With(domain.WrapCause(domain.ErrToolFailed, err), "tool", tool)
	}
	return nil
}

func missingConfig(tool, path string) error {
	return zerr.With(domain.Annotate(domain.ErrToolFailed, "tool", tool), "missing", path)
}
