// Package scaffold creates new workspace packages.
package scaffold

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9\-_]*[a-z0-9]$`)

// Request describes the package to create. Missing values are asked for.
type Request struct {
	// Name is the directory name below the workspace path.
	Name string
	// Organisation prefixes the package name with the workspace scope. Nil asks.
	Organisation *bool
}

// Scaffolder writes the boilerplate of a new package.
type Scaffolder struct {
	cfg      *domain.Config
	fs       ports.FileSystem
	prompter ports.Prompter
	logger   ports.Logger
}

// New creates a new Scaffolder.
func New(cfg *domain.Config, fs ports.FileSystem, prompter ports.Prompter, logger ports.Logger) *Scaffolder {
	return &Scaffolder{cfg: cfg, fs: fs, prompter: prompter, logger: logger}
}

// Create writes a new package into the workspace and returns its directory.
// ws holds the existing packages; a name collision is refused.
func (s *Scaffolder) Create(ctx context.Context, ws *domain.Workspace, req Request) (string, error) {
	dirName := req.Name
	if dirName == "" {
		var err error
		dirName, err = s.prompter.Input(ctx, "Enter package name:", ValidateName)
		if err != nil {
			return "", err
		}
	}
	if err := ValidateName(dirName); err != nil {
		return "", err
	}

	org := true
	if req.Organisation != nil {
		org = *req.Organisation
	} else {
		var err error
		org, err = s.prompter.Confirm(ctx, "Use organisation name for package?", true)
		if err != nil {
			return "", err
		}
	}

	name := dirName
	if org {
		name = s.scope() + "/" + dirName
	}

	if ws != nil && ws.Get(name) != nil {
		return "", domain.Annotate(domain.ErrTargetExists, "package", name)
	}
	dir := filepath.Join(s.cfg.WorkspaceDir(), dirName)
	if s.fs.Exists(dir) {
		return "", domain.Annotate(domain.ErrTargetExists, "path", dir)
	}

	for _, f := range s.files(name, dir) {
		if err := s.fs.WriteFile(f.path, f.data); err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to write package file"), "path", f.path)
		}
		s.logger.Info("created " + s.relative(f.path))
	}
	return dir, nil
}

// ValidateName checks a package directory name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return domain.Annotate(domain.ErrInvalidPackageName, "name", name)
	}
	return nil
}

func (s *Scaffolder) scope() string {
	scope := s.cfg.Workspace.Name
	if !strings.HasPrefix(scope, "@") {
		scope = "@" + scope
	}
	return scope
}

type file struct {
	path string
	data []byte
}

func (s *Scaffolder) files(name, dir string) []file {
	rel := s.rootFrom(dir)
	version := s.cfg.DefaultVersion()
	out := s.cfg.Bundle.Out

	files := []file{
		{"src/index.ts", []byte("export {}\n")},
		{"global.d.ts", nil},
		{domain.VersionRecordFile, mustJSON(domain.VersionRecord{
			Version:       version,
			IgnoreChannel: []string{},
			Release:       map[string]string{},
		})},
		{domain.BuildManifestFile, mustJSON(map[string]any{
			"src": []any{
				map[string]any{"target": "node", "output": "."},
				map[string]any{"target": "types", "output": ".", "package.json": map[string]any{"types": "./index.d.ts"}},
			},
		})},
		{"tsconfig.json", mustJSON(map[string]any{"extends": rel + "tsconfig.json"})},
		{"tsconfig.build.json", mustJSON(map[string]any{
			"extends": rel + "tsconfig.build.json",
			"compilerOptions": map[string]any{
				"outDir":  "./" + out,
				"rootDir": "./src",
			},
			"include": []string{"./src/**/*", "./global.d.ts"},
		})},
		{"README.md", []byte(fmt.Sprintf(readme, name, name))},
	}

	if s.cfg.Bundle.LicenseText != "" {
		files = append(files, file{"LICENSE", []byte(s.cfg.Bundle.LicenseText)})
	}

	cwd := ""
	if rel != "./" {
		cwd = fmt.Sprintf("--cwd %q ", rel)
	}
	dependencies := make(map[string]string, len(s.cfg.Dependencies))
	for dep, constraint := range s.cfg.Dependencies {
		dependencies[dep] = constraint
	}

	manifest := map[string]any{
		"name":    name,
		"version": version,
		"scripts": map[string]any{
			"build":  fmt.Sprintf("crate build %s--scope %s", cwd, name),
			"format": fmt.Sprintf("crate format %s--scope %s", cwd, name),
		},
		"dependencies": dependencies,
		"exports": map[string]any{
			"./": "./" + out + "/",
			".":  map[string]any{"require": "./" + out + "/index.js"},
		},
		"types": out + "/index.d.ts",
		"typesVersions": map[string]any{
			"*": map[string]any{
				out + "/index.d.ts": []string{"src/index.ts"},
				"*":                 []string{"src/*"},
			},
		},
	}
	if s.cfg.Bundle.Author != "" {
		manifest["author"] = s.cfg.Bundle.Author
	}
	if s.cfg.Bundle.License != "" {
		manifest["license"] = s.cfg.Bundle.License
	}
	files = append(files, file{domain.PackageManifestFile, mustJSON(manifest)})

	for i := range files {
		files[i].path = filepath.Join(dir, files[i].path)
	}
	return files
}

// rootFrom is the workspace root relative to dir, slash separated and ending in "/".
func (s *Scaffolder) rootFrom(dir string) string {
	rel, err := filepath.Rel(dir, s.cfg.Root)
	if err != nil || rel == "." {
		return "./"
	}
	return path.Clean(filepath.ToSlash(rel)) + "/"
}

func (s *Scaffolder) relative(p string) string {
	if rel, err := filepath.Rel(s.cfg.Root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

func mustJSON(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

const readme = "# %s\n\nThe project is under construction, the description will follow.\n\n" +
	"## Install\n\n```\n$ npm install --save %s\n```\n"
