package pipeline

import (
	"errors"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// manifestEntry is one output declared for an input path.
type manifestEntry struct {
	Target  string         `yaml:"target" validate:"required,oneof=commonjs module node types copy"`
	Output  string         `yaml:"output" validate:"required"`
	Overlay map[string]any `yaml:"package.json"`
}

var entryValidate = validator.New(validator.WithRequiredStructEnabled())

// LoadTargets reads the build manifest of the package in dir. bundle.json takes
// precedence over bundle.yaml. Targets keep the declaration order of the manifest.
func LoadTargets(fs ports.FileSystem, dir string) ([]domain.BuildTarget, error) {
	path := filepath.Join(dir, domain.BuildManifestFile)
	if !fs.Exists(path) {
		path = filepath.Join(dir, domain.BuildManifestYAMLFile)
	}
	if !fs.Exists(path) {
		return nil, domain.Annotate(domain.ErrBuildManifestNotFound, "path", filepath.Join(dir, domain.BuildManifestFile))
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(domain.WrapCause(domain.ErrBuildManifestParse, err), "path", path)
	}

	targets, err := ParseTargets(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return targets, nil
}

// ParseTargets decodes a build manifest. JSON documents are accepted as YAML.
// Each input maps to a single entry or a list of entries.
func ParseTargets(data []byte) ([]domain.BuildTarget, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapCause(domain.ErrBuildManifestParse, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, domain.Annotate(domain.ErrBuildManifestParse, "line", root.Line)
	}

	var targets []domain.BuildTarget
	for i := 0; i+1 < len(root.Content); i += 2 {
		input := root.Content[i].Value
		value := root.Content[i+1]

		var entries []manifestEntry
		switch value.Kind {
		case yaml.SequenceNode:
			if err := value.Decode(&entries); err != nil {
				return nil, zerr.With(domain.WrapCause(domain.ErrBuildManifestParse, err), "input", input)
			}
		default:
			var e manifestEntry
			if err := value.Decode(&e); err != nil {
				return nil, zerr.With(domain.WrapCause(domain.ErrBuildManifestParse, err), "input", input)
			}
			entries = []manifestEntry{e}
		}

		for _, e := range entries {
			if err := validateEntry(input, e); err != nil {
				return nil, err
			}
			kind, err := domain.ParseTargetKind(e.Target)
			if err != nil {
				return nil, err
			}
			targets = append(targets, domain.BuildTarget{
				Input:   input,
				Kind:    kind,
				Output:  e.Output,
				Overlay: e.Overlay,
			})
		}
	}
	return targets, nil
}

// validateEntry maps structural validation failures to manifest errors.
func validateEntry(input string, e manifestEntry) error {
	err := entryValidate.Struct(e)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return zerr.With(domain.WrapCause(domain.ErrManifest, err), "input", input)
	}

	fe := verrs[0]
	switch {
	case fe.Field() == "Target" && fe.Tag() == "required":
		return domain.Annotate(domain.ErrEmptyTarget, "input", input)
	case fe.Field() == "Target":
		return zerr.With(domain.Annotate(domain.ErrInvalidTarget, "input", input), "target", e.Target)
	default:
		return domain.Annotate(domain.ErrEmptyOutput, "input", input)
	}
}
