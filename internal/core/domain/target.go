package domain

// TargetKind is the closed set of build target kinds.
type TargetKind string

const (
	// TargetCommonJS transpiles sources to CommonJS modules.
	TargetCommonJS TargetKind = "commonjs"
	// TargetModule transpiles sources to ES modules.
	TargetModule TargetKind = "module"
	// TargetNode transpiles sources to CommonJS tuned for Node.
	TargetNode TargetKind = "node"
	// TargetTypes extracts type declarations.
	TargetTypes TargetKind = "types"
	// TargetCopy copies the input verbatim.
	TargetCopy TargetKind = "copy"
)

// ParseTargetKind validates a target kind.
func ParseTargetKind(s string) (TargetKind, error) {
	if s == "" {
		return "", ErrEmptyTarget
	}
	switch k := TargetKind(s); k {
	case TargetCommonJS, TargetModule, TargetNode, TargetTypes, TargetCopy:
		return k, nil
	default:
		return "", Annotate(ErrInvalidTarget, "target", s)
	}
}

// ModuleSystem is the runtime module system a target emits.
type ModuleSystem string

const (
	// ModuleSystemNone marks targets without a runtime module system.
	ModuleSystemNone ModuleSystem = ""
	// ModuleSystemCommonJS is the CommonJS system ("type": "commonjs").
	ModuleSystemCommonJS ModuleSystem = "commonjs"
	// ModuleSystemESM is the ES module system ("type": "module").
	ModuleSystemESM ModuleSystem = "module"
)

// ModuleSystem returns the module system emitted by the target kind.
func (k TargetKind) ModuleSystem() ModuleSystem {
	switch k {
	case TargetCommonJS, TargetNode:
		return ModuleSystemCommonJS
	case TargetModule:
		return ModuleSystemESM
	case TargetTypes, TargetCopy:
		return ModuleSystemNone
	}
	return ModuleSystemNone
}

// EntryField returns the package.json entry-point field recording the target, or "".
func (k TargetKind) EntryField() string {
	switch k {
	case TargetCommonJS, TargetNode:
		return "main"
	case TargetModule:
		return "module"
	case TargetTypes:
		return "types"
	case TargetCopy:
		return ""
	}
	return ""
}

// EntryFile returns the entry file name written into EntryField.
func (k TargetKind) EntryFile() string {
	if k == TargetTypes {
		return "index.d.ts"
	}
	return "index.js"
}

// Transpiled reports whether the target is produced by the transpiler.
func (k TargetKind) Transpiled() bool {
	return k == TargetCommonJS || k == TargetModule || k == TargetNode
}

// BuildTarget is one output declared for an input path in the build manifest.
type BuildTarget struct {
	// Input is the input path relative to the package directory.
	Input string
	Kind  TargetKind
	// Output is the output path relative to the staging root.
	Output string
	// Overlay is merged into the synthesized package.json.
	Overlay map[string]any
}

// IsRootOutput reports whether the target writes directly into the staging root.
func (t *BuildTarget) IsRootOutput() bool {
	switch t.Output {
	case "", ".", "./", "/":
		return true
	}
	return false
}
