package domain

// Selection is the set of packages a command was scoped to. A nil Selection means "all".
type Selection []string

// All reports whether the selection covers every package.
func (s Selection) All() bool {
	return s == nil
}

// Contains reports whether name is selected.
func (s Selection) Contains(name string) bool {
	if s == nil {
		return true
	}
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// BuildPlan is the outcome of planning one build run.
type BuildPlan struct {
	// Required lists the packages to rebuild, in build order.
	Required []string
	// Mandatory marks required packages that were not chosen through the optional-rebuild decision.
	Mandatory map[string]bool
	// VersionOnly lists dependents whose committed manifest is refreshed without a rebuild.
	VersionOnly []string
	// DependencyVersions is the frozen name → external version map shared by every build of the run.
	DependencyVersions map[string]Version
}

// Empty reports whether there is nothing to build.
func (p *BuildPlan) Empty() bool {
	return p == nil || len(p.Required) == 0
}

// FailurePolicy states how a multi-package run reacts when one package fails.
type FailurePolicy int

const (
	// RollbackStaging discards the staging output of packages already built in the run.
	// Committed output and versions of those packages are left as they were.
	// Build runs use this policy.
	RollbackStaging FailurePolicy = iota
	// KeepCompleted keeps the durable effects of packages completed before the failure.
	// Publish runs use this policy: a registry upload cannot be taken back.
	KeepCompleted
)

func (p FailurePolicy) String() string {
	switch p {
	case RollbackStaging:
		return "rollback-staging"
	case KeepCompleted:
		return "keep-completed"
	default:
		return "unknown"
	}
}
