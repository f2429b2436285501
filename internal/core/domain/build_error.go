package domain

import "fmt"

// BuildError reports a failed build step together with the package and target it belongs to.
// It matches ErrBuild under errors.Is and unwraps to the tool failure.
type BuildError struct {
	Package string
	Target  TargetKind
	Input   string
	Err     error
}

// NewBuildError returns a BuildError for the given package and target.
func NewBuildError(pkg string, target *BuildTarget, err error) *BuildError {
	be := &BuildError{Package: pkg, Err: err}
	if target != nil {
		be.Target = target.Kind
		be.Input = target.Input
	}
	return be
}

// Message returns the error message without the cause chain.
func (e *BuildError) Message() string {
	if e.Target == "" {
		return fmt.Sprintf("build of package %q failed", e.Package)
	}
	return fmt.Sprintf("build of package %q failed at target %s (%s)", e.Package, e.Target, e.Input)
}

func (e *BuildError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the ErrBuild kind.
func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}
