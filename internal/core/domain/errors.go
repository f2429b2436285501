package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Error kinds. Every error raised by the orchestrator wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrScan is the kind of every workspace discovery failure.
	ErrScan = zerr.New("workspace scan failed")

	// ErrManifest is the kind of every malformed or missing build manifest entry.
	ErrManifest = zerr.New("invalid build manifest")

	// ErrBuild is the kind of every failed build tool invocation.
	ErrBuild = zerr.New("build failed")

	// ErrVersionParse is the kind of every malformed version string.
	ErrVersionParse = zerr.New("invalid version")

	// ErrPublish is the kind of every registry rejection or authentication failure.
	ErrPublish = zerr.New("publish failed")

	// ErrStateConflict is returned when a staged version would be overwritten without confirmation.
	ErrStateConflict = zerr.New("staged version conflict")
)

var (
	// ErrDuplicatePackageName is returned when two packages declare the same name.
	ErrDuplicatePackageName = zerr.Wrap(ErrScan, "duplicate package name")

	// ErrMissingPackageName is returned when a package manifest has no name.
	ErrMissingPackageName = zerr.Wrap(ErrScan, "missing package name")

	// ErrCycleDetected is returned when workspace packages depend on each other in a cycle.
	ErrCycleDetected = zerr.Wrap(ErrScan, "dependency cycle detected")

	// ErrPackageManifestRead is returned when a package.json cannot be read or decoded.
	ErrPackageManifestRead = zerr.Wrap(ErrScan, "failed to read package manifest")

	// ErrPackageNotFound is returned when a requested package is not part of the workspace.
	ErrPackageNotFound = zerr.Wrap(ErrScan, "package not found")

	// ErrWorkspaceDirRead is returned when the workspace package directory cannot be listed.
	ErrWorkspaceDirRead = zerr.Wrap(ErrScan, "failed to read workspace directory")
)

var (
	// ErrBuildManifestNotFound is returned when a package has no bundle manifest.
	ErrBuildManifestNotFound = zerr.Wrap(ErrManifest, "build manifest not found")

	// ErrBuildManifestParse is returned when the bundle manifest cannot be decoded.
	ErrBuildManifestParse = zerr.Wrap(ErrManifest, "failed to parse build manifest")

	// ErrEmptyTarget is returned when a manifest entry declares no target kind.
	ErrEmptyTarget = zerr.Wrap(ErrManifest, "target is empty")

	// ErrInvalidTarget is returned when a manifest entry declares an unknown target kind.
	ErrInvalidTarget = zerr.Wrap(ErrManifest, "invalid target kind")

	// ErrEmptyOutput is returned when a manifest entry has no output path.
	ErrEmptyOutput = zerr.Wrap(ErrManifest, "output is empty")

	// ErrInputNotFound is returned when a manifest entry points at a missing input path.
	ErrInputNotFound = zerr.Wrap(ErrManifest, "input not found")
)

var (
	// ErrToolFailed is returned when an external build tool exits with an error.
	ErrToolFailed = zerr.Wrap(ErrBuild, "build tool failed")

	// ErrStagingFailed is returned when the staging directory cannot be prepared.
	ErrStagingFailed = zerr.Wrap(ErrBuild, "failed to prepare staging directory")

	// ErrPromotionFailed is returned when staged output cannot replace the committed output.
	ErrPromotionFailed = zerr.Wrap(ErrBuild, "failed to promote staged output")

	// ErrManifestWriteFailed is returned when the synthesized package.json cannot be written.
	ErrManifestWriteFailed = zerr.Wrap(ErrBuild, "failed to write package manifest")

	// ErrCommittedManifestMissing is returned when a version-only update finds no committed output.
	ErrCommittedManifestMissing = zerr.Wrap(ErrBuild, "committed package manifest not found")
)

var (
	// ErrUnknownChannel is returned when a release channel is not configured.
	ErrUnknownChannel = zerr.Wrap(ErrPublish, "release channel not found")

	// ErrLoginFailed is returned when the registry login subprocess fails.
	ErrLoginFailed = zerr.Wrap(ErrPublish, "login failure")

	// ErrLoginProtocol is returned when the login dialogue prints something unexpected.
	ErrLoginProtocol = zerr.Wrap(ErrPublish, "unexpected login output")

	// ErrRegistryCommandFailed is returned when a registry client command fails.
	ErrRegistryCommandFailed = zerr.Wrap(ErrPublish, "registry command failed")

	// ErrInvalidCredentials is returned when collected credentials fail validation.
	ErrInvalidCredentials = zerr.Wrap(ErrPublish, "invalid credentials")
)

var (
	// ErrInvalidTransition is returned for an unknown version transition kind.
	ErrInvalidTransition = zerr.New("invalid version transition")

	// ErrInvalidChannel is returned for an unknown pre-release channel.
	ErrInvalidChannel = zerr.New("invalid pre-release channel")

	// ErrVersionRecordRead is returned when a persisted version record cannot be read.
	ErrVersionRecordRead = zerr.New("failed to read version record")

	// ErrVersionRecordWrite is returned when a persisted version record cannot be written.
	ErrVersionRecordWrite = zerr.New("failed to write version record")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigNotFound is returned when no config file exists at or above the working directory.
	ErrConfigNotFound = zerr.New("could not find crate.yaml or crate.json")

	// ErrConfigInvalid is returned when the config fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrTargetExists is returned when a move or scaffold destination already exists.
	ErrTargetExists = zerr.New("target path already exists")

	// ErrNestedPaths is returned when a move source and destination contain each other.
	ErrNestedPaths = zerr.New("source and destination paths are nested")

	// ErrInvalidPackageName is returned when a scaffold name does not match the naming rules.
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrPromptUnavailable is returned when a decision is required but no terminal is attached.
	ErrPromptUnavailable = zerr.New("interactive prompt unavailable")

	// ErrPromptCanceled is returned when the user aborts a prompt.
	ErrPromptCanceled = zerr.New("prompt canceled")
)

// Annotate attaches context to a sentinel error while keeping it matchable with errors.Is.
// Further context can be layered with zerr.With.
func Annotate(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}

// WrapCause attaches a lower-level cause to a sentinel. The result matches the
// sentinel (and its kind) under errors.Is and unwraps to cause.
func WrapCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &causeError{sentinel: sentinel, cause: cause}
}

type causeError struct {
	sentinel error
	cause    error
}

// Message returns the sentinel message without the cause.
func (e *causeError) Message() string {
	if m, ok := e.sentinel.(interface{ Message() string }); ok {
		return m.Message()
	}
	return e.sentinel.Error()
}

func (e *causeError) Error() string {
	return e.Message() + ": " + e.cause.Error()
}

func (e *causeError) Unwrap() error {
	return e.cause
}

func (e *causeError) Is(target error) bool {
	return errors.Is(e.sentinel, target)
}
