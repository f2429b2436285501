package domain

import (
	"path/filepath"
	"slices"
)

// Config is the workspace configuration. It is loaded once per process and
// passed explicitly to every component that needs it.
type Config struct {
	// Root is the directory relative paths are resolved against.
	Root string `mapstructure:"-"`
	// Path is the configuration file the values were read from.
	Path string `mapstructure:"-"`

	Semver       SemverConfig      `mapstructure:"semver"`
	Workspace    WorkspaceConfig   `mapstructure:"workspace"`
	Bundle       BundleConfig      `mapstructure:"bundle"`
	Release      ReleaseConfig     `mapstructure:"release"`
	Toolchain    ToolchainConfig   `mapstructure:"toolchain"`
	Dependencies map[string]string `mapstructure:"dependencies"`
}

// SemverConfig seeds the version of packages without a version record.
type SemverConfig struct {
	Version    string `mapstructure:"version" validate:"required,semver"`
	PreRelease string `mapstructure:"preRelease" validate:"omitempty,oneof=alpha beta rs"`
}

// WorkspaceConfig locates the workspace packages.
type WorkspaceConfig struct {
	// Name is the organisation scope used as package name prefix.
	Name string `mapstructure:"name" validate:"required"`
	// Path is the directory holding one sub-directory per package.
	Path string `mapstructure:"path" validate:"required"`
}

// RepositoryConfig is copied into every synthesized package.json.
type RepositoryConfig struct {
	Type string `mapstructure:"type"`
	URL  string `mapstructure:"url" validate:"omitempty,url"`
}

// BundleConfig holds the descriptive manifest fields and the output layout.
type BundleConfig struct {
	Author      string           `mapstructure:"author"`
	Repository  RepositoryConfig `mapstructure:"repository"`
	License     string           `mapstructure:"license"`
	LicenseText string           `mapstructure:"licenseText"`
	// Out is the committed output directory, relative to each package.
	Out string `mapstructure:"out" validate:"required"`
	// Tmp is the staging directory, relative to each package.
	Tmp string `mapstructure:"tmp" validate:"required,nefield=Out"`
}

// ChannelConfig is the configuration of one release channel.
type ChannelConfig struct {
	User     string `mapstructure:"user" validate:"required"`
	Registry string `mapstructure:"registry" validate:"omitempty,url"`
}

// ReleaseConfig holds the release channels.
type ReleaseConfig struct {
	Channels map[string]ChannelConfig `mapstructure:"channels" validate:"dive"`
	// TolerateUnknownLoginOutput passes unrecognized login output through instead of failing.
	TolerateUnknownLoginOutput bool `mapstructure:"tolerateUnknownLoginOutput"`
}

// ToolchainConfig names the external executables.
type ToolchainConfig struct {
	PackageManager string `mapstructure:"packageManager" validate:"required"`
	Formatter      string `mapstructure:"formatter" validate:"required"`
	Registry       string `mapstructure:"registry" validate:"required"`
}

// ReleaseChannel is a resolved release channel.
type ReleaseChannel struct {
	Name      string
	Principal string
	Registry  string
}

// DefaultVersion is the version seeded into a new version record.
func (c *Config) DefaultVersion() string {
	if c.Semver.PreRelease != "" {
		return c.Semver.Version + "-" + c.Semver.PreRelease
	}
	return c.Semver.Version
}

// Abs resolves a path against the configuration root.
func (c *Config) Abs(elem ...string) string {
	return filepath.Join(append([]string{c.Root}, elem...)...)
}

// WorkspaceDir is the absolute directory holding the packages.
func (c *Config) WorkspaceDir() string {
	return c.Abs(c.Workspace.Path)
}

// Channel resolves a release channel by name.
func (c *Config) Channel(name string) (ReleaseChannel, bool) {
	ch, ok := c.Release.Channels[name]
	if !ok {
		return ReleaseChannel{}, false
	}
	return ReleaseChannel{Name: name, Principal: ch.User, Registry: ch.Registry}, true
}

// ChannelNames returns the configured channel names, sorted.
func (c *Config) ChannelNames() []string {
	names := make([]string, 0, len(c.Release.Channels))
	for name := range c.Release.Channels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
