package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/core/domain"
)

func TestPackageManifest_DeclaredDependencies(t *testing.T) {
	m := &domain.PackageManifest{
		Dependencies:    map[string]string{"b": "*", "a": "^1.0.0"},
		DevDependencies: map[string]string{"a": "*", "c": "latest"},
	}
	assert.Equal(t, []string{"a", "b", "c"}, m.DeclaredDependencies())
}

func TestPackage_Record(t *testing.T) {
	staged := mustParse(t, "1.1.0")
	p := &domain.Package{
		Name:             "pkg",
		CommittedVersion: mustParse(t, "1.0.0"),
		StagedVersion:    &staged,
	}

	rec := p.Record()
	assert.Equal(t, domain.VersionRecord{
		Version:       "1.0.0",
		NextVersion:   "1.1.0",
		IgnoreChannel: []string{},
		Release:       map[string]string{},
	}, rec)

	require.True(t, p.CommitStaged())
	assert.Nil(t, p.StagedVersion)
	assert.Equal(t, "1.1.0", p.CommittedVersion.String())
	assert.False(t, p.CommitStaged())
	assert.Empty(t, p.Record().NextVersion)
}

func TestPackage_ReleaseCandidate(t *testing.T) {
	p := &domain.Package{
		Name:             "pkg",
		CommittedVersion: mustParse(t, "2.0.0"),
		ReleaseState:     map[string]string{"global": "2.0.0", "beta": "1.9.0"},
		IgnoredChannels:  []string{"internal"},
	}

	assert.False(t, p.ReleaseCandidate("global"), "already released")
	assert.True(t, p.ReleaseCandidate("beta"), "older version released")
	assert.True(t, p.ReleaseCandidate("nightly"), "never released")
	assert.False(t, p.ReleaseCandidate("internal"), "ignored channel")
}

func TestWorkspace_DependencyVersions(t *testing.T) {
	staged := mustParse(t, "1.1.0")
	ws := domain.NewWorkspace([]*domain.Package{
		{Name: "a", CommittedVersion: mustParse(t, "1.0.0"), StagedVersion: &staged},
		{Name: "b", CommittedVersion: mustParse(t, "3.0.0")},
	})

	deps := ws.DependencyVersions()
	assert.Equal(t, "1.1.0", deps["a"].String())
	assert.Equal(t, "3.0.0", deps["b"].String())

	committed := ws.CommittedVersions()
	assert.Equal(t, "1.0.0", committed["a"].String())

	assert.Equal(t, []string{"a", "b"}, ws.Names())
	assert.Nil(t, ws.Get("missing"))
	assert.Equal(t, "b", ws.Get("b").Name)
}

func TestSelection(t *testing.T) {
	var all domain.Selection
	assert.True(t, all.All())
	assert.True(t, all.Contains("anything"))

	scoped := domain.Selection{"a"}
	assert.False(t, scoped.All())
	assert.True(t, scoped.Contains("a"))
	assert.False(t, scoped.Contains("b"))

	empty := domain.Selection{}
	assert.False(t, empty.All())
	assert.False(t, empty.Contains("a"))
}

func TestConfig_DefaultVersion(t *testing.T) {
	cfg := &domain.Config{Semver: domain.SemverConfig{Version: "1.0.0"}}
	assert.Equal(t, "1.0.0", cfg.DefaultVersion())

	cfg.Semver.PreRelease = "beta"
	assert.Equal(t, "1.0.0-beta", cfg.DefaultVersion())
}

func TestConfig_Channel(t *testing.T) {
	cfg := &domain.Config{Release: domain.ReleaseConfig{Channels: map[string]domain.ChannelConfig{
		"global":   {User: "bot"},
		"internal": {User: "ci", Registry: "https://npm.example.com"},
	}}}

	ch, ok := cfg.Channel("internal")
	require.True(t, ok)
	assert.Equal(t, domain.ReleaseChannel{Name: "internal", Principal: "ci", Registry: "https://npm.example.com"}, ch)

	_, ok = cfg.Channel("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"global", "internal"}, cfg.ChannelNames())
}

func TestParsePackageManifest(t *testing.T) {
	m, err := domain.ParsePackageManifest([]byte(`{
		"name": "pkg-b",
		"version": "1.0.0",
		"dependencies": {"pkg-a": "*"},
		"sideEffects": false
	}`))
	require.NoError(t, err)

	assert.Equal(t, "pkg-b", m.Name)
	assert.Equal(t, map[string]string{"pkg-a": "*"}, m.Dependencies)
	assert.Equal(t, false, m.Raw["sideEffects"])

	_, err = domain.ParsePackageManifest([]byte(`{"name":`))
	assert.Error(t, err)
}
