package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/core/domain"
)

func TestParseTargetKind(t *testing.T) {
	for _, s := range []string{"commonjs", "module", "node", "types", "copy"} {
		k, err := domain.ParseTargetKind(s)
		require.NoError(t, err)
		assert.Equal(t, domain.TargetKind(s), k)
	}

	_, err := domain.ParseTargetKind("")
	assert.ErrorIs(t, err, domain.ErrManifest)
	assert.ErrorContains(t, err, "target is empty")

	_, err = domain.ParseTargetKind("umd")
	assert.ErrorIs(t, err, domain.ErrManifest)
	assert.ErrorContains(t, err, "invalid target kind")
}

func TestTargetKind_EntryPoints(t *testing.T) {
	tests := []struct {
		kind   domain.TargetKind
		field  string
		system domain.ModuleSystem
	}{
		{domain.TargetCommonJS, "main", domain.ModuleSystemCommonJS},
		{domain.TargetNode, "main", domain.ModuleSystemCommonJS},
		{domain.TargetModule, "module", domain.ModuleSystemESM},
		{domain.TargetTypes, "types", domain.ModuleSystemNone},
		{domain.TargetCopy, "", domain.ModuleSystemNone},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.field, tt.kind.EntryField())
			assert.Equal(t, tt.system, tt.kind.ModuleSystem())
		})
	}
}

func TestBuildTarget_IsRootOutput(t *testing.T) {
	for _, out := range []string{"", ".", "./", "/"} {
		assert.True(t, (&domain.BuildTarget{Output: out}).IsRootOutput(), out)
	}
	assert.False(t, (&domain.BuildTarget{Output: "esm"}).IsRootOutput())
}

func TestBuildError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := domain.NewBuildError("pkg-a", &domain.BuildTarget{Input: "src", Kind: domain.TargetModule}, cause)

	assert.ErrorIs(t, err, domain.ErrBuild)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `build of package "pkg-a" failed at target module (src): exit status 2`, err.Error())

	var be *domain.BuildError
	require.ErrorAs(t, error(err), &be)
	assert.Equal(t, domain.TargetModule, be.Target)
}

func TestPublishError(t *testing.T) {
	cause := errors.New("E403 forbidden")
	err := domain.NewPublishError("global", "pkg-a", cause)

	assert.ErrorIs(t, err, domain.ErrPublish)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `publish of package "pkg-a" to channel "global" failed: E403 forbidden`, err.Error())

	login := domain.NewPublishError("beta", "", nil)
	assert.Equal(t, `release to channel "beta" failed`, login.Error())
}
