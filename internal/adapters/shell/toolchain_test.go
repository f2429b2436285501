package shell_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/adapters/shell"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/crate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func toolchainConfig() *domain.Config {
	return &domain.Config{
		Root: "/ws",
		Toolchain: domain.ToolchainConfig{
			PackageManager: "yarn",
			Formatter:      "prettier",
			Registry:       "npm",
		},
	}
}

func newToolchain(t *testing.T, files ...string) (*shell.Toolchain, *mocks.MockExecutor) {
	t.Helper()
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	fsys := fs.NewFileSystemFrom(memfs.New())
	for _, f := range files {
		require.NoError(t, fsys.WriteFile(f, []byte("{}")))
	}
	return shell.NewToolchain(exec, fsys, toolchainConfig()), exec
}

func TestToolchain_Transpile(t *testing.T) {
	tc, exec := newToolchain(t, "/ws/babel.config.js")
	var out bytes.Buffer

	exec.EXPECT().Execute(gomock.Any(), ports.Command{
		Name: "yarn",
		Args: []string{
			"babel",
			"--config-file", "/ws/babel.config.js",
			"--extensions", ".js,.ts,.tsx", "/ws/packages/a/src",
			"--out-dir", "/ws/packages/a/.tmp/esm",
			"--ignore", "**/*.d.ts",
		},
		Env: []string{"NODE_ENV=production", "BABEL_ENV=module"},
	}, &out, &out).Return(nil)

	err := tc.Transpile(context.Background(), "/ws/packages/a", "/ws/packages/a/src", "/ws/packages/a/.tmp/esm", domain.TargetModule, &out)
	require.NoError(t, err)
}

func TestToolchain_Transpile_MissingBabelConfig(t *testing.T) {
	tc, _ := newToolchain(t)

	err := tc.Transpile(context.Background(), "/ws/packages/a", "src", "out", domain.TargetNode, nil)
	require.ErrorIs(t, err, domain.ErrToolFailed)
	assert.ErrorIs(t, err, domain.ErrBuild)
}

func TestToolchain_ExtractTypes(t *testing.T) {
	tc, exec := newToolchain(t, "/ws/packages/a/tsconfig.build.json")

	exec.EXPECT().Execute(gomock.Any(), ports.Command{
		Name: "yarn",
		Args: []string{"tsc", "-p", "/ws/packages/a/tsconfig.build.json", "--rootDir", "/ws/packages/a/src", "--outDir", "/ws/packages/a/.tmp"},
		Env:  []string{"NODE_ENV=production"},
	}, gomock.Any(), gomock.Any()).Return(nil)

	err := tc.ExtractTypes(context.Background(), "/ws/packages/a", "/ws/packages/a/src", "/ws/packages/a/.tmp", nil)
	require.NoError(t, err)
}

func TestToolchain_ExtractTypes_MissingConfig(t *testing.T) {
	tc, _ := newToolchain(t)

	err := tc.ExtractTypes(context.Background(), "/ws/packages/a", "src", "out", nil)
	assert.ErrorIs(t, err, domain.ErrToolFailed)
}

func TestToolchain_Format(t *testing.T) {
	tc, exec := newToolchain(t,
		"/ws/packages/a/src/index.ts",
		"/ws/packages/a/types/global.ts",
		"/ws/packages/a/package.json",
		"/ws/packages/a/tsconfig.json",
	)

	gomock.InOrder(
		exec.EXPECT().Execute(gomock.Any(), ports.Command{
			Name: "prettier",
			Args: []string{
				"--config", "/ws/.prettierrc.json", "--parser", "typescript", "--write",
				"/ws/packages/a/src/**/*.{ts,tsx}",
				"/ws/packages/a/types/**/*.ts",
			},
			Dir: "/ws",
		}, gomock.Any(), gomock.Any()).Return(nil),
		exec.EXPECT().Execute(gomock.Any(), ports.Command{
			Name: "prettier",
			Args: []string{
				"--config", "/ws/.prettierrc.json", "--parser", "json", "--write",
				"/ws/packages/a/package.json",
				"/ws/packages/a/tsconfig.json",
			},
			Dir: "/ws",
		}, gomock.Any(), gomock.Any()).Return(nil),
	)

	require.NoError(t, tc.Format(context.Background(), "/ws/packages/a", nil))
}

func TestToolchain_Format_FlatPackage(t *testing.T) {
	tc, exec := newToolchain(t)

	exec.EXPECT().Execute(gomock.Any(), ports.Command{
		Name: "prettier",
		Args: []string{"--config", "/ws/.prettierrc.json", "--parser", "typescript", "--write", "/ws/packages/b/*.ts"},
		Dir:  "/ws",
	}, gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, tc.Format(context.Background(), "/ws/packages/b", nil))
}

func TestToolchain_Format_Failure(t *testing.T) {
	tc, exec := newToolchain(t)
	exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("exit status 2"))

	err := tc.Format(context.Background(), "/ws/packages/b", nil)
	require.ErrorIs(t, err, domain.ErrToolFailed)
	assert.ErrorContains(t, err, "build tool failed: exit status 2")
}
