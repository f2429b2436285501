package scanner_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/adapters/versionfile"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports/mocks"
	"go.trai.ch/crate/internal/engine/scanner"
	"go.uber.org/mock/gomock"
)

const wsRoot = "/ws"

type fixture struct {
	t      *testing.T
	fs     *fs.FileSystem
	cfg    *domain.Config
	logger *mocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	return &fixture{
		t:  t,
		fs: fs.NewFileSystemFrom(memfs.New()),
		cfg: &domain.Config{
			Root:      wsRoot,
			Semver:    domain.SemverConfig{Version: "1.0.0"},
			Workspace: domain.WorkspaceConfig{Name: "acme", Path: "packages"},
			Bundle:    domain.BundleConfig{Out: "build", Tmp: "build-tmp"},
		},
		logger: logger,
	}
}

func (f *fixture) write(path string, v any) {
	f.t.Helper()
	data, err := json.Marshal(v)
	require.NoError(f.t, err)
	require.NoError(f.t, f.fs.WriteFile(filepath.Join(wsRoot, "packages", path), data))
}

func (f *fixture) scan() (*domain.Workspace, *domain.Graph, error) {
	s := scanner.New(f.cfg, f.fs, versionfile.NewStore(f.fs), f.logger)
	return s.Scan(context.Background())
}

func TestScan_DiscoversPackagesInDirectoryOrder(t *testing.T) {
	f := newFixture(t)
	f.write("b/package.json", map[string]any{"name": "pkg-b", "dependencies": map[string]string{"pkg-a": "*", "lodash": "^4"}})
	f.write("b/bundle-version.json", domain.VersionRecord{Version: "2.0.0", NextVersion: "2.1.0-beta"})
	f.write("a/package.json", map[string]any{"name": "pkg-a"})
	f.write("a/bundle-version.json", domain.VersionRecord{Version: "1.0.0", Release: map[string]string{"global": "1.0.0"}})
	f.write("c/package.json", map[string]any{"name": "pkg-c", "devDependencies": map[string]string{"pkg-b": "latest"}})
	f.write("c/bundle-version.json", domain.VersionRecord{Version: "0.1.0"})
	require.NoError(t, f.fs.WriteFile("/ws/packages/notes/README.md", []byte("not a package")))

	ws, g, err := f.scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg-a", "pkg-b", "pkg-c"}, ws.Names())

	a, b, c := ws.Get("pkg-a"), ws.Get("pkg-b"), ws.Get("pkg-c")
	assert.Empty(t, a.Dependencies)
	assert.Equal(t, []string{"pkg-a"}, b.Dependencies)
	assert.Equal(t, []string{"pkg-b"}, c.Dependencies)

	assert.Equal(t, "/ws/packages/b", b.Dir)
	assert.Equal(t, "/ws/packages/b/build", b.OutDir)
	assert.Equal(t, "/ws/packages/b/build-tmp", b.StageDir)
	assert.Equal(t, "2.0.0", b.CommittedVersion.String())
	require.NotNil(t, b.StagedVersion)
	assert.Equal(t, "2.1.0-beta", b.StagedVersion.String())
	assert.Equal(t, map[string]string{"global": "1.0.0"}, a.ReleaseState)
	assert.Equal(t, 2, c.Index)

	var order []string
	for name := range g.Walk() {
		order = append(order, name)
	}
	assert.Equal(t, []string{"pkg-a", "pkg-b", "pkg-c"}, order)
	assert.Equal(t, []string{"pkg-c"}, g.Dependents("pkg-b"))
}

func TestScan_SeedsMissingVersionRecord(t *testing.T) {
	f := newFixture(t)
	f.cfg.Semver.PreRelease = "alpha"
	f.write("a/package.json", map[string]any{"name": "pkg-a"})

	ws, _, err := f.scan()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-alpha", ws.Get("pkg-a").CommittedVersion.String())

	data, err := f.fs.ReadFile("/ws/packages/a/bundle-version.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0-alpha","ignoreChannel":[],"release":{}}`, string(data))
}

func TestScan_ReadsLatestBuiltVersion(t *testing.T) {
	f := newFixture(t)
	f.write("a/package.json", map[string]any{"name": "pkg-a"})
	f.write("a/build/package.json", map[string]any{"name": "pkg-a", "version": "0.9.0"})
	f.write("b/package.json", map[string]any{"name": "pkg-b"})
	f.write("c/package.json", map[string]any{"name": "pkg-c"})
	require.NoError(t, f.fs.WriteFile("/ws/packages/c/build/package.json", []byte("{broken")))

	ws, _, err := f.scan()
	require.NoError(t, err)

	require.NotNil(t, ws.Get("pkg-a").LatestBuiltVersion)
	assert.Equal(t, "0.9.0", ws.Get("pkg-a").LatestBuiltVersion.String())
	assert.False(t, ws.Get("pkg-b").IsBuilt())
	assert.False(t, ws.Get("pkg-c").IsBuilt())
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		wantErr error
		message string
	}{
		{
			name: "duplicate name",
			setup: func(f *fixture) {
				f.write("a/package.json", map[string]any{"name": "pkg"})
				f.write("b/package.json", map[string]any{"name": "pkg"})
			},
			wantErr: domain.ErrDuplicatePackageName,
		},
		{
			name: "missing name",
			setup: func(f *fixture) {
				f.write("a/package.json", map[string]any{"version": "1.0.0"})
			},
			wantErr: domain.ErrMissingPackageName,
		},
		{
			name: "malformed manifest",
			setup: func(f *fixture) {
				require.NoError(f.t, f.fs.WriteFile("/ws/packages/a/package.json", []byte("{")))
			},
			wantErr: domain.ErrPackageManifestRead,
		},
		{
			name: "cycle",
			setup: func(f *fixture) {
				f.write("a/package.json", map[string]any{"name": "a", "dependencies": map[string]string{"b": "*"}})
				f.write("b/package.json", map[string]any{"name": "b", "devDependencies": map[string]string{"a": "*"}})
			},
			wantErr: domain.ErrCycleDetected,
		},
		{
			name:    "missing workspace directory",
			setup:   func(*fixture) {},
			wantErr: domain.ErrWorkspaceDirRead,
		},
		{
			name: "malformed version record",
			setup: func(f *fixture) {
				f.write("a/package.json", map[string]any{"name": "a"})
				f.write("a/bundle-version.json", domain.VersionRecord{Version: "1.x"})
			},
			wantErr: domain.ErrVersionParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			_, _, err := f.scan()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScan_ScanErrorKind(t *testing.T) {
	f := newFixture(t)
	f.write("a/package.json", map[string]any{"name": "pkg"})
	f.write("b/package.json", map[string]any{"name": "pkg"})

	_, _, err := f.scan()
	assert.ErrorIs(t, err, domain.ErrScan)
}
