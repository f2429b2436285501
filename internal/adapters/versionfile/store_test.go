package versionfile_test

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/adapters/versionfile"
	"go.trai.ch/crate/internal/core/domain"
)

func newStore(t *testing.T) (*versionfile.Store, *fs.FileSystem) {
	t.Helper()
	fsys := fs.NewFileSystemFrom(memfs.New())
	return versionfile.NewStore(fsys), fsys
}

func TestStore_SaveLoad(t *testing.T) {
	store, fsys := newStore(t)

	rec := domain.VersionRecord{
		Version:       "1.2.0",
		NextVersion:   "1.3.0-beta",
		IgnoreChannel: []string{"internal"},
		Release:       map[string]string{"global": "1.2.0"},
	}
	require.NoError(t, store.Save("/ws/core", rec))

	data, err := fsys.ReadFile(filepath.Join("/ws/core", domain.VersionRecordFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": "1.2.0",
		"nextVersion": "1.3.0-beta",
		"ignoreChannel": ["internal"],
		"release": {"global": "1.2.0"}
	}`, string(data))

	got, err := store.Load("/ws/core")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestStore_Save_OmitsEmptyNextVersion(t *testing.T) {
	store, fsys := newStore(t)

	require.NoError(t, store.Save("/ws/core", domain.VersionRecord{
		Version:       "1.0.0",
		IgnoreChannel: []string{},
		Release:       map[string]string{},
	}))

	data, err := fsys.ReadFile(filepath.Join("/ws/core", domain.VersionRecordFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "nextVersion")
}

func TestStore_Load_Missing(t *testing.T) {
	store, _ := newStore(t)

	got, err := store.Load("/ws/none")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_Load_FillsDefaults(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, fsys.WriteFile(filepath.Join("/ws/a", domain.VersionRecordFile), []byte(`{"version":"0.1.0"}`)))

	got, err := store.Load("/ws/a")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", got.Version)
	assert.NotNil(t, got.Release)
	assert.NotNil(t, got.IgnoreChannel)
}

func TestStore_Load_Corrupt(t *testing.T) {
	store, fsys := newStore(t)
	require.NoError(t, fsys.WriteFile(filepath.Join("/ws/a", domain.VersionRecordFile), []byte(`{`)))

	_, err := store.Load("/ws/a")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrVersionRecordRead.Error())
}
