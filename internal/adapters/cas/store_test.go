package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/cas"
	"go.trai.ch/crate/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()

	info := domain.BuildInfo{
		Package:    "@acme/core",
		Version:    "1.2.0",
		OutputHash: "00ff00ff00ff00ff",
		Targets:    []domain.TargetKind{domain.TargetModule, domain.TargetTypes},
		Timestamp:  time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Put(root, info))

	got, err := store.Get(root, "@acme/core")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, info, *got)

	info.Version = "1.3.0"
	require.NoError(t, store.Put(root, info))
	got, err = store.Get(root, "@acme/core")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", got.Version)
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	got, err := cas.NewStore().Get(t.TempDir(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.BuildInfo{Package: "pkg"}))

	dir := filepath.Join(root, domain.DefaultStorePath())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{ invalid json"), domain.PrivateFilePerm))

	_, err = store.Get(root, "pkg")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_PutCreateFails(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.CrateDirName), nil, domain.PrivateFilePerm))

	err := cas.NewStore().Put(root, domain.BuildInfo{Package: "pkg"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreCreateFailed.Error())
}
