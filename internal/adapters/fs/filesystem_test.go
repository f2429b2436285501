package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/core/domain"
)

func TestFileSystem_ReadWrite(t *testing.T) {
	root := t.TempDir()
	f := fs.NewFileSystem()

	path := filepath.Join(root, "nested", "dir", "package.json")
	require.NoError(t, f.WriteFile(path, []byte(`{"name":"a"}`)))

	assert.True(t, f.Exists(path))
	assert.False(t, f.IsDir(path))
	assert.True(t, f.IsDir(filepath.Dir(path)))

	data, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a"}`, string(data))

	_, err = f.ReadFile(filepath.Join(root, "missing.json"))
	require.Error(t, err)
}

func TestFileSystem_ListDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg-b"), domain.DirPerm))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg-a"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), nil, domain.FilePerm))

	f := fs.NewFileSystem()
	dirs, err := f.ListDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg-a", "pkg-b"}, dirs)

	_, err = f.ListDirs(filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestFileSystem_ClearAndRemove(t *testing.T) {
	root := t.TempDir()
	f := fs.NewFileSystem()
	dir := filepath.Join(root, "stage")

	require.NoError(t, f.WriteFile(filepath.Join(dir, "old.js"), []byte("old")))
	require.NoError(t, f.Clear(dir))
	assert.True(t, f.IsDir(dir))
	assert.Empty(t, slices.Collect(f.WalkFiles(dir)))

	require.NoError(t, f.Clear(filepath.Join(root, "fresh")))
	assert.True(t, f.IsDir(filepath.Join(root, "fresh")))

	require.NoError(t, f.Remove(dir))
	assert.False(t, f.Exists(dir))
	require.NoError(t, f.Remove(dir), "missing path is not an error")
}

func TestFileSystem_Copy_KeepsExisting(t *testing.T) {
	root := t.TempDir()
	f := fs.NewFileSystem()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	require.NoError(t, f.WriteFile(filepath.Join(src, "index.js"), []byte("new")))
	require.NoError(t, f.WriteFile(filepath.Join(src, "lib", "util.js"), []byte("util")))
	require.NoError(t, f.WriteFile(filepath.Join(dst, "index.js"), []byte("compiled")))

	require.NoError(t, f.Copy(src, dst))

	data, err := f.ReadFile(filepath.Join(dst, "index.js"))
	require.NoError(t, err)
	assert.Equal(t, "compiled", string(data))

	data, err = f.ReadFile(filepath.Join(dst, "lib", "util.js"))
	require.NoError(t, err)
	assert.Equal(t, "util", string(data))
}

func TestFileSystem_Copy_SingleFile(t *testing.T) {
	root := t.TempDir()
	f := fs.NewFileSystem()

	require.NoError(t, f.WriteFile(filepath.Join(root, "README.md"), []byte("# a")))
	require.NoError(t, f.Copy(filepath.Join(root, "README.md"), filepath.Join(root, "out", "README.md")))

	data, err := f.ReadFile(filepath.Join(root, "out", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# a", string(data))

	err = f.Copy(filepath.Join(root, "missing"), filepath.Join(root, "out"))
	assert.ErrorContains(t, err, domain.ErrPathStatFailed.Error())
}

func TestFileSystem_Move(t *testing.T) {
	root := t.TempDir()
	f := fs.NewFileSystem()
	stage := filepath.Join(root, ".tmp", "pkg")
	out := filepath.Join(root, "pkg", "build")

	require.NoError(t, f.WriteFile(filepath.Join(stage, "index.js"), []byte("x")))
	require.NoError(t, f.Move(stage, out))

	assert.False(t, f.Exists(stage))
	assert.True(t, f.Exists(filepath.Join(out, "index.js")))
}

func TestFileSystem_Move_Rejects(t *testing.T) {
	root := t.TempDir()
	f := fs.NewFileSystem()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, f.WriteFile(filepath.Join(a, "x"), nil))
	require.NoError(t, f.WriteFile(filepath.Join(b, "y"), nil))

	err := f.Move(a, b)
	require.ErrorIs(t, err, domain.ErrTargetExists)

	err = f.Move(a, filepath.Join(a, "inner"))
	require.ErrorIs(t, err, domain.ErrNestedPaths)

	err = f.Move(filepath.Join(a, "x"), a)
	require.ErrorIs(t, err, domain.ErrNestedPaths)
}
