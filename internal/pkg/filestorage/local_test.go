package filestorage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/pkg/filestorage/fstest"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir)
	require.NoError(t, err)

	stored, err := ls.SaveFile(fstest.FileHeader(t, "essay.pdf", "hello"))
	require.NoError(t, err)

	assert.Equal(t, "essay.pdf", stored.OriginalName)
	assert.Equal(t, ".pdf", filepath.Ext(stored.StoredName))
	assert.Equal(t, int64(5), stored.Size)
	assert.NotEmpty(t, stored.MimeType)

	content, err := os.ReadFile(filepath.Join(dir, stored.StoredName))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, ls.DeleteFile(stored.StoredName))
	_, err = os.Stat(filepath.Join(dir, stored.StoredName))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(stored.StoredName), "deleting twice is not an error")
}

func TestLocalStorage_GetFullPath(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		empty bool
	}{
		{name: "plain name", input: "a.txt"},
		{name: "traversal is flattened", input: "../../etc/passwd"},
		{name: "dot", input: ".", empty: true},
		{name: "dotdot", input: "..", empty: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ls.GetFullPath(tc.input)
			if tc.empty {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, ls.basePath, filepath.Dir(got))
		})
	}
}

func TestLocalStorage_SaveNil(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = ls.SaveFile(nil)
	assert.Error(t, err)
}
