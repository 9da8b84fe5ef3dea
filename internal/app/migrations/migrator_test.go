package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_absences.sql": {Data: []byte("SELECT 2;")},
		"001_init.sql":     {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("docs")},
		"archive/000.sql":  {Data: []byte("SELECT 0;")},
	}

	files, err := sqlFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_absences.sql"}, files)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_init.sql"))
	assert.Equal(t, "010", Version("dir/010_add_index.sql"))
	assert.Equal(t, "nounderscore.sql", Version("nounderscore.sql"))
}
