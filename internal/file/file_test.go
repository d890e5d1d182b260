package file

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir, err := ioutil.TempDir("", "file-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "real.txt")
	require.NoError(t, ioutil.WriteFile(path, []byte("hello"), 0600))
	require.True(t, Exists(path))

	require.False(t, Exists(filepath.Join(dir, "bogus.txt")))
}
