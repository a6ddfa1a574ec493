package attachment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kovetskiy/mark-diagram/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "diagrams"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diagrams", "flow.mmd"), []byte("graph TD;"), 0o644))

	data, err := Load(vfs.LocalOS, dir, "diagrams/flow.mmd")
	require.NoError(t, err)
	assert.Equal(t, "graph TD;", string(data))

	data, err = Load(vfs.LocalOS, "/elsewhere", filepath.Join(dir, "diagrams", "flow.mmd"))
	require.NoError(t, err)
	assert.Equal(t, "graph TD;", string(data))

	_, err = Load(vfs.LocalOS, dir, "missing.mmd")
	assert.ErrorContains(t, err, "unable to open file")
}

func TestChecksum(t *testing.T) {
	assert.Equal(
		t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Checksum(nil),
	)

	checksum, err := GetChecksum(strings.NewReader("a -> b"))
	require.NoError(t, err)
	assert.Equal(t, Checksum([]byte("a -> b")), checksum)
	assert.NotEqual(t, Checksum([]byte("a -> c")), checksum)
}
